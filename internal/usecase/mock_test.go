//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/adapter"
	"telegram-post-scheduler/internal/domain/ports/repository"
)

// =============================
// Adapters
// =============================

// ---- Mock ContentSender ----

type sentPost struct {
	ChatID int64
	Item   model.ContentItem
}

type MockSender struct {
	mu   sync.Mutex
	Sent []sentPost

	SendContentFunc func(ctx context.Context, chatID int64, item model.ContentItem) error
}

var _ adapter.ContentSender = (*MockSender)(nil)

func (m *MockSender) SendContent(ctx context.Context, chatID int64, item model.ContentItem) error {
	if m.SendContentFunc != nil {
		if err := m.SendContentFunc(ctx, chatID, item); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentPost{ChatID: chatID, Item: item})
	return nil
}

// ---- Mock ChatAdminChecker ----

type MockAdmins struct {
	// admins maps chat id to the set of admin user ids
	admins map[int64]map[int64]bool
	Err    error
}

var _ adapter.ChatAdminChecker = (*MockAdmins)(nil)

func NewMockAdmins() *MockAdmins { return &MockAdmins{admins: map[int64]map[int64]bool{}} }

func (m *MockAdmins) Add(chatID, userID int64) {
	if m.admins[chatID] == nil {
		m.admins[chatID] = map[int64]bool{}
	}
	m.admins[chatID][userID] = true
}

func (m *MockAdmins) IsChatAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return m.admins[chatID][userID], nil
}

// =============================
// Repositories
// =============================

// ---- Mock ScheduleRepository ----

type MockScheduleRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Schedule

	UpdateFunc      func(ctx context.Context, tx repository.Tx, s *model.Schedule) error
	ListActiveFunc  func(ctx context.Context, tx repository.Tx) ([]*model.Schedule, error)
	CountActiveFunc func(ctx context.Context, tx repository.Tx) (int, error)
}

var _ repository.ScheduleRepository = (*MockScheduleRepo)(nil)

func NewMockScheduleRepo() *MockScheduleRepo {
	return &MockScheduleRepo{byID: map[string]*model.Schedule{}}
}

func cloneSchedule(s *model.Schedule) *model.Schedule {
	cp := *s
	cp.ContentItems = append([]model.ContentItem(nil), s.ContentItems...)
	if s.IntervalSeconds != nil {
		v := *s.IntervalSeconds
		cp.IntervalSeconds = &v
	}
	return &cp
}

func (r *MockScheduleRepo) Create(ctx context.Context, tx repository.Tx, s *model.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[s.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s.Version = 1
	r.byID[s.ID] = cloneSchedule(s)
	return nil
}

func (r *MockScheduleRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneSchedule(s), nil
}

func (r *MockScheduleRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Schedule, error) {
	return r.FindByID(ctx, tx, id)
}

func (r *MockScheduleRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Schedule, error) {
	if r.ListActiveFunc != nil {
		return r.ListActiveFunc(ctx, tx)
	}
	return r.list(func(s *model.Schedule) bool { return s.IsActive }), nil
}

func (r *MockScheduleRepo) ListByChat(ctx context.Context, tx repository.Tx, chatID int64) ([]*model.Schedule, error) {
	return r.list(func(s *model.Schedule) bool { return s.ChatID == chatID }), nil
}

func (r *MockScheduleRepo) list(keep func(s *model.Schedule) bool) []*model.Schedule {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Schedule
	for _, s := range r.byID {
		if keep(s) {
			out = append(out, cloneSchedule(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MockScheduleRepo) Update(ctx context.Context, tx repository.Tx, s *model.Schedule) error {
	if r.UpdateFunc != nil {
		return r.UpdateFunc(ctx, tx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[s.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != s.Version {
		return domain.ErrConflict
	}
	s.Version++
	r.byID[s.ID] = cloneSchedule(s)
	return nil
}

func (r *MockScheduleRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MockScheduleRepo) CountActive(ctx context.Context, tx repository.Tx) (int, error) {
	if r.CountActiveFunc != nil {
		return r.CountActiveFunc(ctx, tx)
	}
	return len(r.list(func(s *model.Schedule) bool { return s.IsActive })), nil
}

// Seed stores s as-is, bypassing version handling.
func (r *MockScheduleRepo) Seed(s *model.Schedule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID] = cloneSchedule(s)
}

func (r *MockScheduleRepo) Get(id string) *model.Schedule {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byID[id]; ok {
		return cloneSchedule(s)
	}
	return nil
}

func (r *MockScheduleRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// ---- Mock BindingRepository ----

type MockBindingRepo struct {
	mu    sync.Mutex
	byKey map[string]*model.Binding

	SaveFunc func(ctx context.Context, tx repository.Tx, b *model.Binding) error
}

var _ repository.BindingRepository = (*MockBindingRepo)(nil)

func NewMockBindingRepo() *MockBindingRepo {
	return &MockBindingRepo{byKey: map[string]*model.Binding{}}
}

func (r *MockBindingRepo) Save(ctx context.Context, tx repository.Tx, b *model.Binding) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, b)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.byKey[b.Key()] = &cp
	return nil
}

func (r *MockBindingRepo) ListByUser(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Binding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Binding
	for _, b := range r.byKey {
		if b.OwnerUserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out, nil
}

func (r *MockBindingRepo) Find(ctx context.Context, tx repository.Tx, userID, chatID int64) (*model.Binding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byKey[model.BindingKey(userID, chatID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *MockBindingRepo) Bind(userID, chatID int64, title string) {
	b, _ := model.NewBinding(userID, chatID, title)
	_ = r.Save(context.Background(), nil, b)
}

// ---- Mock WizardStateRepository ----

type MockWizardStateRepo struct {
	mu       sync.Mutex
	sessions map[int64]model.WizardSession
	sets     int
}

var _ repository.WizardStateRepository = (*MockWizardStateRepo)(nil)

func NewMockWizardStateRepo() *MockWizardStateRepo {
	return &MockWizardStateRepo{sessions: map[int64]model.WizardSession{}}
}

func (r *MockWizardStateRepo) Get(ctx context.Context, userID int64) (model.WizardSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[userID], nil
}

func (r *MockWizardStateRepo) Set(ctx context.Context, userID int64, w model.WizardSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets++
	r.sessions[userID] = w
	return nil
}

func (r *MockWizardStateRepo) Clear(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
	return nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- In-memory Locker ----

type MockLocker struct {
	mu    sync.Mutex
	held  map[string]string
	ErrOn map[string]error
}

var _ repository.Locker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}, ErrOn: map[string]error{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, bad := l.ErrOn[key]; bad {
		return "", err
	}
	if tok, ok := l.held[key]; ok && tok != "" {
		return "", domain.ErrLockHeld
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		return nil
	}
	return errors.New("unlock token mismatch")
}

func (l *MockLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- fixtures ----

func intPtr(v int) *int { return &v }

func textSchedule(id string, chatID int64, data ...string) *model.Schedule {
	items := make([]model.ContentItem, 0, len(data))
	for _, d := range data {
		items = append(items, model.ContentItem{Type: model.ContentText, Data: d})
	}
	return &model.Schedule{
		ID:           id,
		ChatID:       chatID,
		OwnerUserID:  42,
		ChatTitle:    "Group",
		ContentItems: items,
		ContentType:  model.ContentText,
		Version:      1,
	}
}
