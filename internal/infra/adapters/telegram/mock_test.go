//go:build !integration

package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	"telegram-post-scheduler/internal/application"
	"telegram-post-scheduler/internal/config"
	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/usecase"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

// fakeAPI records every outgoing request.
type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	admins   []tgbotapi.ChatMember
	sendErr  error
	adminErr error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetChatAdministrators(tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error) {
	return f.admins, f.adminErr
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

// texts returns the text of every plain message sent, in order.
func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeAPI) lastMessage() tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if m, ok := f.sent[i].(tgbotapi.MessageConfig); ok {
			return m
		}
	}
	return tgbotapi.MessageConfig{}
}

func (f *fakeAPI) callbackAnswer() (tgbotapi.CallbackConfig, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.requests {
		if a, ok := c.(tgbotapi.CallbackConfig); ok {
			return a, true
		}
	}
	return tgbotapi.CallbackConfig{}, false
}

func (f *fakeAPI) edits() []tgbotapi.EditMessageTextConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.EditMessageTextConfig
	for _, c := range f.requests {
		if e, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			out = append(out, e)
		}
	}
	return out
}

// keyTranslator echoes keys so assertions stay independent of locale text.
type keyTranslator struct{}

func (keyTranslator) T(key string, args ...interface{}) string {
	if len(args) == 0 {
		return key
	}
	return key + ":" + fmt.Sprint(args...)
}

var _ application.Facade = (*fakeFacade)(nil)

type fakeFacade struct {
	registered []usecase.RegisterChat
	registerFn func(req usecase.RegisterChat) (*model.Binding, error)

	bindings  []*model.Binding
	selectFn  func(userID, chatID int64) (*model.Binding, error)
	listing   *usecase.ScheduleListing
	listErr   error
	toggleFn  func(docID string) (*model.Schedule, error)
	deleteErr error
	startNow  []string

	started   []model.ContentType
	received  []model.ContentItem
	receiveFn func(item model.ContentItem) (usecase.WizardReply, error)
	addFn     func(docID string) (usecase.WizardReply, error)
	cancels   int
	inScene   bool
}

func (f *fakeFacade) RegisterChat(_ context.Context, req usecase.RegisterChat) (*model.Binding, error) {
	f.registered = append(f.registered, req)
	if f.registerFn != nil {
		return f.registerFn(req)
	}
	return &model.Binding{OwnerUserID: req.UserID, ChatID: req.ChatID, ChatTitle: req.ChatTitle}, nil
}

func (f *fakeFacade) ManageTargets(context.Context, int64) ([]*model.Binding, error) {
	if len(f.bindings) == 0 {
		return nil, domain.ErrEmptyResult
	}
	return f.bindings, nil
}

func (f *fakeFacade) SelectChat(_ context.Context, userID, chatID int64) (*model.Binding, error) {
	if f.selectFn != nil {
		return f.selectFn(userID, chatID)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeFacade) ListSchedules(context.Context, int64) (*usecase.ScheduleListing, error) {
	return f.listing, f.listErr
}

func (f *fakeFacade) ToggleSchedule(_ context.Context, _ int64, docID string) (*model.Schedule, error) {
	if f.toggleFn != nil {
		return f.toggleFn(docID)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeFacade) StartNow(_ context.Context, _ int64, docID string) (*model.Schedule, error) {
	f.startNow = append(f.startNow, docID)
	return &model.Schedule{ID: docID, IsActive: true}, nil
}

func (f *fakeFacade) DeleteSchedule(context.Context, int64, string) error {
	return f.deleteErr
}

func (f *fakeFacade) StartNew(_ context.Context, _ int64, ct model.ContentType) (usecase.WizardReply, error) {
	f.started = append(f.started, ct)
	f.inScene = true
	return usecase.WizardReply{Handled: true, Prompts: []string{"prompt_new_" + string(ct)}}, nil
}

func (f *fakeFacade) StartAdd(_ context.Context, _ int64, docID string) (usecase.WizardReply, error) {
	if f.addFn != nil {
		return f.addFn(docID)
	}
	return usecase.WizardReply{}, domain.ErrNoChatSelected
}

func (f *fakeFacade) Receive(_ context.Context, _ int64, item model.ContentItem) (usecase.WizardReply, error) {
	f.received = append(f.received, item)
	if f.receiveFn != nil {
		return f.receiveFn(item)
	}
	return usecase.WizardReply{}, nil
}

func (f *fakeFacade) Cancel(context.Context, int64) (bool, error) {
	f.cancels++
	left := f.inScene
	f.inScene = false
	return left, nil
}

func (f *fakeFacade) RunTick(context.Context, string, time.Time) (usecase.TickReport, error) {
	return usecase.TickReport{}, nil
}

func newTestAdapter(api *fakeAPI, facade *fakeFacade) *RealTelegramBotAdapter {
	cfg := &config.BotConfig{Username: "testbot", SupportUsername: "@helpdesk", Workers: 1}
	a, err := NewRealTelegramBotAdapter(api, cfg, config.RateLimitConfig{}, facade, keyTranslator{}, nil, newTestLogger())
	if err != nil {
		panic(err)
	}
	return a
}

func commandUpdate(text string, chatID int64, chatType string, userID int64) tgbotapi.Update {
	length := len(text)
	for i, c := range text {
		if c == ' ' {
			length = i
			break
		}
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
		Chat:      &tgbotapi.Chat{ID: chatID, Type: chatType, Title: "Group"},
		From:      &tgbotapi.User{ID: userID, FirstName: "Ana"},
	}}
}

func callbackUpdate(data string, userID int64) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "q-1",
		From: &tgbotapi.User{ID: userID},
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: 99,
			Chat:      &tgbotapi.Chat{ID: userID, Type: "private"},
		},
	}}
}
