package model

import (
	"time"

	"github.com/oklog/ulid/v2"

	"telegram-post-scheduler/internal/domain"
)

// Schedule is a rotating playlist bound to one destination chat.
// It is the aggregate root of the content store.
type Schedule struct {
	ID               string
	ChatID           int64
	OwnerUserID      int64
	ChatTitle        string
	IsActive         bool
	IntervalSeconds  *int
	ContentItems     []ContentItem
	CurrentIndex     int
	LastRunTimestamp int64
	ContentType      ContentType
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewSchedule creates an inactive schedule holding its first item.
// An empty id is replaced by a fresh ULID.
func NewSchedule(id string, chatID, ownerID int64, chatTitle string, first ContentItem) (*Schedule, error) {
	if chatID == 0 || ownerID <= 0 || !first.Type.Valid() || first.Data == "" {
		return nil, domain.ErrInvalidArgument
	}
	if id == "" {
		id = ulid.Make().String()
	}
	now := time.Now()
	return &Schedule{
		ID:           id,
		ChatID:       chatID,
		OwnerUserID:  ownerID,
		ChatTitle:    chatTitle,
		ContentItems: []ContentItem{first},
		ContentType:  first.Type,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *Schedule) IsZero() bool { return s == nil || s.ID == "" }

func (s *Schedule) HasInterval() bool { return s.IntervalSeconds != nil }

// Interval returns the interval in seconds, or 0 when unset.
func (s *Schedule) Interval() int {
	if s.IntervalSeconds == nil {
		return 0
	}
	return *s.IntervalSeconds
}

// AppendItem adds an item at the end of the playlist. Items are never reordered.
func (s *Schedule) AppendItem(item ContentItem) error {
	if item.Type != s.ContentType {
		return domain.NewValidationError(ReasonWrongContent)
	}
	if item.Data == "" {
		return domain.ErrInvalidArgument
	}
	s.ContentItems = append(s.ContentItems, item)
	s.touch()
	return nil
}

func (s *Schedule) SetInterval(seconds int) error {
	if seconds < MinIntervalSeconds {
		return domain.NewValidationError(ReasonIntervalMinimum)
	}
	s.IntervalSeconds = &seconds
	s.touch()
	return nil
}

// Activate marks the schedule as eligible for the poller and forces it due
// on the next tick.
func (s *Schedule) Activate() error {
	if !s.HasInterval() {
		return domain.NewValidationError(ReasonIntervalUnset)
	}
	if len(s.ContentItems) == 0 {
		return domain.NewValidationError(ReasonEmptySchedule)
	}
	s.IsActive = true
	s.LastRunTimestamp = 0
	s.touch()
	return nil
}

func (s *Schedule) Deactivate() {
	s.IsActive = false
	s.touch()
}

// Toggle flips IsActive and returns the new value.
func (s *Schedule) Toggle() (bool, error) {
	if s.IsActive {
		s.Deactivate()
		return false, nil
	}
	if err := s.Activate(); err != nil {
		return false, err
	}
	return true, nil
}

// IsDue reports whether an active schedule should post at now (epoch seconds).
func (s *Schedule) IsDue(now int64) bool {
	if !s.IsActive || !s.HasInterval() {
		return false
	}
	return now-s.LastRunTimestamp >= int64(*s.IntervalSeconds)
}

// Current returns the item at CurrentIndex.
func (s *Schedule) Current() (ContentItem, bool) {
	if len(s.ContentItems) == 0 {
		return ContentItem{}, false
	}
	return s.ContentItems[s.normalizedIndex()], true
}

// Advance moves the rotation forward after a successful post at now.
func (s *Schedule) Advance(now int64) {
	if len(s.ContentItems) == 0 {
		s.CurrentIndex = 0
		return
	}
	s.CurrentIndex = (s.normalizedIndex() + 1) % len(s.ContentItems)
	s.LastRunTimestamp = now
	s.touch()
}

func (s *Schedule) normalizedIndex() int {
	n := len(s.ContentItems)
	if s.CurrentIndex < 0 || s.CurrentIndex >= n {
		return 0
	}
	return s.CurrentIndex
}

func (s *Schedule) touch() { s.UpdatedAt = time.Now() }
