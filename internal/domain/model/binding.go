package model

import (
	"fmt"
	"time"

	"telegram-post-scheduler/internal/domain"
)

// Binding proves that a user administers a chat and may manage its schedules.
type Binding struct {
	OwnerUserID int64     `json:"user_id"`
	ChatID      int64     `json:"chat_id"`
	ChatTitle   string    `json:"chat_title"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewBinding(userID, chatID int64, title string) (*Binding, error) {
	if userID <= 0 || chatID == 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Binding{OwnerUserID: userID, ChatID: chatID, ChatTitle: title, CreatedAt: time.Now()}, nil
}

// Key is the document key of the binding, one per (user, chat).
func (b *Binding) Key() string { return BindingKey(b.OwnerUserID, b.ChatID) }

func BindingKey(userID, chatID int64) string { return fmt.Sprintf("%d_%d", userID, chatID) }
