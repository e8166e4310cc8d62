package telegram

import (
	"context"
	"fmt"

	"telegram-post-scheduler/internal/domain/ports/adapter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var _ adapter.ChatAdminChecker = (*AdminChecker)(nil)

// AdminChecker asks Telegram for the current administrator list of a chat.
type AdminChecker struct {
	api BotAPI
}

func NewAdminChecker(api BotAPI) *AdminChecker {
	return &AdminChecker{api: api}
}

func (a *AdminChecker) IsChatAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	members, err := a.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return false, fmt.Errorf("get chat administrators: %w", err)
	}
	for _, m := range members {
		if m.User != nil && m.User.ID == userID {
			return true, nil
		}
	}
	return false, nil
}
