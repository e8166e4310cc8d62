package adapter

import (
	"context"

	"telegram-post-scheduler/internal/domain/model"
)

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// TelegramBotAdapter sends operator-facing replies.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]InlineButton) error
}

// ContentSender delivers one playlist item to a destination chat.
// Errors wrap domain.ErrPlatformRejected when the chat will never accept the
// post, and domain.ErrTransientDelivery otherwise.
type ContentSender interface {
	SendContent(ctx context.Context, chatID int64, item model.ContentItem) error
}

// ChatAdminChecker answers whether a user administers a chat.
type ChatAdminChecker interface {
	IsChatAdmin(ctx context.Context, chatID, userID int64) (bool, error)
}
