package telegram

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"telegram-post-scheduler/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Descriptions Telegram uses when a chat will never accept posts from the bot.
var permanentMarkers = []string{
	"chat not found",
	"bot was kicked",
	"bot was blocked",
	"bot is not a member",
	"not enough rights",
	"have no rights to send",
	"group chat was upgraded to a supergroup",
	"user is deactivated",
}

// classifySendError maps a Bot API failure onto domain.ErrPlatformRejected or
// domain.ErrTransientDelivery.
func classifySendError(err error) error {
	if err == nil {
		return nil
	}

	code, desc := 0, err.Error()
	var apiErr *tgbotapi.Error
	var apiVal tgbotapi.Error
	switch {
	case errors.As(err, &apiErr):
		code, desc = apiErr.Code, apiErr.Message
	case errors.As(err, &apiVal):
		code, desc = apiVal.Code, apiVal.Message
	}

	if code == http.StatusForbidden || isPermanent(desc) {
		return fmt.Errorf("telegram %d %q: %w", code, desc, domain.ErrPlatformRejected)
	}
	return fmt.Errorf("telegram %d %q: %w", code, desc, domain.ErrTransientDelivery)
}

func isPermanent(desc string) bool {
	desc = strings.ToLower(desc)
	for _, m := range permanentMarkers {
		if strings.Contains(desc, m) {
			return true
		}
	}
	return false
}
