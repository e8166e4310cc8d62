package telegram

import (
	"context"
	"errors"
	"fmt"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/adapter"
	"telegram-post-scheduler/internal/infra/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var _ adapter.ContentSender = (*Sender)(nil)

// Sender posts playlist items to destination chats, throttled to the Bot API's
// global send budget.
type Sender struct {
	api     BotAPI
	limiter *rate.Limiter
	log     *zerolog.Logger
}

func NewSender(api BotAPI, rps int, logger *zerolog.Logger) *Sender {
	if rps <= 0 {
		rps = 25
	}
	l := logger.With().Str("component", "tg_sender").Logger()
	return &Sender{api: api, limiter: rate.NewLimiter(rate.Limit(rps), rps), log: &l}
}

func (s *Sender) SendContent(ctx context.Context, chatID int64, item model.ContentItem) error {
	if err := s.limiter.Wait(ctx); err != nil {
		metrics.IncContentSend(string(item.Type), "transient")
		return fmt.Errorf("send throttle: %v: %w", err, domain.ErrTransientDelivery)
	}

	msg, err := contentMessage(chatID, item)
	if err != nil {
		metrics.IncContentSend(string(item.Type), "rejected")
		return err
	}

	_, err = s.api.Send(msg)
	err = classifySendError(err)
	switch {
	case err == nil:
		metrics.IncContentSend(string(item.Type), "ok")
	case errors.Is(err, domain.ErrPlatformRejected):
		metrics.IncContentSend(string(item.Type), "rejected")
	default:
		metrics.IncContentSend(string(item.Type), "transient")
	}
	if err != nil {
		s.log.Debug().Err(err).Int64("chat_id", chatID).Str("type", string(item.Type)).Msg("content send failed")
	}
	return err
}

// contentMessage builds the typed Bot API request for item. Stored file ids are
// reused as-is; nothing is uploaded.
func contentMessage(chatID int64, item model.ContentItem) (tgbotapi.Chattable, error) {
	switch item.Type {
	case model.ContentText:
		return tgbotapi.NewMessage(chatID, item.Data), nil
	case model.ContentPhoto:
		p := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(item.Data))
		p.Caption = item.Caption
		return p, nil
	case model.ContentVideo:
		v := tgbotapi.NewVideo(chatID, tgbotapi.FileID(item.Data))
		v.Caption = item.Caption
		return v, nil
	case model.ContentSticker:
		return tgbotapi.NewSticker(chatID, tgbotapi.FileID(item.Data)), nil
	}
	return nil, fmt.Errorf("unsupported content type %q: %w", item.Type, domain.ErrPlatformRejected)
}
