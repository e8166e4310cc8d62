package telegram

import (
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

var _ BotAPI = (*NoopAPI)(nil)

// NoopAPI implements BotAPI for local/dev runs without a bot token.
// It logs outgoing requests instead of calling Telegram; updates can still be
// POSTed to the webhook endpoint by hand.
type NoopAPI struct {
	log *zerolog.Logger
}

func NewNoopAPI(logger *zerolog.Logger) *NoopAPI {
	l := logger.With().Str("component", "noop_telegram").Logger()
	return &NoopAPI{log: &l}
}

func (n *NoopAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	n.log.Info().Interface("request", c).Msgf("[noop-telegram] send %T", c)
	return tgbotapi.Message{}, nil
}

func (n *NoopAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	n.log.Debug().Interface("request", c).Msgf("[noop-telegram] request %T", c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (n *NoopAPI) GetChatAdministrators(cfg tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error) {
	return nil, errors.New("chat administrators are not available in noop mode")
}

func (n *NoopAPI) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (n *NoopAPI) StopReceivingUpdates() {}
