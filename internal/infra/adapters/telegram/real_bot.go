package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"telegram-post-scheduler/internal/application"
	"telegram-post-scheduler/internal/config"
	"telegram-post-scheduler/internal/domain/ports/adapter"
	"telegram-post-scheduler/internal/infra/logging"
	"telegram-post-scheduler/internal/infra/metrics"
	red "telegram-post-scheduler/internal/infra/redis"
	"telegram-post-scheduler/internal/infra/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// BotAPI is the part of *tgbotapi.BotAPI the adapter uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatAdministrators(config tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Translator resolves locale keys.
type Translator interface {
	T(key string, args ...interface{}) string
}

// NewBotAPI connects to Telegram and fills cfg.Username from getMe when unset.
func NewBotAPI(cfg *config.BotConfig) (*tgbotapi.BotAPI, error) {
	if cfg == nil || cfg.Token == "" {
		return nil, errors.New("bot token is empty")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	if cfg.Username == "" {
		cfg.Username = bot.Self.UserName
	}
	return bot, nil
}

// RealTelegramBotAdapter receives updates (webhook or long polling) and routes
// them to the BotFacade.
type RealTelegramBotAdapter struct {
	api         BotAPI
	cfg         *config.BotConfig
	limits      config.RateLimitConfig
	facade      application.Facade
	translator  Translator
	rateLimiter *red.RateLimiter
	log         *zerolog.Logger
}

func NewRealTelegramBotAdapter(
	api BotAPI,
	cfg *config.BotConfig,
	limits config.RateLimitConfig,
	facade application.Facade,
	translator Translator,
	rateLimiter *red.RateLimiter,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if api == nil {
		return nil, errors.New("bot api is nil")
	}
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if translator == nil {
		return nil, errors.New("translator is nil")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 5
	}
	l := logger.With().Str("component", "tg_bot").Logger()
	return &RealTelegramBotAdapter{
		api:         api,
		cfg:         cfg,
		limits:      limits,
		facade:      facade,
		translator:  translator,
		rateLimiter: rateLimiter,
		log:         &l,
	}, nil
}

// StartPolling long-polls getUpdates and fans updates out to a worker pool.
// It blocks until ctx is cancelled.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if err := r.SetMenuCommands(ctx); err != nil {
		r.log.Warn().Err(err).Msg("failed to set menu commands")
	}

	// Long polling and webhooks are mutually exclusive on Telegram's side.
	if _, err := r.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		r.log.Warn().Err(err).Msg("failed to delete webhook before polling")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.api.GetUpdatesChan(u)

	pool := worker.NewPool(r.cfg.Workers, r.log)
	pool.Start(ctx)
	defer pool.Stop()

	r.log.Info().Int("workers", r.cfg.Workers).Msg("telegram polling started")
	for {
		select {
		case <-ctx.Done():
			r.api.StopReceivingUpdates()
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			task := func(ctx context.Context) error { return r.HandleUpdate(ctx, up) }
			if err := pool.Submit(task); errors.Is(err, worker.ErrQueueFull) {
				r.log.Warn().Int("update_id", up.UpdateID).Msg("update queue full, handling inline")
				if err := task(ctx); err != nil {
					r.log.Warn().Err(err).Int("update_id", up.UpdateID).Msg("update handling failed")
				}
			}
		}
	}
}

// HandleUpdate processes one update. Errors the user should see are turned into
// replies here; the returned error is for logging only.
func (r *RealTelegramBotAdapter) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if logging.TraceID(ctx) == "" {
		ctx = logging.WithTraceID(ctx, uuid.NewString())
	}

	// ----- Inline button callbacks -----
	if update.CallbackQuery != nil {
		return r.handleQuery(ctx, update.CallbackQuery)
	}

	// ----- Regular messages -----
	message := update.Message
	if message == nil || message.From == nil || message.Chat == nil {
		return nil
	}
	ctx = logging.WithTgID(ctx, message.From.ID)
	ctx = logging.WithChatID(ctx, message.Chat.ID)

	command := "message"
	if message.IsCommand() {
		command = "/" + strings.ToLower(message.Command())
	}
	if !r.allow(ctx, message.From.ID, command) {
		if message.IsCommand() {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_rate_limited"))
		}
		return nil
	}

	if message.IsCommand() {
		return r.handleCommand(ctx, message)
	}
	return r.handleSceneMessage(ctx, message)
}

// allow applies the per-user rate limit. A limiter failure lets the request through.
func (r *RealTelegramBotAdapter) allow(ctx context.Context, userID int64, command string) bool {
	if r.rateLimiter == nil {
		return true
	}
	window := r.limits.Window
	if window <= 0 {
		window = time.Minute
	}
	limit := r.limits.Commands
	if limit <= 0 {
		limit = 20
	}
	allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(userID, command), limit, window)
	if err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Msg("rate limit error")
		return true
	}
	if !allowed {
		metrics.IncRateLimitTriggered()
	}
	return allowed
}

// SendMessage sends a plain text reply.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// SendButtons sends a message with inline buttons.
// - If btn.URL is set, the button opens a link
// - Else if btn.Data is set, the button sends callback data
// - Else btn.Text is used as callback data
func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if kb, ok := inlineKeyboard(rows); ok {
		msg.ReplyMarkup = kb
	}
	_, err := r.api.Send(msg)
	return err
}

// sendMarkdown sends a MarkdownV2 message; text must already be escaped.
func (r *RealTelegramBotAdapter) sendMarkdown(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if kb, ok := inlineKeyboard(rows); ok {
		msg.ReplyMarkup = kb
	}
	_, err := r.api.Send(msg)
	return err
}

// editMessage replaces the text of a message the bot sent earlier, dropping its buttons.
func (r *RealTelegramBotAdapter) editMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.api.Request(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

// editMarkdown replaces a message with escaped MarkdownV2 text and new buttons.
func (r *RealTelegramBotAdapter) editMarkdown(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	if kb, ok := inlineKeyboard(rows); ok {
		edit.ReplyMarkup = &kb
	}
	_, err := r.api.Request(edit)
	return err
}

// SetMenuCommands publishes the command list shown in Telegram's menu.
func (r *RealTelegramBotAdapter) SetMenuCommands(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := r.translator.T
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: t("menu_start")},
		tgbotapi.BotCommand{Command: "help", Description: t("menu_help")},
		tgbotapi.BotCommand{Command: "manage", Description: t("menu_manage")},
		tgbotapi.BotCommand{Command: "list", Description: t("menu_list")},
		tgbotapi.BotCommand{Command: "cancel", Description: t("menu_cancel")},
	)
	if _, err := r.api.Request(cmds); err != nil {
		return fmt.Errorf("set my commands: %w", err)
	}
	return nil
}

func inlineKeyboard(rows [][]adapter.InlineButton) (tgbotapi.InlineKeyboardMarkup, bool) {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, r)
	}
	if len(kbRows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...), true
}
