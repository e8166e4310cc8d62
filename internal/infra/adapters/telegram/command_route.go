package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/adapter"
	"telegram-post-scheduler/internal/infra/adapters/telegram/render"
	"telegram-post-scheduler/internal/infra/logging"
	"telegram-post-scheduler/internal/infra/metrics"
	"telegram-post-scheduler/internal/usecase"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":     r.handleStartCommand,
		"help":      r.handleHelpCommand,
		"setconfig": r.handleSetConfigCommand,
		"manage":    r.privateOnly(r.handleManageCommand),
		"list":      r.privateOnly(r.handleListCommand),
		"cancel":    r.handleCancelCommand,

		"newtext":    r.newContent(model.ContentText),
		"settext":    r.newContent(model.ContentText),
		"newimg":     r.newContent(model.ContentPhoto),
		"setimg":     r.newContent(model.ContentPhoto),
		"newphoto":   r.newContent(model.ContentPhoto),
		"newvideo":   r.newContent(model.ContentVideo),
		"newsticker": r.newContent(model.ContentSticker),
	}
}

func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	name := strings.ToLower(message.Command())
	handler, ok := r.commandRoutes()[name]
	if !ok {
		return nil
	}
	metrics.IncTelegramCommand("/" + name)

	// A command always leaves an open wizard step; /cancel reports it itself.
	if name != "cancel" {
		if _, err := r.facade.Cancel(ctx, message.From.ID); err != nil {
			logging.With(ctx, r.log).Warn().Err(err).Msg("failed to leave scene before command")
		}
	}
	return handler(ctx, message)
}

// privateOnly refuses commands sent outside the private chat with the bot.
func (r *RealTelegramBotAdapter) privateOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		if !message.Chat.IsPrivate() {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_private_only"))
		}
		return next(ctx, message)
	}
}

// handleStartCommand greets the user; "/start manage" is the deep link sent after /setconfig.
func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	if strings.TrimSpace(message.CommandArguments()) == "manage" {
		return r.privateOnly(r.handleManageCommand)(ctx, message)
	}
	return r.SendMessage(ctx, message.Chat.ID, r.translator.T("welcome_message", message.From.FirstName))
}

// handleHelpCommand lists the commands, with a support link when one is configured.
func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	text := r.translator.T("help_message")
	support := strings.TrimPrefix(strings.TrimSpace(r.cfg.SupportUsername), "@")
	if support == "" {
		return r.SendMessage(ctx, message.Chat.ID, text)
	}
	rows := [][]adapter.InlineButton{{{Text: r.translator.T("button_support"), URL: "https://t.me/" + support}}}
	return r.SendButtons(ctx, message.Chat.ID, text, rows)
}

// handleSetConfigCommand registers the current group for the sending admin.
func (r *RealTelegramBotAdapter) handleSetConfigCommand(ctx context.Context, message *tgbotapi.Message) error {
	_, err := r.facade.RegisterChat(ctx, usecase.RegisterChat{
		ChatID:    message.Chat.ID,
		ChatTitle: message.Chat.Title,
		IsGroup:   message.Chat.IsGroup() || message.Chat.IsSuperGroup(),
		UserID:    message.From.ID,
	})
	switch {
	case errors.Is(err, domain.ErrContext):
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_group_only"))
	case errors.Is(err, domain.ErrPermission):
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_admin_only"))
	case err != nil:
		logging.With(ctx, r.log).Error().Err(err).Msg("failed to register chat")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_setconfig"))
	}

	text := r.translator.T("setconfig_success")
	if r.cfg.Username == "" {
		return r.SendMessage(ctx, message.Chat.ID, text)
	}
	link := fmt.Sprintf("https://t.me/%s?start=manage", r.cfg.Username)
	rows := [][]adapter.InlineButton{{{Text: r.translator.T("button_manage_private"), URL: link}}}
	return r.SendButtons(ctx, message.Chat.ID, text, rows)
}

// handleManageCommand shows the user's registered chats as selectable buttons.
func (r *RealTelegramBotAdapter) handleManageCommand(ctx context.Context, message *tgbotapi.Message) error {
	bindings, err := r.facade.ManageTargets(ctx, message.From.ID)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyResult) {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_no_bindings"))
		}
		return r.replyError(ctx, message.Chat.ID, err)
	}
	rows := make([][]adapter.InlineButton, 0, len(bindings))
	for _, b := range bindings {
		rows = append(rows, []adapter.InlineButton{{Text: b.ChatTitle, Data: fmt.Sprintf("%s%d", cbSelectGroup, b.ChatID)}})
	}
	return r.SendButtons(ctx, message.Chat.ID, r.translator.T("manage_prompt"), rows)
}

// handleListCommand sends a header and one summary per schedule of the selected chat.
func (r *RealTelegramBotAdapter) handleListCommand(ctx context.Context, message *tgbotapi.Message) error {
	listing, err := r.facade.ListSchedules(ctx, message.From.ID)
	switch {
	case errors.Is(err, domain.ErrEmptyResult) && listing != nil:
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("list_empty", listing.ChatTitle))
	case errors.Is(err, domain.ErrNotFound):
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("select_not_found"))
	case err != nil:
		return r.replyError(ctx, message.Chat.ID, err)
	}

	if err := r.sendMarkdown(ctx, message.Chat.ID, render.ListHeader(r.translator.T, listing.ChatTitle), nil); err != nil {
		return err
	}
	for _, s := range listing.Schedules {
		if err := r.sendMarkdown(ctx, message.Chat.ID, render.ScheduleSummary(r.translator.T, s), r.scheduleButtons(s)); err != nil {
			return err
		}
	}
	return nil
}

func (r *RealTelegramBotAdapter) scheduleButtons(s *model.Schedule) [][]adapter.InlineButton {
	toggle := r.translator.T("button_start")
	if s.IsActive {
		toggle = r.translator.T("button_pause")
	}
	return [][]adapter.InlineButton{{
		{Text: toggle, Data: cbToggle + s.ID},
		{Text: r.translator.T("button_add"), Data: cbAddContent + s.ID},
		{Text: r.translator.T("button_delete"), Data: cbDelete + s.ID},
	}}
}

func (r *RealTelegramBotAdapter) handleCancelCommand(ctx context.Context, message *tgbotapi.Message) error {
	left, err := r.facade.Cancel(ctx, message.From.ID)
	if err != nil {
		return r.replyError(ctx, message.Chat.ID, err)
	}
	if !left {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("nothing_to_cancel"))
	}
	return r.SendMessage(ctx, message.Chat.ID, r.translator.T("scene_cancelled"))
}

// newContent opens the new-schedule wizard for ct.
func (r *RealTelegramBotAdapter) newContent(ct model.ContentType) commandHandler {
	return r.privateOnly(func(ctx context.Context, message *tgbotapi.Message) error {
		reply, err := r.facade.StartNew(ctx, message.From.ID, ct)
		if err != nil {
			return r.replyError(ctx, message.Chat.ID, err)
		}
		return r.sendWizardReply(ctx, message.Chat.ID, reply)
	})
}

// replyError turns user-facing failures into a localized reply and logs the rest.
func (r *RealTelegramBotAdapter) replyError(ctx context.Context, chatID int64, err error) error {
	key, ok := errorKey(err)
	if !ok {
		logging.With(ctx, r.log).Error().Err(err).Msg("request failed")
	}
	return r.SendMessage(ctx, chatID, r.translator.T(key))
}

// errorKey maps err to a locale key; ok is false for unexpected failures.
func errorKey(err error) (string, bool) {
	if reason := domain.ValidationReason(err); reason != "" {
		return reason, true
	}
	switch {
	case errors.Is(err, domain.ErrNoChatSelected):
		return "error_no_chat_selected", true
	case errors.Is(err, domain.ErrPermission):
		return "error_admin_only", true
	case errors.Is(err, domain.ErrContext):
		return "error_private_only", true
	case errors.Is(err, domain.ErrNotFound):
		return "schedule_not_found", true
	case errors.Is(err, domain.ErrEmptyResult):
		return "error_no_bindings", true
	}
	return "error_generic", false
}
