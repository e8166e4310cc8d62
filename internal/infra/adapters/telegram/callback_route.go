package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/infra/adapters/telegram/render"
	"telegram-post-scheduler/internal/infra/logging"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data prefixes; the suffix is a chat id or a schedule id.
const (
	cbSelectGroup = "select_group:"
	cbToggle      = "toggle:"
	cbAddContent  = "add_content:"
	cbDelete      = "delete:"
	cbStartNow    = "wizard_start_now:"
	cbStartLater  = "wizard_start_later:"
)

// callback is one button press. Handlers set answer (and alert) to control the
// toast Telegram shows once the handler returns.
type callback struct {
	queryID   string
	userID    int64
	chatID    int64
	messageID int
	answer    string
	alert     bool
}

type cbHandler func(ctx context.Context, cb *callback, arg string) error

type prefixCB struct {
	Prefix string
	Fn     cbHandler
}

// Prefix-match callbacks
func (r *RealTelegramBotAdapter) cbPrefixRoutes() []prefixCB {
	return []prefixCB{
		{Prefix: cbSelectGroup, Fn: r.selectGroupCBRoute},
		{Prefix: cbToggle, Fn: r.toggleCBRoute},
		{Prefix: cbAddContent, Fn: r.addContentCBRoute},
		{Prefix: cbDelete, Fn: r.deleteCBRoute},
		{Prefix: cbStartNow, Fn: r.startNowCBRoute},
		{Prefix: cbStartLater, Fn: r.startLaterCBRoute},
	}
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}

	cb := &callback{queryID: query.ID, userID: query.From.ID, chatID: query.From.ID}
	if query.Message != nil {
		cb.messageID = query.Message.MessageID
		if query.Message.Chat != nil {
			cb.chatID = query.Message.Chat.ID
		}
	}
	ctx = logging.WithTgID(ctx, cb.userID)
	ctx = logging.WithChatID(ctx, cb.chatID)

	// Stop the Telegram spinner when we return
	defer func() {
		answer := tgbotapi.NewCallback(cb.queryID, cb.answer)
		if cb.alert {
			answer = tgbotapi.NewCallbackWithAlert(cb.queryID, cb.answer)
		}
		if _, err := r.api.Request(answer); err != nil {
			logging.With(ctx, r.log).Debug().Err(err).Msg("answer callback failed")
		}
	}()

	data := strings.TrimSpace(query.Data)
	for _, pr := range r.cbPrefixRoutes() {
		if !strings.HasPrefix(data, pr.Prefix) {
			continue
		}
		if !r.allow(ctx, cb.userID, "cb:"+strings.TrimSuffix(pr.Prefix, ":")) {
			cb.answer = r.translator.T("error_rate_limited")
			return nil
		}
		return pr.Fn(ctx, cb, strings.TrimPrefix(data, pr.Prefix))
	}

	cb.answer = r.translator.T("error_unknown_action")
	return fmt.Errorf("unknown callback data %q", data)
}

// fail answers the query with a localized error toast.
func (r *RealTelegramBotAdapter) fail(ctx context.Context, cb *callback, err error) error {
	key, ok := errorKey(err)
	cb.answer, cb.alert = r.translator.T(key), true
	if !ok {
		logging.With(ctx, r.log).Error().Err(err).Msg("callback failed")
		return err
	}
	return nil
}

func (r *RealTelegramBotAdapter) selectGroupCBRoute(ctx context.Context, cb *callback, arg string) error {
	chatID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		cb.answer = r.translator.T("error_unknown_action")
		return nil
	}
	b, err := r.facade.SelectChat(ctx, cb.userID, chatID)
	if errors.Is(err, domain.ErrNotFound) {
		cb.answer, cb.alert = r.translator.T("select_not_found"), true
		return r.editMessage(ctx, cb.chatID, cb.messageID, r.translator.T("select_not_found"))
	}
	if err != nil {
		return r.fail(ctx, cb, err)
	}
	logging.With(ctx, r.log).Info().Int64("selected_chat", chatID).Msg("chat selected")
	return r.editMessage(ctx, cb.chatID, cb.messageID, r.translator.T("select_success", b.ChatTitle))
}

// toggleCBRoute flips the schedule and redraws its summary in place.
func (r *RealTelegramBotAdapter) toggleCBRoute(ctx context.Context, cb *callback, docID string) error {
	ctx = logging.WithDocID(ctx, docID)
	s, err := r.facade.ToggleSchedule(ctx, cb.userID, docID)
	if err != nil {
		return r.fail(ctx, cb, err)
	}
	if s.IsActive {
		cb.answer = r.translator.T("toggle_activated")
	} else {
		cb.answer = r.translator.T("toggle_paused")
	}
	logging.With(ctx, r.log).Info().Bool("active", s.IsActive).Msg("schedule toggled")
	return r.editMarkdown(ctx, cb.chatID, cb.messageID, render.ScheduleSummary(r.translator.T, s), r.scheduleButtons(s))
}

func (r *RealTelegramBotAdapter) addContentCBRoute(ctx context.Context, cb *callback, docID string) error {
	ctx = logging.WithDocID(ctx, docID)
	reply, err := r.facade.StartAdd(ctx, cb.userID, docID)
	if err != nil {
		return r.fail(ctx, cb, err)
	}
	return r.sendWizardReply(ctx, cb.userID, reply)
}

func (r *RealTelegramBotAdapter) deleteCBRoute(ctx context.Context, cb *callback, docID string) error {
	ctx = logging.WithDocID(ctx, docID)
	if err := r.facade.DeleteSchedule(ctx, cb.userID, docID); err != nil {
		return r.fail(ctx, cb, err)
	}
	logging.With(ctx, r.log).Info().Msg("schedule deleted")
	return r.editMessage(ctx, cb.chatID, cb.messageID, r.translator.T("schedule_deleted"))
}

func (r *RealTelegramBotAdapter) startNowCBRoute(ctx context.Context, cb *callback, docID string) error {
	ctx = logging.WithDocID(ctx, docID)
	if _, err := r.facade.StartNow(ctx, cb.userID, docID); err != nil {
		return r.fail(ctx, cb, err)
	}
	logging.With(ctx, r.log).Info().Msg("schedule activated from wizard")
	return r.editMessage(ctx, cb.chatID, cb.messageID, r.translator.T("start_now_success"))
}

func (r *RealTelegramBotAdapter) startLaterCBRoute(ctx context.Context, cb *callback, _ string) error {
	return r.editMessage(ctx, cb.chatID, cb.messageID, r.translator.T("start_later_success"))
}
