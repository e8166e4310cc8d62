package telegram

import (
	"context"
	"strings"

	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/adapter"
	"telegram-post-scheduler/internal/usecase"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleSceneMessage feeds a non-command private message to the wizard.
// Group chatter never reaches the wizard.
func (r *RealTelegramBotAdapter) handleSceneMessage(ctx context.Context, message *tgbotapi.Message) error {
	if !message.Chat.IsPrivate() {
		return nil
	}
	item, ok := contentFromMessage(message)
	if !ok {
		return nil
	}

	reply, err := r.facade.Receive(ctx, message.From.ID, item)
	if err != nil {
		return r.replyError(ctx, message.Chat.ID, err)
	}
	if !reply.Handled {
		return nil
	}
	return r.sendWizardReply(ctx, message.Chat.ID, reply)
}

// contentFromMessage extracts the payload the wizard understands.
// For photos the last size variant is the largest.
func contentFromMessage(m *tgbotapi.Message) (model.ContentItem, bool) {
	switch {
	case len(m.Photo) > 0:
		return model.ContentItem{Type: model.ContentPhoto, Data: m.Photo[len(m.Photo)-1].FileID, Caption: m.Caption}, true
	case m.Video != nil:
		return model.ContentItem{Type: model.ContentVideo, Data: m.Video.FileID, Caption: m.Caption}, true
	case m.Sticker != nil:
		return model.ContentItem{Type: model.ContentSticker, Data: m.Sticker.FileID}, true
	case strings.TrimSpace(m.Text) != "":
		return model.ContentItem{Type: model.ContentText, Data: m.Text}, true
	}
	return model.ContentItem{}, false
}

// sendWizardReply sends the prompts of a wizard step, then the start offer if any.
func (r *RealTelegramBotAdapter) sendWizardReply(ctx context.Context, chatID int64, reply usecase.WizardReply) error {
	for _, key := range reply.Prompts {
		if err := r.SendMessage(ctx, chatID, r.translator.T(key)); err != nil {
			return err
		}
	}
	if reply.Offer == nil {
		return nil
	}
	rows := [][]adapter.InlineButton{{
		{Text: r.translator.T("button_start_now"), Data: cbStartNow + reply.Offer.DocID},
		{Text: r.translator.T("button_start_later"), Data: cbStartLater + reply.Offer.DocID},
	}}
	return r.SendButtons(ctx, chatID, r.translator.T("interval_offer", reply.Offer.Token), rows)
}
