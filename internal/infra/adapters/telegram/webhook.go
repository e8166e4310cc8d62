package telegram

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// allowedUpdates are the update kinds the router consumes.
var allowedUpdates = []string{"message", "callback_query"}

// RequestMaker is the raw Bot API call surface of *tgbotapi.BotAPI.
type RequestMaker interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// SetWebhook points Telegram at url. secret is echoed back by Telegram in the
// X-Telegram-Bot-Api-Secret-Token header of every delivery.
func SetWebhook(api RequestMaker, url, secret string, dropPending bool) error {
	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "https://") {
		return errors.New("webhook url must be https")
	}
	params := tgbotapi.Params{}
	params["url"] = url
	params.AddNonEmpty("secret_token", secret)
	params.AddBool("drop_pending_updates", dropPending)
	if err := params.AddInterface("allowed_updates", allowedUpdates); err != nil {
		return err
	}
	resp, err := api.MakeRequest("setWebhook", params)
	if err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("set webhook: %s", resp.Description)
	}
	return nil
}

func DeleteWebhook(api RequestMaker, dropPending bool) error {
	params := tgbotapi.Params{}
	params.AddBool("drop_pending_updates", dropPending)
	resp, err := api.MakeRequest("deleteWebhook", params)
	if err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("delete webhook: %s", resp.Description)
	}
	return nil
}
