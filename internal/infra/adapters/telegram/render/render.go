// Package render formats schedules for Telegram MarkdownV2 messages.
package render

import (
	"strconv"
	"strings"

	"telegram-post-scheduler/internal/domain/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Translate resolves a locale key, formatting args into it.
type Translate func(key string, args ...interface{}) string

// Escape makes s safe to embed in a MarkdownV2 message.
func Escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

// ListHeader is the line sent before the per-schedule summaries of a chat.
// The title is escaped; the translation may carry its own markup.
func ListHeader(t Translate, chatTitle string) string {
	return t("list_header", Escape(chatTitle))
}

// ScheduleSummary renders one line describing s: type, item count, status and interval.
// Every translated fragment is escaped, so locales stay plain text.
func ScheduleSummary(t Translate, s *model.Schedule) string {
	status := t("status_paused")
	if s.IsActive {
		status = t("status_active")
	}
	interval := t("interval_unset")
	if s.HasInterval() {
		interval = FormatSeconds(s.Interval())
	}

	var b strings.Builder
	b.WriteString("*" + Escape(t("summary_title", titleCase(string(s.ContentType)))) + "* ")
	b.WriteString(Escape(t("summary_items", len(s.ContentItems))))
	b.WriteString(" \\| *" + Escape(t("summary_status")) + "* " + Escape(status))
	b.WriteString(" \\| *" + Escape(t("summary_interval")) + "* " + Escape(interval))
	return b.String()
}

// FormatSeconds prints an interval the way it is stored, in seconds.
func FormatSeconds(n int) string {
	return strconv.Itoa(n) + "s"
}

func titleCase(s string) string {
	if s == "" {
		return "N/A"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
