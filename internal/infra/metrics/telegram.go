package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		bindingsRegisteredTotal,
		telegramCommandsReceivedTotal,
		telegramRateLimitTriggeredTotal,
		telegramSendsTotal,
		webhookUpdatesTotal,
	)
}

var (
	bindingsRegisteredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bindings_registered_total",
			Help: "Total number of chats registered through /setconfig.",
		},
	)

	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming commands and callback actions from users.",
		},
		[]string{"command"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times users have been rate-limited.",
		},
	)

	telegramSendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_content_sends_total",
			Help: "Scheduled content deliveries by content type and outcome.",
		},
		[]string{"type", "result"}, // result: ok | rejected | transient
	)

	webhookUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_webhook_updates_total",
			Help: "Webhook updates received, labeled by handling status.",
		},
		[]string{"status"},
	)
)

func IncBindingRegistered() {
	bindingsRegisteredTotal.Inc()
}

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}

func IncContentSend(contentType, result string) {
	telegramSendsTotal.WithLabelValues(norm(contentType), norm(result)).Inc()
}

func IncWebhookUpdate(status string) {
	webhookUpdatesTotal.WithLabelValues(norm(status)).Inc()
}
