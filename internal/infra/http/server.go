package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"telegram-post-scheduler/internal/application"
	"telegram-post-scheduler/internal/config"
	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/infra/logging"
	"telegram-post-scheduler/internal/infra/metrics"
	"telegram-post-scheduler/internal/usecase"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// maxUpdateBytes caps webhook bodies; Telegram updates are far smaller.
const maxUpdateBytes = 1 << 20

// UpdateHandler consumes one Telegram update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

// Ticker runs one poller pass.
type Ticker interface {
	RunTick(ctx context.Context, source string, now time.Time) (usecase.TickReport, error)
}

type Deps struct {
	Updates UpdateHandler
	Ticker  Ticker
	Auth    *TickAuth
	Health  func(ctx context.Context) error // optional readiness probe
}

type Server struct {
	cfg           config.HTTPConfig
	webhookSecret string
	deps          Deps
	log           *zerolog.Logger
	now           func() time.Time
	server        *http.Server
}

func NewServer(cfg config.HTTPConfig, webhookSecret string, deps Deps, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "http").Logger()
	return &Server{
		cfg:           cfg,
		webhookSecret: webhookSecret,
		deps:          deps,
		log:           &l,
		now:           time.Now,
	}
}

// Handler builds the router. It is exported for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log), Timeout(s.cfg.RequestTimeout))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/telegram/webhook", s.handleWebhook)
	r.Post("/cron/tick", s.handleTick)
	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Port).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		if err := s.deps.Health(r.Context()); err != nil {
			logging.With(r.Context(), s.log).Warn().Err(err).Msg("health check failed")
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// handleWebhook accepts one update per request. Once the body decodes the
// response is always 200 so Telegram does not redeliver; handling errors are
// logged and counted instead.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	l := logging.With(r.Context(), s.log)
	if s.deps.Updates == nil {
		http.Error(w, "webhook disabled", http.StatusServiceUnavailable)
		return
	}
	if s.webhookSecret != "" {
		got := r.Header.Get(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.webhookSecret)) != 1 {
			metrics.IncWebhookUpdate("unauthorized")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&update); err != nil {
		metrics.IncWebhookUpdate("bad_request")
		l.Warn().Err(err).Msg("webhook: decode update")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := s.deps.Updates.HandleUpdate(r.Context(), update); err != nil {
		metrics.IncWebhookUpdate("error")
		l.Error().Err(err).Int("update_id", update.UpdateID).Msg("webhook: handle update")
	} else {
		metrics.IncWebhookUpdate("ok")
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	l := logging.With(r.Context(), s.log)
	if s.deps.Ticker == nil || s.deps.Auth == nil {
		http.Error(w, "tick disabled", http.StatusServiceUnavailable)
		return
	}
	claims, err := s.deps.Auth.ParseFromRequest(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	report, err := s.deps.Ticker.RunTick(r.Context(), application.TickSourceHTTP, s.now())
	switch {
	case errors.Is(err, domain.ErrLockHeld):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "tick already running"})
		return
	case err != nil:
		l.Error().Err(err).Str("caller", claims.Subject).Msg("tick failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "tick failed"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
