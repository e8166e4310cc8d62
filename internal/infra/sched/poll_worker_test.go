//go:build !integration

package sched

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/usecase"
)

type countingTicker struct {
	mu      sync.Mutex
	sources []string
	err     error
}

func (c *countingTicker) RunTick(_ context.Context, source string, _ time.Time) (usecase.TickReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, source)
	return usecase.TickReport{Due: 1, Sent: 1}, c.err
}

func (c *countingTicker) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sources...)
}

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(nil)
	return &l
}

func TestNewPollWorker_RejectsBadSpec(t *testing.T) {
	_, err := NewPollWorker("every minute please", time.Second, &countingTicker{}, newTestLogger())
	assert.Error(t, err)

	_, err = NewPollWorker("*/5 * * * *", time.Second, &countingTicker{}, newTestLogger())
	assert.NoError(t, err)
}

func TestPollWorker_RunsUntilCancelled(t *testing.T) {
	ticker := &countingTicker{}
	w, err := NewPollWorker("@every 1s", time.Second, ticker, newTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return len(ticker.calls()) > 0 }, 3*time.Second, 20*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, "cron", ticker.calls()[0])
}

func TestPollWorker_RunOnceToleratesLockHeld(t *testing.T) {
	ticker := &countingTicker{err: domain.ErrLockHeld}
	w, err := NewPollWorker("@every 1m", time.Second, ticker, newTestLogger())
	require.NoError(t, err)

	w.runOnce(context.Background())
	assert.Len(t, ticker.calls(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.runOnce(ctx)
	assert.Len(t, ticker.calls(), 1)
}
