package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	name   string
	titles []string
	err    error
}

func (r *recordingSender) Send(_ context.Context, title, _ string) error {
	r.titles = append(r.titles, title)
	return r.err
}

func (r *recordingSender) Name() string { return r.name }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifyDeliversToAllSenders(t *testing.T) {
	a := &recordingSender{name: "a"}
	b := &recordingSender{name: "b"}
	n := NewNotifier([]Sender{a, b}, nil, discardLogger())

	require.NoError(t, n.Notify(context.Background(), "trade_executed", "Auto-trade", "bought 5 AAPL"))
	require.Equal(t, []string{"Auto-trade"}, a.titles)
	require.Equal(t, []string{"Auto-trade"}, b.titles)
}

func TestNotifyFiltersEvents(t *testing.T) {
	s := &recordingSender{name: "a"}
	n := NewNotifier([]Sender{s}, []string{"trade_executed"}, discardLogger())
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, "portfolio_reset", "Reset", "ignored"))
	require.Empty(t, s.titles)

	require.NoError(t, n.Notify(ctx, "trade_executed", "Trade", "delivered"))
	require.Equal(t, []string{"Trade"}, s.titles)
}

func TestNotifyCollectsSenderFailures(t *testing.T) {
	ok := &recordingSender{name: "ok"}
	broken := &recordingSender{name: "broken", err: errors.New("webhook down")}
	n := NewNotifier([]Sender{broken, ok}, nil, discardLogger())

	err := n.Notify(context.Background(), "trade_executed", "Trade", "msg")
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken")

	// The healthy sender still received the notification.
	require.Equal(t, []string{"Trade"}, ok.titles)
}

func TestNotifyNoSendersIsNoop(t *testing.T) {
	n := NewNotifier(nil, nil, discardLogger())
	require.NoError(t, n.Notify(context.Background(), "trade_executed", "t", "m"))
}
