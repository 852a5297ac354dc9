package memory

import (
	"context"
	"sync"

	"github.com/quantfall/stockbot/internal/domain"
)

// subscriberBuffer is the per-subscriber channel capacity. Publish drops
// the message for subscribers whose buffer is full rather than blocking
// the publisher.
const subscriberBuffer = 128

// SignalBus implements domain.SignalBus with in-process channel fan-out.
// It supports exact channel matches plus the single wildcard "*".
type SignalBus struct {
	mu   sync.RWMutex
	subs map[string][]chan []byte
}

// NewSignalBus creates an empty in-process bus.
func NewSignalBus() *SignalBus {
	return &SignalBus{
		subs: make(map[string][]chan []byte),
	}
}

// Publish delivers the payload to every subscriber of channel and to
// wildcard subscribers. It never blocks.
func (sb *SignalBus) Publish(_ context.Context, channel string, payload []byte) error {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	for _, ch := range sb.subs[channel] {
		select {
		case ch <- payload:
		default:
		}
	}
	if channel != "*" {
		for _, ch := range sb.subs["*"] {
			select {
			case ch <- payload:
			default:
			}
		}
	}
	return nil
}

// Subscribe registers a subscriber for channel and returns its receive
// channel. The subscription is removed and the channel closed when the
// context is cancelled.
func (sb *SignalBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte, subscriberBuffer)

	sb.mu.Lock()
	sb.subs[channel] = append(sb.subs[channel], ch)
	sb.mu.Unlock()

	go func() {
		<-ctx.Done()
		sb.mu.Lock()
		subs := sb.subs[channel]
		for i, c := range subs {
			if c == ch {
				sb.subs[channel] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		sb.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// Compile-time interface check.
var _ domain.SignalBus = (*SignalBus)(nil)
