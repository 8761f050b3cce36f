package notify

import (
	"context"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"

	"vegorder/internal/models"
	"vegorder/internal/port"
)

type BreakerConfig struct {
	MaxFailures uint32
	OpenFor     time.Duration
}

// Breaker stops calling a failing notifier for a while so that orders do not
// each wait out the full send timeout. While open it fails immediately with
// gobreaker.ErrOpenState.
type Breaker struct {
	next port.OrderNotifier
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func NewBreaker(next port.OrderNotifier, cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenFor <= 0 {
		cfg.OpenFor = time.Minute
	}

	settings := gobreaker.Settings{
		Name:    "order-notifier",
		Timeout: cfg.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[NOTIFY] [WARN] %s breaker %s -> %s", name, from, to)
		},
	}

	return &Breaker{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (b *Breaker) SendOrderNotification(ctx context.Context, order models.Order, items []models.OrderItem) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.SendOrderNotification(ctx, order, items)
	})
	return err
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
