package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned while a breaker rejects calls.
var ErrCircuitOpen = eris.New("resilience: circuit open")

// Breaker stops calling a failing service after Threshold consecutive
// failures and lets one probe through after Cooldown.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	failures int
	openedAt time.Time
	probing  bool
}

// NewBreaker creates a breaker. Non-positive values fall back to 5
// failures and a 30s cooldown.
func NewBreaker(name string, threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{name: name, threshold: threshold, cooldown: cooldown, now: time.Now}
}

// Open reports whether calls are currently rejected.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures >= b.threshold && b.now().Sub(b.openedAt) < b.cooldown
}

// Call runs fn unless the breaker is open. Context cancellation does not
// count as a failure.
func Call[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if !b.allow() {
		return zero, ErrCircuitOpen
	}
	val, err := fn(ctx)
	b.record(err == nil || ctx.Err() != nil)
	return val, err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures < b.threshold {
		return true
	}
	if b.probing || b.now().Sub(b.openedAt) < b.cooldown {
		return false
	}
	b.probing = true
	return true
}

func (b *Breaker) record(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
	if ok {
		if b.failures >= b.threshold {
			zap.L().Info("resilience: circuit closed", zap.String("service", b.name))
		}
		b.failures = 0
		return
	}
	b.failures++
	if b.failures >= b.threshold {
		b.openedAt = b.now()
		if b.failures == b.threshold {
			zap.L().Warn("resilience: circuit opened",
				zap.String("service", b.name),
				zap.Int("failures", b.failures),
			)
		}
	}
}
