package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := NewBreaker("llm", 2, time.Minute)
	fail := func(context.Context) (int, error) { return 0, errors.New("down") }

	for i := 0; i < 2; i++ {
		if _, err := Call(context.Background(), b, fail); err == nil || errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("call %d: expected backend error, got %v", i, err)
		}
	}
	if !b.Open() {
		t.Fatal("expected breaker to be open")
	}
	if _, err := Call(context.Background(), b, fail); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreaker_ProbeAfterCooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBreaker("llm", 1, time.Second)
	b.now = func() time.Time { return now }

	_, _ = Call(context.Background(), b, func(context.Context) (int, error) { return 0, errors.New("down") })
	if !b.Open() {
		t.Fatal("expected open")
	}

	now = now.Add(2 * time.Second)
	val, err := Call(context.Background(), b, func(context.Context) (int, error) { return 7, nil })
	if err != nil || val != 7 {
		t.Fatalf("probe should pass, got %d, %v", val, err)
	}
	if b.Open() {
		t.Fatal("expected closed after successful probe")
	}
}

func TestBreaker_CancellationIsNotFailure(t *testing.T) {
	b := NewBreaker("llm", 1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _ = Call(ctx, b, func(ctx context.Context) (int, error) { return 0, ctx.Err() })
	if b.Open() {
		t.Fatal("cancellation must not open the breaker")
	}
}
