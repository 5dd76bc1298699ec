package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

type hintedErr struct {
	status int
	after  time.Duration
}

func (e *hintedErr) Error() string                 { return "hinted" }
func (e *hintedErr) HTTPStatus() int               { return e.status }
func (e *hintedErr) RetryAfterHint() time.Duration { return e.after }

// recordSleeps returns a config whose sleeps are captured instead of waited.
func recordSleeps(cfg RetryConfig, into *[]time.Duration) RetryConfig {
	cfg.sleep = func(ctx context.Context, d time.Duration) error {
		*into = append(*into, d)
		return ctx.Err()
	}
	return cfg
}

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	var calls int
	err := Do(context.Background(), DefaultRetryConfig(), func(_ context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_SuccessAfterRetry(t *testing.T) {
	var calls int
	var sleeps []time.Duration
	cfg := recordSleeps(RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond}, &sleeps)

	err := Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		if calls < 3 {
			return &hintedErr{status: 503}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if len(sleeps) != 2 {
		t.Errorf("expected 2 sleeps, got %d", len(sleeps))
	}
}

func TestDo_ExhaustsRetries(t *testing.T) {
	var calls int
	var sleeps []time.Duration
	cfg := recordSleeps(RetryConfig{MaxAttempts: 4, InitialBackoff: time.Millisecond}, &sleeps)

	err := Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		return NewTransientError(errors.New("always fails"), 500)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}
	if len(sleeps) != 3 {
		t.Errorf("expected no sleep after the last attempt, got %d sleeps", len(sleeps))
	}
}

func TestDo_PermanentErrorNotRetried(t *testing.T) {
	var calls int
	err := Do(context.Background(), DefaultRetryConfig(), func(_ context.Context) error {
		calls++
		return &hintedErr{status: 400}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_ContextCancelledStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	err := Do(ctx, DefaultRetryConfig(), func(_ context.Context) error {
		calls++
		cancel()
		return NewTransientError(errors.New("temporary"), 503)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call after cancellation, got %d", calls)
	}
}

func TestDo_CustomShouldRetry(t *testing.T) {
	sentinel := errors.New("retry me")
	var calls int
	var sleeps []time.Duration
	cfg := recordSleeps(RetryConfig{
		MaxAttempts: 2,
		ShouldRetry: func(err error) bool { return errors.Is(err, sentinel) },
	}, &sleeps)

	_ = Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		return sentinel
	})
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestDo_OnRetryCalled(t *testing.T) {
	var attempts []int
	var sleeps []time.Duration
	cfg := recordSleeps(RetryConfig{
		MaxAttempts: 3,
		OnRetry:     func(attempt int, _ error) { attempts = append(attempts, attempt) },
	}, &sleeps)

	_ = Do(context.Background(), cfg, func(_ context.Context) error {
		return NewTransientError(errors.New("x"), 502)
	})
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("expected OnRetry attempts [1 2], got %v", attempts)
	}
}

func TestDoVal_ReturnsValue(t *testing.T) {
	var calls int
	var sleeps []time.Duration
	cfg := recordSleeps(RetryConfig{MaxAttempts: 3}, &sleeps)

	got, err := DoVal(context.Background(), cfg, func(_ context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", NewTransientError(errors.New("x"), 429)
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("expected ok, got %q", got)
	}
}

func TestDoVal_HonorsRetryAfterHint(t *testing.T) {
	var sleeps []time.Duration
	cfg := recordSleeps(RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Second,
	}, &sleeps)

	_, _ = DoVal(context.Background(), cfg, func(_ context.Context) (int, error) {
		return 0, &hintedErr{status: 429, after: 3 * time.Second}
	})
	if len(sleeps) != 1 || sleeps[0] != 3*time.Second {
		t.Errorf("expected a single 3s sleep, got %v", sleeps)
	}
}

func TestDoVal_RetryAfterHintCapped(t *testing.T) {
	var sleeps []time.Duration
	cfg := recordSleeps(RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Second,
	}, &sleeps)

	_, _ = DoVal(context.Background(), cfg, func(_ context.Context) (int, error) {
		return 0, &hintedErr{status: 429, after: time.Minute}
	})
	if len(sleeps) != 1 || sleeps[0] != 2*time.Second {
		t.Errorf("expected hint capped at 2s, got %v", sleeps)
	}
}

func TestComputeBackoff(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     1 * time.Second,
		Multiplier:     2.0,
	}

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1 * time.Second,
	}
	for attempt, w := range want {
		if got := computeBackoff(attempt, cfg); got != w {
			t.Errorf("attempt %d: expected %v, got %v", attempt, w, got)
		}
	}
}

func TestComputeBackoff_JitterBounds(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.5,
	}
	for i := 0; i < 100; i++ {
		d := computeBackoff(0, cfg)
		if d < 50*time.Millisecond || d > 150*time.Millisecond {
			t.Fatalf("jittered delay %v out of bounds", d)
		}
	}
}

func TestFromSettings(t *testing.T) {
	cfg := FromSettings(5, 0, 10*time.Second)
	if cfg.MaxAttempts != 5 {
		t.Errorf("expected 5 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.InitialBackoff != 500*time.Millisecond {
		t.Errorf("expected default initial backoff, got %v", cfg.InitialBackoff)
	}
	if cfg.MaxBackoff != 10*time.Second {
		t.Errorf("expected 10s max backoff, got %v", cfg.MaxBackoff)
	}
}
