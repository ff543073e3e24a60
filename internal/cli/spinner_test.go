package cli

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func quietSpinner(ctx context.Context) *Spinner {
	s := newSpinnerWithContext(ctx, "Loading...")
	s.w = io.Discard
	return s
}

func TestSpinnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := quietSpinner(ctx)
	s.Start()
	if s.Cancelled() {
		t.Error("Cancelled() before cancel")
	}
	cancel()
	s.Stop()
	if !s.Cancelled() {
		t.Error("Cancelled() = false after context cancellation")
	}
}

func TestSpinnerTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	s := quietSpinner(ctx)
	s.Start()
	<-ctx.Done()
	s.Stop()
	if !s.Cancelled() {
		t.Error("Cancelled() = false after timeout")
	}
}

func TestSpinnerStop(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		s := quietSpinner(context.Background())
		s.Start()
		s.Stop()
		s.Stop()
		if s.Cancelled() {
			t.Error("Stop() must not report cancellation")
		}
	})
	t.Run("before start", func(t *testing.T) {
		done := make(chan struct{})
		go func() {
			quietSpinner(context.Background()).Stop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Stop() before Start() blocked")
		}
	})
}

func TestSpin(t *testing.T) {
	got, err := spin(context.Background(), "Working...", func(context.Context) (int, error) { return 42, nil })
	if err != nil || got != 42 {
		t.Errorf("spin() = %d, %v", got, err)
	}

	boom := errors.New("boom")
	_, err = spin(context.Background(), "Working...", func(context.Context) (string, error) { return "", boom })
	if !errors.Is(err, boom) {
		t.Errorf("spin() error = %v, want boom", err)
	}
}
