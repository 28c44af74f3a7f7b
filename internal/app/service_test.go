package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	exitNow  bool
	stopped  atomic.Bool
	stopCh   chan struct{}
}

func newFakeService(name string) *fakeService {
	return &fakeService{name: name, stopCh: make(chan struct{})}
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.startErr != nil || s.exitNow {
		return s.startErr
	}
	select {
	case <-ctx.Done():
	case <-s.stopCh:
	}
	return nil
}

func (s *fakeService) Stop(context.Context) error {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopCh)
	}
	return nil
}

func TestRunnerStopsAllOnCancel(t *testing.T) {
	a, b := newFakeService("a"), newFakeService("b")
	runner := NewRunner(a, b)
	closed := 0
	runner.OnClose(func(context.Context) { closed++ })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, time.Second, nil) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("want nil error got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop")
	}
	if !a.stopped.Load() || !b.stopped.Load() {
		t.Fatalf("want both services stopped")
	}
	if closed != 1 {
		t.Fatalf("want closer called once got %d", closed)
	}
}

func TestRunnerReturnsFirstServiceError(t *testing.T) {
	failing := newFakeService("failing")
	failing.startErr = errors.New("bind failed")
	healthy := newFakeService("healthy")

	err := NewRunner(failing, healthy).Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "bind failed" {
		t.Fatalf("want bind failed got %v", err)
	}
	if !healthy.stopped.Load() {
		t.Fatalf("want healthy service stopped")
	}
}

func TestRunnerStopsWhenServiceExits(t *testing.T) {
	quick := newFakeService("quick")
	quick.exitNow = true
	long := newFakeService("long")

	if err := NewRunner(quick, long).Run(context.Background(), time.Second, nil); err != nil {
		t.Fatalf("want nil error got %v", err)
	}
	if !long.stopped.Load() {
		t.Fatalf("want long service stopped")
	}
}

func TestRunnerRejectsEmpty(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("want error for empty runner")
	}
}

func TestValidMode(t *testing.T) {
	for _, mode := range []string{ModeAll, ModeAPI, ModeWorker} {
		if !ValidMode(mode) {
			t.Fatalf("want %s valid", mode)
		}
	}
	if ValidMode("cron") {
		t.Fatalf("want cron invalid")
	}
	if got := normalizeOptions(Options{Mode: " API "}).Mode; got != ModeAPI {
		t.Fatalf("want api got %s", got)
	}
}
