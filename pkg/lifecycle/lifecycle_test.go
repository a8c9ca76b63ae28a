package lifecycle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/scorecard/pkg/lifecycle"
)

func TestStartupReadiness(t *testing.T) {
	lc := lifecycle.New()

	release := make(chan struct{})
	lc.OnStartup(func() { <-release })

	if lc.Ready() {
		t.Error("coordinator ready before startup hooks finish")
	}

	close(release)
	lc.WaitForStartup()

	if !lc.Ready() {
		t.Error("coordinator not ready after startup hooks finish")
	}
}

func TestShutdownRunsHooks(t *testing.T) {
	lc := lifecycle.New()

	var ran atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		ran.Store(true)
	})

	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if !ran.Load() {
		t.Error("shutdown hook did not run")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()

	block := make(chan struct{})
	defer close(block)
	lc.OnShutdown(func() { <-block })

	if err := lc.Shutdown(10 * time.Millisecond); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestContextCancelledOnShutdown(t *testing.T) {
	lc := lifecycle.New()

	select {
	case <-lc.Context().Done():
		t.Fatal("context done before shutdown")
	default:
	}

	lc.Shutdown(time.Second)

	select {
	case <-lc.Context().Done():
	default:
		t.Fatal("context not cancelled after shutdown")
	}
}
