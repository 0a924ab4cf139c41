package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSpinnerStop(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Planning...")
	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	if !s.Cancelled() {
		t.Error("Cancelled() should report true after Stop")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Planning...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerFollowsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Planning...")
	s.Start()
	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop when its context expired")
	}
	if !s.Cancelled() {
		t.Error("Cancelled() should report true after the context expires")
	}
}

func TestSpinnerDrawsFrames(t *testing.T) {
	var buf syncBuffer
	s := newSpinnerWithContext(context.Background(), "Planning...")
	s.w = &buf
	s.enabled = true
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Planning...") {
		t.Errorf("spinner output %q should contain the message", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Error("spinner should clear its line when stopped")
	}
}

func TestSpinnerSilentWhenDisabled(t *testing.T) {
	var buf syncBuffer
	s := newSpinnerWithContext(context.Background(), "Planning...")
	s.w = &buf
	s.enabled = false
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()
	if buf.String() != "" {
		t.Errorf("disabled spinner wrote %q", buf.String())
	}
}

// syncBuffer guards a bytes.Buffer for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
