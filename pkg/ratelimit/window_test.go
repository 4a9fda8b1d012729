package ratelimit

import (
	"testing"
	"time"
)

func TestWindow_AllowsUpToLimit(t *testing.T) {
	w := NewWindow(time.Minute, 3)
	for i := 0; i < 3; i++ {
		if !w.Allow("p") {
			t.Fatalf("call %d should be allowed", i)
		}
	}
	if w.Allow("p") {
		t.Fatal("4th call within the window should be rejected")
	}
}

func TestWindow_RollsOffOldHits(t *testing.T) {
	w := NewWindow(time.Minute, 1)
	base := time.Now()
	w.now = func() time.Time { return base }

	if !w.Allow("p") {
		t.Fatal("first call should be allowed")
	}
	if w.Allow("p") {
		t.Fatal("second call within the window should be rejected")
	}

	w.now = func() time.Time { return base.Add(time.Minute + time.Second) }
	if !w.Allow("p") {
		t.Fatal("call after the window rolls off should be allowed")
	}
}

func TestWindow_KeysAreIndependent(t *testing.T) {
	w := NewWindow(time.Minute, 1)
	if !w.Allow("a") {
		t.Fatal("first call for key a should be allowed")
	}
	if !w.Allow("b") {
		t.Fatal("first call for key b should be allowed")
	}
}
