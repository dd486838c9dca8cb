package middleware

import (
	"testing"
	"time"
)

func TestLocationRateLimiter_BurstThenDeny(t *testing.T) {
	l := NewLocationRateLimiter(1, 3, time.Minute)
	defer l.Close()

	for i := 0; i < 3; i++ {
		if !l.Allow("worker-a") {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	if l.Allow("worker-a") {
		t.Error("request beyond burst should be denied")
	}
}

func TestLocationRateLimiter_KeysAreIndependent(t *testing.T) {
	l := NewLocationRateLimiter(1, 1, time.Minute)
	defer l.Close()

	if !l.Allow("worker-a") {
		t.Fatal("first request for worker-a should be allowed")
	}
	if l.Allow("worker-a") {
		t.Error("second request for worker-a should be denied")
	}
	if !l.Allow("worker-b") {
		t.Error("worker-b must not be affected by worker-a's bucket")
	}
}
