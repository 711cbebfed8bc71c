package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://example.com/rows"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "http://datasets.example"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)
	url := "http://example.com"

	if err := limiter.Wait(context.Background(), url); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Burst 1 is consumed
	if limiter.Allow(url) {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	if !limiter.Allow("http://other.com") {
		t.Errorf("expected allow for other host")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 10; i++ {
		if !limiter.Allow("http://example.com") {
			t.Fatalf("request %d should pass with pacing disabled", i)
		}
	}
}

func TestLimiter_SetHostDelay(t *testing.T) {
	limiter := NewLimiter(100, 10)
	limiter.SetHostDelay("slow.com", 10*time.Second)

	if !limiter.Allow("http://slow.com/a") {
		t.Errorf("first request should pass")
	}
	if limiter.Allow("http://slow.com/b") {
		t.Errorf("second request should wait for the crawl delay")
	}
	if !limiter.Allow("http://fast.com") {
		t.Errorf("other host should pass")
	}
}

func TestHostOf(t *testing.T) {
	host, err := hostOf("http://example.com:8080/foo")
	if err != nil {
		t.Fatalf("hostOf failed: %v", err)
	}
	if host != "example.com:8080" {
		t.Errorf("expected example.com:8080, got %s", host)
	}

	if _, err := hostOf("::invalid"); err == nil {
		t.Errorf("expected error for invalid URL")
	}
}

func TestLimiter_HostNormalization(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("https://HF.co:443/rows") {
		t.Fatal("first request should pass")
	}
	if limiter.Allow("https://hf.co/rows?offset=100") {
		t.Error("expected default port and case variants to share one budget")
	}
	if !limiter.Allow("https://hf.co:8443/rows") {
		t.Error("non-default port is a separate host")
	}
}

func TestLimiter_HostDelay(t *testing.T) {
	limiter := NewLimiter(10, 5)
	limiter.SetHostDelay("slow.com:443", 5*time.Second)
	limiter.SetHostDelay("slow.com", time.Second)

	if d := limiter.HostDelay("SLOW.com"); d != 5*time.Second {
		t.Errorf("expected the longer delay to stick, got %v", d)
	}
	if d := limiter.HostDelay("fast.com"); d != 0 {
		t.Errorf("expected no delay, got %v", d)
	}
}

func TestHostOf_NoHost(t *testing.T) {
	if _, err := hostOf("/relative/path"); err == nil {
		t.Error("expected error for url without host")
	}
}
