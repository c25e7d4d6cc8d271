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

	if err := limiter.Wait(ctx, "https://api.worldbank.org/v2/country/CHN"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	if err := limiter.Wait(ctx, "https://www.imf.org/external/datamapper/api/v1"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	start := time.Now()
	err := limiter.WaitWithDelay(ctx, "https://api.worldbank.org", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}

	duration := time.Since(start)
	if duration < 50*time.Millisecond {
		t.Errorf("expected delay >= 50ms, got %v", duration)
	}
}

func TestLimiter_WaitWithDelay_Cancelled(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.WaitWithDelay(ctx, "https://api.worldbank.org", time.Second); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()
	url := "https://api.worldbank.org/v2/country/USA"

	if err := limiter.Wait(ctx, url); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Same host, different path and port share one budget
	if limiter.Allow("https://API.worldbank.org:443/v2/country/CHN") {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	if !limiter.Allow("https://www.imf.org") {
		t.Errorf("expected allow for other host")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 10; i++ {
		if !limiter.Allow("https://api.worldbank.org") {
			t.Fatalf("expected unlimited limiter to allow request %d", i)
		}
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	host := "slow.example.org"

	limiter.SetHostRate(host, 0.1, 1)

	if !limiter.Allow("http://" + host) {
		t.Errorf("first request should pass")
	}

	if limiter.Allow("http://" + host) {
		t.Errorf("second request should fail")
	}

	if !limiter.Allow("http://fast.example.org") {
		t.Errorf("other host should pass")
	}
}

func TestHostKey(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "http://example.com/foo", want: "example.com"},
		{raw: "https://API.WorldBank.org:8443/v2", want: "api.worldbank.org"},
		{raw: "::invalid", wantErr: true},
		{raw: "/relative/path", wantErr: true},
	}

	for _, tt := range tests {
		got, err := hostKey(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("hostKey(%q): expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("hostKey(%q) failed: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("hostKey(%q): expected %s, got %s", tt.raw, tt.want, got)
		}
	}
}
