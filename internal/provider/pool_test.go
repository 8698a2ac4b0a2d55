package provider

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeClient struct {
	checkAuthFn   func(ctx context.Context, endpoint string) bool
	sendMessageFn func(ctx context.Context, endpoint string, req SendRequest) (*SendResponse, error)
}

func (f *fakeClient) CheckAuth(ctx context.Context, endpoint string) bool {
	if f.checkAuthFn == nil {
		return true
	}
	return f.checkAuthFn(ctx, endpoint)
}

func (f *fakeClient) SendMessage(ctx context.Context, endpoint string, req SendRequest) (*SendResponse, error) {
	if f.sendMessageFn == nil {
		return &SendResponse{StatusCode: 200}, nil
	}
	return f.sendMessageFn(ctx, endpoint, req)
}

func fourEndpoints() []string {
	return []string{
		"http://localhost:3001",
		"http://localhost:3002",
		"http://localhost:3003",
		"http://localhost:3004",
	}
}

func TestNewPoolValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewPool(nil, fourEndpoints(), zap.NewNop()); err == nil {
		t.Fatal("NewPool(nil client) error = nil, want error")
	}
	if _, err := NewPool(&fakeClient{}, nil, zap.NewNop()); err == nil {
		t.Fatal("NewPool(no endpoints) error = nil, want error")
	}
}

func TestPoolNextValidSkipsUnhealthyEndpoint(t *testing.T) {
	t.Parallel()

	probed := make([]string, 0, 2)
	client := &fakeClient{
		checkAuthFn: func(ctx context.Context, endpoint string) bool {
			probed = append(probed, endpoint)
			return endpoint != "http://localhost:3001"
		},
	}

	pool, err := NewPool(client, fourEndpoints(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}

	endpoint, err := pool.NextValid(context.Background())
	if err != nil {
		t.Fatalf("NextValid() error = %v", err)
	}
	if endpoint != "http://localhost:3002" {
		t.Fatalf("NextValid() = %s, want http://localhost:3002", endpoint)
	}
	if len(probed) != 2 {
		t.Fatalf("probe count = %d, want 2", len(probed))
	}

	// The cursor stays on the returned endpoint until an explicit advance.
	if pool.Current() != "http://localhost:3002" {
		t.Fatalf("Current() = %s, want http://localhost:3002", pool.Current())
	}

	pool.Advance()
	if pool.Current() != "http://localhost:3003" {
		t.Fatalf("Current() after Advance = %s, want http://localhost:3003", pool.Current())
	}
}

func TestPoolNextValidIsStickyOnHealthyEndpoint(t *testing.T) {
	t.Parallel()

	pool, err := NewPool(&fakeClient{}, fourEndpoints(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		endpoint, err := pool.NextValid(context.Background())
		if err != nil {
			t.Fatalf("NextValid() error = %v", err)
		}
		if endpoint != "http://localhost:3001" {
			t.Fatalf("NextValid() call %d = %s, want http://localhost:3001", i+1, endpoint)
		}
	}
}

func TestPoolNextValidExhaustsAllEndpoints(t *testing.T) {
	t.Parallel()

	probes := 0
	client := &fakeClient{
		checkAuthFn: func(ctx context.Context, endpoint string) bool {
			probes++
			return false
		},
	}

	pool, err := NewPool(client, fourEndpoints(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}

	_, err = pool.NextValid(context.Background())
	if !errors.Is(err, ErrNoEndpointAvailable) {
		t.Fatalf("NextValid() error = %v, want ErrNoEndpointAvailable", err)
	}
	if probes != pool.Size() {
		t.Fatalf("probe count = %d, want %d (one full rotation)", probes, pool.Size())
	}
}

func TestPoolProbeFailureHook(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		checkAuthFn: func(ctx context.Context, endpoint string) bool {
			return endpoint == "http://localhost:3003"
		},
	}

	pool, err := NewPool(client, fourEndpoints(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}

	failed := make([]string, 0, 2)
	pool.SetProbeFailureHook(func(endpoint string) {
		failed = append(failed, endpoint)
	})

	if _, err := pool.NextValid(context.Background()); err != nil {
		t.Fatalf("NextValid() error = %v", err)
	}
	if len(failed) != 2 {
		t.Fatalf("failure hook calls = %d, want 2", len(failed))
	}
}
