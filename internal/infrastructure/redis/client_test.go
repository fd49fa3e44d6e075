package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewClient(t *testing.T) {
	s := miniredis.RunT(t)

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{URL: "redis://" + s.Addr()}},
		{name: "overrides", cfg: Config{URL: "redis://" + s.Addr() + "/2", DialTimeout: time.Second, PoolSize: 3}},
		{name: "invalid url", cfg: Config{URL: "://bad-url"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer client.Close()

			opts := client.Options()
			if tt.cfg.DialTimeout == 0 && opts.DialTimeout != 5*time.Second {
				t.Errorf("expected default dial timeout, got %v", opts.DialTimeout)
			}
			if tt.cfg.PoolSize > 0 && opts.PoolSize != tt.cfg.PoolSize {
				t.Errorf("expected pool size %d, got %d", tt.cfg.PoolSize, opts.PoolSize)
			}
		})
	}
}

func TestPingReportsOutage(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := NewClient(context.Background(), Config{URL: "redis://" + s.Addr(), DialTimeout: 200 * time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	check := Ping(client)
	if err := check(context.Background()); err != nil {
		t.Fatalf("expected healthy ping, got %v", err)
	}

	s.Close()
	if err := check(context.Background()); err == nil {
		t.Fatal("expected ping error when server is down")
	}
}
