package redis

import (
	"testing"

	"github.com/parkloop/parkloop-backend/pkg/config"
)

func configEmpty() config.RedisConfig {
	return config.RedisConfig{}
}

func TestKeyBuilders(t *testing.T) {
	c := &Client{}
	if got := c.IdempotencyKey("razorpay-webhook", "evt_1"); got != "pl:idempotency:razorpay-webhook:evt_1" {
		t.Fatalf("unexpected idempotency key %q", got)
	}
	if got := c.LockKey("sweeper:dev"); got != "pl:lock:sweeper:dev" {
		t.Fatalf("unexpected lock key %q", got)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(configEmpty()); err == nil {
		t.Fatalf("expected error with no url or address")
	}
}

func TestOptionsFromConfigParsesURL(t *testing.T) {
	cfg := configEmpty()
	cfg.URL = "redis://:secret@localhost:6380/2"
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if opts.Addr != "localhost:6380" {
		t.Fatalf("unexpected addr %q", opts.Addr)
	}
	if opts.DB != 2 {
		t.Fatalf("unexpected db %d", opts.DB)
	}
}
