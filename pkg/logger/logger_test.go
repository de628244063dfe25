package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := context.Background()
	ctx = log.WithRequestID(ctx, "req-123")
	ctx = log.WithPaymentID(ctx, "pay-456")

	log.Error(ctx, "confirm failed", errors.New("signature mismatch"))

	if !bytes.Contains(buf.Bytes(), []byte("\"request_id\"")) {
		t.Fatalf("expected request_id to be preserved; entry=%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("\"payment_id\"")) {
		t.Fatalf("expected payment_id to be preserved; entry=%s", buf.String())
	}
}

func TestLoggerWithFieldsKeepsServiceName(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "sweeper-worker", Output: buf})
	ctx := log.WithFields(context.Background(), map[string]any{"job": "payment-timeout"})
	log.Info(ctx, "job start")

	if !bytes.Contains(buf.Bytes(), []byte("\"service\":\"sweeper-worker\"")) {
		t.Fatalf("expected service name; entry=%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("\"job\":\"payment-timeout\"")) {
		t.Fatalf("expected job field; entry=%s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("expected default info level, got %v", lvl)
	}
	if lvl := ParseLevel("warn"); lvl != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %v", lvl)
	}
	if lvl := ParseLevel("not-a-level"); lvl != zerolog.InfoLevel {
		t.Fatalf("invalid level should fall back to info, got %v", lvl)
	}
}
