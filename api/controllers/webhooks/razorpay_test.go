package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	razorpaywebhook "github.com/parkloop/parkloop-backend/internal/webhooks/razorpay"
)

const testWebhookSecret = "whsec_parkloop_test"

type fakeWebhookService struct {
	calls int
	err   error
}

func (f *fakeWebhookService) HandleEvent(ctx context.Context, body []byte) error {
	f.calls++
	return f.err
}

type fakeVerifier struct {
	secret string
}

func (f fakeVerifier) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(f.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type inMemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{data: map[string]string{}}
}

func (s *inMemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *inMemoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = fmt.Sprint(value)
	return true, nil
}

func (s *inMemoryStore) IdempotencyKey(scope, id string) string {
	return "pl:idempotency:" + scope + ":" + id
}

func (s *inMemoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func capturedPayload() []byte {
	return []byte(`{"entity":"event","event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_test1","order_id":"order_test1","status":"captured"}}}}`)
}

func newWebhookRequest(payload []byte, signature, eventID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("X-Razorpay-Signature", signature)
	}
	if eventID != "" {
		req.Header.Set("X-Razorpay-Event-Id", eventID)
	}
	return req
}

func newGuard(t *testing.T, store *inMemoryStore) *razorpaywebhook.IdempotencyGuard {
	t.Helper()
	guard, err := razorpaywebhook.NewIdempotencyGuard(store, time.Minute, "razorpay-webhook")
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}
	return guard
}

func TestRazorpayWebhook_SuccessAndIdempotent(t *testing.T) {
	payload := capturedPayload()
	service := &fakeWebhookService{}
	guard := newGuard(t, newInMemoryStore())
	handler := RazorpayWebhook(service, fakeVerifier{secret: testWebhookSecret}, guard, nil)

	req := newWebhookRequest(payload, sign(payload), "evt_1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if service.calls != 1 {
		t.Fatalf("expected service called once, got %d", service.calls)
	}

	// Same delivery replayed by Razorpay.
	req2 := newWebhookRequest(payload, sign(payload), "evt_1")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200 on duplicate, got %d (%s)", rec2.Code, rec2.Body.String())
	}
	if service.calls != 1 {
		t.Fatalf("expected duplicate not processed, call count %d", service.calls)
	}
}

func TestRazorpayWebhook_InvalidSignature(t *testing.T) {
	payload := capturedPayload()
	service := &fakeWebhookService{}
	guard := newGuard(t, newInMemoryStore())
	handler := RazorpayWebhook(service, fakeVerifier{secret: testWebhookSecret}, guard, nil)

	req := newWebhookRequest(payload, "forged-signature", "evt_2")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if service.calls != 0 {
		t.Fatalf("service should not run on bad signature, calls %d", service.calls)
	}
}

func TestRazorpayWebhook_MissingEventID(t *testing.T) {
	payload := capturedPayload()
	guard := newGuard(t, newInMemoryStore())
	handler := RazorpayWebhook(&fakeWebhookService{}, fakeVerifier{secret: testWebhookSecret}, guard, nil)

	req := newWebhookRequest(payload, sign(payload), "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRazorpayWebhook_HandlerFailureAllowsRetry(t *testing.T) {
	payload := capturedPayload()
	service := &fakeWebhookService{err: fmt.Errorf("settlement hiccup")}
	guard := newGuard(t, newInMemoryStore())
	handler := RazorpayWebhook(service, fakeVerifier{secret: testWebhookSecret}, guard, nil)

	req := newWebhookRequest(payload, sign(payload), "evt_3")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d (%s)", rec.Code, rec.Body.String())
	}

	// The idempotency mark was released, so the retry reaches the service.
	service.err = nil
	req2 := newWebhookRequest(payload, sign(payload), "evt_3")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200 on retry, got %d (%s)", rec2.Code, rec2.Body.String())
	}
	if service.calls != 2 {
		t.Fatalf("expected retry to reach service, calls %d", service.calls)
	}
}
