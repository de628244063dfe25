package razorpaywebhook

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/parkloop/parkloop-backend/internal/booking"
	"github.com/parkloop/parkloop-backend/pkg/enums"
	pkgerrors "github.com/parkloop/parkloop-backend/pkg/errors"
	"github.com/parkloop/parkloop-backend/pkg/logger"
)

type stubSettler struct {
	calls    int
	orderID  string
	captured bool
	result   *booking.ConfirmPaymentResult
	err      error
}

func (s *stubSettler) ApplyGatewayOutcome(_ context.Context, gatewayOrderID, _ string, captured bool) (*booking.ConfirmPaymentResult, error) {
	s.calls++
	s.orderID = gatewayOrderID
	s.captured = captured
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &booking.ConfirmPaymentResult{
		PaymentID: uuid.New(),
		Status:    enums.PaymentStatusSuccess,
	}, nil
}

func newTestService(t *testing.T, settler *stubSettler) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Settler: settler,
		Logger:  logger.New(logger.Options{ServiceName: "webhook-test", Output: &bytes.Buffer{}}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

const capturedEvent = `{
	"entity": "event",
	"event": "payment.captured",
	"payload": {"payment": {"entity": {"id": "pay_123", "order_id": "order_123", "status": "captured"}}}
}`

func TestHandleEventCaptured(t *testing.T) {
	settler := &stubSettler{}
	svc := newTestService(t, settler)

	if err := svc.HandleEvent(context.Background(), []byte(capturedEvent)); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if settler.calls != 1 || settler.orderID != "order_123" || !settler.captured {
		t.Fatalf("settler calls=%d order=%q captured=%v", settler.calls, settler.orderID, settler.captured)
	}
}

func TestHandleEventFailed(t *testing.T) {
	settler := &stubSettler{result: &booking.ConfirmPaymentResult{
		PaymentID: uuid.New(),
		Status:    enums.PaymentStatusFailed,
	}}
	svc := newTestService(t, settler)

	body := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_9","order_id":"order_9","status":"failed"}}}}`)
	if err := svc.HandleEvent(context.Background(), body); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if settler.captured {
		t.Fatal("failed event marked as captured")
	}
}

func TestHandleEventIgnoresUnknownTypes(t *testing.T) {
	settler := &stubSettler{}
	svc := newTestService(t, settler)

	body := []byte(`{"event":"refund.processed","payload":{}}`)
	if err := svc.HandleEvent(context.Background(), body); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if settler.calls != 0 {
		t.Fatalf("settler called %d times for ignored event", settler.calls)
	}
}

func TestHandleEventRejectsMalformedBody(t *testing.T) {
	svc := newTestService(t, &stubSettler{})

	err := svc.HandleEvent(context.Background(), []byte("{not json"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHandleEventMissingOrderID(t *testing.T) {
	svc := newTestService(t, &stubSettler{})

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1"}}}}`)
	err := svc.HandleEvent(context.Background(), body)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type fakeIdemStore struct {
	keys map[string]string
}

func (f *fakeIdemStore) Get(_ context.Context, key string) (string, error) {
	return f.keys[key], nil
}

func (f *fakeIdemStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if f.keys == nil {
		f.keys = make(map[string]string)
	}
	if _, ok := f.keys[key]; ok {
		return false, nil
	}
	f.keys[key] = value.(string)
	return true, nil
}

func (f *fakeIdemStore) IdempotencyKey(scope, id string) string {
	return "pl:idempotency:" + scope + ":" + id
}

func (f *fakeIdemStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.keys, key)
	}
	return nil
}

func TestIdempotencyGuardMarksAndReleases(t *testing.T) {
	guard, err := NewIdempotencyGuard(&fakeIdemStore{}, time.Hour, "razorpay-webhook")
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	seen, err := guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil || seen {
		t.Fatalf("first check = %v, %v", seen, err)
	}
	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil || !seen {
		t.Fatalf("second check = %v, %v", seen, err)
	}

	if err := guard.Delete(context.Background(), "evt_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil || seen {
		t.Fatalf("check after delete = %v, %v", seen, err)
	}
}
