package razorpaywebhook

import (
	"context"
	"encoding/json"

	"github.com/parkloop/parkloop-backend/internal/booking"
	pkgerrors "github.com/parkloop/parkloop-backend/pkg/errors"
	"github.com/parkloop/parkloop-backend/pkg/logger"
)

// Event names Razorpay delivers that this service acts on. Everything else
// is acknowledged and dropped.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// Event is the decoded webhook envelope.
type Event struct {
	Entity  string `json:"entity"`
	Name    string `json:"event"`
	Payload struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// PaymentEntity is the payment object inside a webhook payload.
type PaymentEntity struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type settler interface {
	ApplyGatewayOutcome(ctx context.Context, gatewayOrderID, gatewayPaymentID string, captured bool) (*booking.ConfirmPaymentResult, error)
}

// Service turns authenticated Razorpay events into payment settlements.
// Signature verification and replay suppression happen before HandleEvent
// is called.
type Service struct {
	settler settler
	logg    *logger.Logger
}

type ServiceParams struct {
	Settler settler
	Logger  *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Settler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "razorpay webhook: settler required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "razorpay webhook: logger required")
	}
	return &Service{settler: params.Settler, logg: params.Logger}, nil
}

// HandleEvent decodes and dispatches one webhook delivery.
func (s *Service) HandleEvent(ctx context.Context, body []byte) error {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode webhook event")
	}

	switch event.Name {
	case EventPaymentCaptured, EventPaymentFailed:
		payment := event.Payload.Payment.Entity
		if payment.OrderID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "webhook payment has no order id")
		}
		captured := event.Name == EventPaymentCaptured
		result, err := s.settler.ApplyGatewayOutcome(ctx, payment.OrderID, payment.ID, captured)
		if err != nil {
			return err
		}
		scoped := s.logg.WithPaymentID(ctx, result.PaymentID.String())
		scoped = s.logg.WithField(scoped, "event", event.Name)
		if result.AlreadyFinal {
			s.logg.Info(scoped, "webhook replayed a settled payment")
			return nil
		}
		s.logg.Info(scoped, "webhook settled payment")
		return nil
	default:
		return nil
	}
}
