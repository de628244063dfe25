package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/parkloop/parkloop-backend/pkg/enums"
)

// CreateBookingInput captures a driver's request to hold slots on a spot.
// The price is computed server side from the spot's hourly rate.
type CreateBookingInput struct {
	UserID    uuid.UUID
	SpotID    uuid.UUID
	SlotCount int
	StartTime time.Time
	EndTime   time.Time
}

// CreateBookingResult is returned once slots are held and a gateway order
// exists. The client completes checkout against GatewayOrderID; no booking
// row exists yet.
type CreateBookingResult struct {
	PaymentID      uuid.UUID           `json:"payment_id"`
	GatewayOrderID string              `json:"gateway_order_id"`
	Amount         decimal.Decimal     `json:"amount"`
	AmountMinor    int64               `json:"amount_minor"`
	Currency       string              `json:"currency"`
	Status         enums.PaymentStatus `json:"status"`
}

// ConfirmPaymentInput carries the gateway's checkout callback fields.
type ConfirmPaymentInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// ConfirmPaymentResult reports the payment outcome. AlreadyFinal marks a
// replayed confirmation that was answered from the stored outcome.
type ConfirmPaymentResult struct {
	PaymentID    uuid.UUID           `json:"payment_id"`
	Status       enums.PaymentStatus `json:"status"`
	BookingID    *uuid.UUID          `json:"booking_id,omitempty"`
	AlreadyFinal bool                `json:"already_final"`
}

// BookingView is one row of a booking listing joined with its spot and
// payment.
type BookingView struct {
	BookingID     uuid.UUID           `json:"booking_id"`
	UserID        uuid.UUID           `json:"user_id"`
	SpotID        uuid.UUID           `json:"spot_id"`
	SpotTitle     string              `json:"spot_title"`
	SpotAddress   string              `json:"spot_address"`
	SlotCount     int                 `json:"slot_count"`
	StartTime     time.Time           `json:"start_time"`
	EndTime       time.Time           `json:"end_time"`
	Status        enums.BookingStatus `json:"status"`
	Amount        decimal.Decimal     `json:"amount"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time           `json:"created_at"`
}

// BookingList is a cursor page of booking views.
type BookingList struct {
	Items      []BookingView `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}
