package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/parkloop/parkloop-backend/pkg/enums"
)

// Payment is one attempt to pay for a reservation. Slot count and the booked
// window are captured at creation so the reconciler can release exactly what
// was reserved without trusting later client input. GatewayOrderID is stored
// before any booking is committed; GatewayPaymentID and GatewaySignature stay
// null until a confirmation arrives.
type Payment struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID           uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	SpotID           uuid.UUID           `gorm:"column:spot_id;type:uuid;not null;index"`
	Amount           decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null"`
	Currency         string              `gorm:"column:currency;not null;default:'INR'"`
	SlotCount        int                 `gorm:"column:slot_count;not null"`
	StartTime        time.Time           `gorm:"column:start_time;not null"`
	EndTime          time.Time           `gorm:"column:end_time;not null"`
	GatewayOrderID   *string             `gorm:"column:gateway_order_id;uniqueIndex"`
	GatewayPaymentID *string             `gorm:"column:gateway_payment_id"`
	GatewaySignature *string             `gorm:"column:gateway_signature"`
	Status           enums.PaymentStatus `gorm:"column:status;not null;default:'pending'"`
	FailureReason    *string             `gorm:"column:failure_reason"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
