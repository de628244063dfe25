package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/parkloop/parkloop-backend/pkg/enums"
)

// Booking is a confirmed occupancy of SlotCount slots for a time range.
// A booking exists only once its payment reached success; the unique
// payment_id index makes double-creation on duplicate confirmations a
// constraint violation rather than silent corruption.
type Booking struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	SpotID    uuid.UUID           `gorm:"column:spot_id;type:uuid;not null;index"`
	PaymentID uuid.UUID           `gorm:"column:payment_id;type:uuid;not null;uniqueIndex"`
	SlotCount int                 `gorm:"column:slot_count;not null"`
	StartTime time.Time           `gorm:"column:start_time;not null"`
	EndTime   time.Time           `gorm:"column:end_time;not null"`
	Status    enums.BookingStatus `gorm:"column:status;not null;default:'pending'"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
