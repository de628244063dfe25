package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/parkloop/parkloop-backend/pkg/enums"
)

// Spot is a parking listing with a fixed capacity and a mutable availability
// counter. available_slots is only ever written through the inventory ledger;
// 0 <= available_slots <= total_slots holds at all times.
type Spot struct {
	ID                 uuid.UUID                    `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID            uuid.UUID                    `gorm:"column:owner_id;type:uuid;not null;index"`
	Title              string                       `gorm:"column:title;not null"`
	Address            string                       `gorm:"column:address;not null"`
	TotalSlots         int                          `gorm:"column:total_slots;not null"`
	AvailableSlots     int                          `gorm:"column:available_slots;not null"`
	HourlyRate         decimal.Decimal              `gorm:"column:hourly_rate;type:numeric(10,2);not null"`
	VerificationStatus enums.SpotVerificationStatus `gorm:"column:verification_status;not null;default:'pending'"`
	CreatedAt          time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}
