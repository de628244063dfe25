package spots

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/parkloop/parkloop-backend/pkg/enums"
)

// CreateSpotInput captures a new listing. New spots start unverified and
// stay out of public listings until they are verified.
type CreateSpotInput struct {
	OwnerID    uuid.UUID
	Title      string
	Address    string
	TotalSlots int
	HourlyRate decimal.Decimal
}

// SpotView is one row of a spot listing.
type SpotView struct {
	ID                 uuid.UUID                    `json:"id"`
	OwnerID            uuid.UUID                    `json:"owner_id"`
	Title              string                       `json:"title"`
	Address            string                       `json:"address"`
	TotalSlots         int                          `json:"total_slots"`
	AvailableSlots     int                          `json:"available_slots"`
	HourlyRate         decimal.Decimal              `json:"hourly_rate"`
	VerificationStatus enums.SpotVerificationStatus `json:"verification_status"`
	CreatedAt          time.Time                    `json:"created_at"`
}

// SpotList is a cursor page of spot views.
type SpotList struct {
	Items      []SpotView `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}
