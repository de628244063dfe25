package enums

import "fmt"

// BookingStatus describes the lifecycle of a confirmed occupancy.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusCheckedIn BookingStatus = "checked_in"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusCheckedIn,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

// IsValid reports whether the value matches the canonical booking status enum.
func (b BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (b BookingStatus) IsTerminal() bool {
	return b == BookingStatusCompleted || b == BookingStatusCancelled
}

// CanTransitionTo enforces the pending -> checked_in -> completed chain with
// cancellation allowed until the booking is terminal.
func (b BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch next {
	case BookingStatusCheckedIn:
		return b == BookingStatusPending
	case BookingStatusCompleted:
		return b == BookingStatusCheckedIn
	case BookingStatusCancelled:
		return !b.IsTerminal()
	default:
		return false
	}
}

// ParseBookingStatus converts the raw string to BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}
