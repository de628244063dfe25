package enums

import "fmt"

// SpotVerificationStatus gates whether a spot is publicly visible. Only
// verified spots are listed to renters; moderation rules themselves live
// outside this service.
type SpotVerificationStatus string

const (
	SpotVerificationPending  SpotVerificationStatus = "pending"
	SpotVerificationVerified SpotVerificationStatus = "verified"
	SpotVerificationRejected SpotVerificationStatus = "rejected"
)

var validSpotVerificationStatuses = []SpotVerificationStatus{
	SpotVerificationPending,
	SpotVerificationVerified,
	SpotVerificationRejected,
}

// IsValid reports whether the value matches the canonical verification enum.
func (s SpotVerificationStatus) IsValid() bool {
	for _, candidate := range validSpotVerificationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSpotVerificationStatus converts the raw string to SpotVerificationStatus.
func ParseSpotVerificationStatus(value string) (SpotVerificationStatus, error) {
	for _, candidate := range validSpotVerificationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid spot verification status %q", value)
}
