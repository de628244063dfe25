package booking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parkloop/parkloop-backend/pkg/db/models"
	"github.com/parkloop/parkloop-backend/pkg/enums"
	"github.com/parkloop/parkloop-backend/pkg/pagination"
)

// Repository defines persistence operations for payments and bookings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindSpot(ctx context.Context, spotID uuid.UUID) (*models.Spot, error)
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindPayment(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error)
	FindPaymentByOrderIDForUpdate(ctx context.Context, gatewayOrderID string) (*models.Payment, error)
	UpdatePayment(ctx context.Context, paymentID uuid.UUID, updates map[string]any) error
	CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	FindBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	FindBookingForUpdate(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	FindBookingByPayment(ctx context.Context, paymentID uuid.UUID) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status enums.BookingStatus) error
	ListUserBookings(ctx context.Context, userID uuid.UUID, params pagination.Params) (*BookingList, error)
	ListSpotBookings(ctx context.Context, spotID uuid.UUID, params pagination.Params) (*BookingList, error)
	ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*BookingList, error)
}
