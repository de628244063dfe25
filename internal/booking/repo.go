package booking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/parkloop/parkloop-backend/pkg/db/models"
	"github.com/parkloop/parkloop-backend/pkg/enums"
	"github.com/parkloop/parkloop-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a booking repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindSpot(ctx context.Context, spotID uuid.UUID) (*models.Spot, error) {
	var spot models.Spot
	err := r.db.WithContext(ctx).Where("id = ?", spotID).First(&spot).Error
	if err != nil {
		return nil, err
	}
	return &spot, nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *repository) FindPayment(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("id = ?", paymentID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindPaymentByOrderIDForUpdate(ctx context.Context, gatewayOrderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) UpdatePayment(ctx context.Context, paymentID uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *repository) FindBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Where("id = ?", bookingID).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindBookingForUpdate(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", bookingID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindBookingByPayment(ctx context.Context, paymentID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status enums.BookingStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ListUserBookings(ctx context.Context, userID uuid.UUID, params pagination.Params) (*BookingList, error) {
	query := r.listQuery(ctx).Where("bookings.user_id = ?", userID)
	return r.scanPage(query, params)
}

func (r *repository) ListSpotBookings(ctx context.Context, spotID uuid.UUID, params pagination.Params) (*BookingList, error) {
	query := r.listQuery(ctx).Where("bookings.spot_id = ?", spotID)
	return r.scanPage(query, params)
}

func (r *repository) ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*BookingList, error) {
	query := r.listQuery(ctx).Where("spots.owner_id = ?", ownerID)
	return r.scanPage(query, params)
}

func (r *repository) listQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("bookings").
		Select(`bookings.id AS booking_id,
			bookings.user_id,
			bookings.spot_id,
			spots.title AS spot_title,
			spots.address AS spot_address,
			bookings.slot_count,
			bookings.start_time,
			bookings.end_time,
			bookings.status,
			payments.amount,
			payments.status AS payment_status,
			bookings.created_at`).
		Joins("JOIN spots ON spots.id = bookings.spot_id").
		Joins("JOIN payments ON payments.id = bookings.payment_id")
}

func (r *repository) scanPage(query *gorm.DB, params pagination.Params) (*BookingList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"bookings.created_at < ? OR (bookings.created_at = ? AND bookings.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []BookingView
	err = query.
		Order("bookings.created_at DESC, bookings.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &BookingList{Items: rows}
	if len(rows) > limit {
		list.Items = rows[:limit]
		last := list.Items[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.BookingID,
		})
	}
	return list, nil
}
