package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/parkloop/parkloop-backend/api/responses"
	"github.com/parkloop/parkloop-backend/api/validators"
	"github.com/parkloop/parkloop-backend/internal/booking"
	"github.com/parkloop/parkloop-backend/internal/users"
	"github.com/parkloop/parkloop-backend/pkg/logger"
)

type createBookingRequest struct {
	UserID    string    `json:"user_id" validate:"required,uuid"`
	SpotID    string    `json:"spot_id" validate:"required,uuid"`
	SlotCount int       `json:"slot_count" validate:"required,gt=0"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

// CreateBooking holds slots and opens a gateway order for payment.
func CreateBooking(svc booking.Service, userSvc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req createBookingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		userID, _ := uuid.Parse(req.UserID)
		spotID, _ := uuid.Parse(req.SpotID)

		if _, err := userSvc.Get(ctx, userID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			ctx = logg.WithUserID(ctx, req.UserID)
			ctx = logg.WithSpotID(ctx, req.SpotID)
		}

		result, err := svc.CreateBooking(ctx, booking.CreateBookingInput{
			UserID:    userID,
			SpotID:    spotID,
			SlotCount: req.SlotCount,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type confirmPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

// ConfirmPayment applies the checkout callback for a pending payment.
func ConfirmPayment(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req confirmPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ConfirmPayment(ctx, booking.ConfirmPaymentInput{
			GatewayOrderID:   req.RazorpayOrderID,
			GatewayPaymentID: req.RazorpayPaymentID,
			Signature:        req.RazorpaySignature,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetBooking returns one booking by id.
func GetBooking(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		bookingID, err := validators.ParsePathUUID(chi.URLParam(r, "bookingId"), "bookingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		booked, err := svc.GetBooking(ctx, bookingID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, booked)
	}
}

// bookingTransition builds a handler that moves a booking through one
// lifecycle step on behalf of the user named in the query string.
func bookingTransition(logg *logger.Logger, apply func(r *http.Request, bookingID, userID uuid.UUID) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		bookingID, err := validators.ParsePathUUID(chi.URLParam(r, "bookingId"), "bookingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		userID, err := validators.ParseQueryUUID(r, "user_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := apply(r, bookingID, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CancelBooking cancels a booking and returns its slots.
func CancelBooking(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingTransition(logg, func(r *http.Request, bookingID, userID uuid.UUID) (any, error) {
		return svc.CancelBooking(r.Context(), bookingID, userID)
	})
}

// CheckIn marks a booking as occupied.
func CheckIn(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingTransition(logg, func(r *http.Request, bookingID, userID uuid.UUID) (any, error) {
		return svc.CheckIn(r.Context(), bookingID, userID)
	})
}

// CheckOut completes a booking and returns its slots.
func CheckOut(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingTransition(logg, func(r *http.Request, bookingID, userID uuid.UUID) (any, error) {
		return svc.CheckOut(r.Context(), bookingID, userID)
	})
}

// ListBookings lists a user's bookings, newest first.
func ListBookings(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := validators.ParseQueryUUID(r, "user_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListUserBookings(ctx, userID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ListSpotBookings lists the bookings taken against one spot.
func ListSpotBookings(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		spotID, err := validators.ParsePathUUID(chi.URLParam(r, "spotId"), "spotId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListSpotBookings(ctx, spotID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ListOwnerBookings lists bookings across all of an owner's spots.
func ListOwnerBookings(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ownerID, err := validators.ParsePathUUID(chi.URLParam(r, "ownerId"), "ownerId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListOwnerBookings(ctx, ownerID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
