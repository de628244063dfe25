package booking

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/parkloop/parkloop-backend/internal/inventory"
	"github.com/parkloop/parkloop-backend/internal/reconciler"
	"github.com/parkloop/parkloop-backend/pkg/db"
	"github.com/parkloop/parkloop-backend/pkg/db/models"
	"github.com/parkloop/parkloop-backend/pkg/enums"
	pkgerrors "github.com/parkloop/parkloop-backend/pkg/errors"
	"github.com/parkloop/parkloop-backend/pkg/logger"
	"github.com/parkloop/parkloop-backend/pkg/metrics"
	"github.com/parkloop/parkloop-backend/pkg/pagination"
	"github.com/parkloop/parkloop-backend/pkg/razorpay"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type paymentGateway interface {
	Currency() string
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*razorpay.Order, error)
	VerifySignature(orderID, gatewayPaymentID, signature string) bool
}

// failureReconciler fails a pending payment and returns its slots. The
// booking service never releases slots on the failure path itself.
type failureReconciler interface {
	Reconcile(ctx context.Context, paymentID uuid.UUID, reason string) (bool, error)
	ReconcileInTx(ctx context.Context, tx *gorm.DB, paymentID uuid.UUID, reason string) (bool, error)
}

// Service drives the booking lifecycle from slot hold to checkout.
type Service interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error)
	ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*ConfirmPaymentResult, error)
	ApplyGatewayOutcome(ctx context.Context, gatewayOrderID, gatewayPaymentID string, captured bool) (*ConfirmPaymentResult, error)
	CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error)
	CheckIn(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error)
	CheckOut(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID uuid.UUID, params pagination.Params) (*BookingList, error)
	ListSpotBookings(ctx context.Context, spotID uuid.UUID, params pagination.Params) (*BookingList, error)
	ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*BookingList, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	gateway    paymentGateway
	reconciler failureReconciler
	logg       *logger.Logger
	metrics    *metrics.BookingMetrics
}

// ServiceParams lists the dependencies a booking service needs.
type ServiceParams struct {
	Repo       Repository
	Tx         txRunner
	Gateway    paymentGateway
	Reconciler failureReconciler
	Logger     *logger.Logger
	Metrics    *metrics.BookingMetrics
}

// NewService builds a booking service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking: repository is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking: tx runner is required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking: payment gateway is required")
	}
	if params.Reconciler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking: reconciler is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking: logger is required")
	}
	return &service{
		repo:       params.Repo,
		tx:         params.Tx,
		gateway:    params.Gateway,
		reconciler: params.Reconciler,
		logg:       params.Logger,
		metrics:    params.Metrics,
	}, nil
}

// CreateBooking holds slots and opens a gateway order. The hold and the
// pending payment row commit together before the gateway is called, so a
// crash between the two leaves a pending payment the sweep can reconcile.
// The gateway call itself runs outside any row lock.
func (s *service) CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error) {
	if err := validateCreateBookingInput(input); err != nil {
		return nil, err
	}

	var payment *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		spot, err := repo.FindSpot(ctx, input.SpotID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "spot not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load spot")
		}
		if spot.VerificationStatus != enums.SpotVerificationVerified {
			return pkgerrors.New(pkgerrors.CodeNotFound, "spot not found")
		}

		if err := inventory.Reserve(ctx, tx, input.SpotID, input.SlotCount); err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeInsufficientSlots) {
				s.metrics.IncReservation("insufficient_slots")
			}
			return err
		}

		payment, err = repo.CreatePayment(ctx, &models.Payment{
			UserID:    input.UserID,
			SpotID:    input.SpotID,
			Amount:    priceFor(spot.HourlyRate, input),
			Currency:  s.gateway.Currency(),
			SlotCount: input.SlotCount,
			StartTime: input.StartTime.UTC(),
			EndTime:   input.EndTime.UTC(),
			Status:    enums.PaymentStatusPending,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncReservation("reserved")

	order, err := s.gateway.CreateOrder(ctx, payment.Amount, payment.Currency, "pl_"+payment.ID.String())
	if err != nil {
		return nil, s.abandonPayment(ctx, payment.ID, reconciler.ReasonGatewayFailure, err)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).UpdatePayment(ctx, payment.ID, map[string]any{
			"gateway_order_id": order.ID,
		})
	})
	if err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach gateway order")
		return nil, s.abandonPayment(ctx, payment.ID, reconciler.ReasonGatewayFailure, wrapped)
	}

	return &CreateBookingResult{
		PaymentID:      payment.ID,
		GatewayOrderID: order.ID,
		Amount:         payment.Amount,
		AmountMinor:    order.Amount,
		Currency:       payment.Currency,
		Status:         enums.PaymentStatusPending,
	}, nil
}

// abandonPayment fails the pending payment and frees its slots after a
// gateway-side failure, then returns the original error to the caller.
// If the inline reconcile also fails the sweep picks the payment up later.
func (s *service) abandonPayment(ctx context.Context, paymentID uuid.UUID, reason string, cause error) error {
	if _, rErr := s.reconciler.Reconcile(ctx, paymentID, reason); rErr != nil {
		scoped := s.logg.WithPaymentID(ctx, paymentID.String())
		s.logg.Error(scoped, "inline reconcile failed, leaving payment for sweep", rErr)
		return multierr.Append(cause, rErr)
	}
	return cause
}

// ConfirmPayment applies the gateway's checkout outcome under the payment
// row lock. Replayed confirmations of a terminal payment return the stored
// outcome without touching inventory.
func (s *service) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*ConfirmPaymentResult, error) {
	if input.GatewayOrderID == "" || input.GatewayPaymentID == "" || input.Signature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id, payment id and signature are required")
	}

	var result *ConfirmPaymentResult
	var confirmErr error
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		payment, err := repo.FindPaymentByOrderIDForUpdate(ctx, input.GatewayOrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no payment for gateway order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}

		if payment.Status.IsTerminal() {
			result, err = s.storedOutcome(ctx, repo, payment)
			return err
		}

		if !s.gateway.VerifySignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
			// Mark failed and release inside this transaction, then commit.
			// The rejection error is surfaced after the commit so the
			// release is not rolled back with it.
			if _, err := s.reconciler.ReconcileInTx(ctx, tx, payment.ID, reconciler.ReasonInvalidSignature); err != nil {
				return err
			}
			s.metrics.IncConfirmation("invalid_signature")
			result = &ConfirmPaymentResult{PaymentID: payment.ID, Status: enums.PaymentStatusFailed}
			confirmErr = pkgerrors.New(pkgerrors.CodeInvalidConfirmation, "gateway signature verification failed")
			return nil
		}

		result, err = s.settleSuccess(ctx, repo, payment, input.GatewayPaymentID, &input.Signature)
		return err
	})
	if err != nil {
		return nil, err
	}
	if confirmErr != nil {
		return nil, confirmErr
	}
	return result, nil
}

// ApplyGatewayOutcome settles a payment from an authenticated gateway
// event. The caller has already verified the webhook signature, so no
// checkout signature is checked here. A declined event fails the payment
// and frees its slots; a replayed event returns the stored outcome.
func (s *service) ApplyGatewayOutcome(ctx context.Context, gatewayOrderID, gatewayPaymentID string, captured bool) (*ConfirmPaymentResult, error) {
	if gatewayOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order id required")
	}

	var result *ConfirmPaymentResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		payment, err := repo.FindPaymentByOrderIDForUpdate(ctx, gatewayOrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no payment for gateway order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}

		if payment.Status.IsTerminal() {
			result, err = s.storedOutcome(ctx, repo, payment)
			return err
		}

		if !captured {
			if _, err := s.reconciler.ReconcileInTx(ctx, tx, payment.ID, reconciler.ReasonGatewayDeclined); err != nil {
				return err
			}
			s.metrics.IncConfirmation("declined")
			result = &ConfirmPaymentResult{PaymentID: payment.ID, Status: enums.PaymentStatusFailed}
			return nil
		}

		result, err = s.settleSuccess(ctx, repo, payment, gatewayPaymentID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// storedOutcome answers a replayed settlement from the terminal payment row.
func (s *service) storedOutcome(ctx context.Context, repo Repository, payment *models.Payment) (*ConfirmPaymentResult, error) {
	result := &ConfirmPaymentResult{
		PaymentID:    payment.ID,
		Status:       payment.Status,
		AlreadyFinal: true,
	}
	if payment.Status == enums.PaymentStatusSuccess {
		booked, err := repo.FindBookingByPayment(ctx, payment.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking for confirmed payment")
		}
		result.BookingID = &booked.ID
	}
	s.metrics.IncConfirmation("replayed")
	return result, nil
}

// settleSuccess marks the locked pending payment as succeeded and creates
// the booking that makes the hold permanent.
func (s *service) settleSuccess(ctx context.Context, repo Repository, payment *models.Payment, gatewayPaymentID string, signature *string) (*ConfirmPaymentResult, error) {
	updates := map[string]any{
		"status":             enums.PaymentStatusSuccess,
		"gateway_payment_id": gatewayPaymentID,
	}
	if signature != nil {
		updates["gateway_signature"] = *signature
	}
	if err := repo.UpdatePayment(ctx, payment.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment succeeded")
	}

	booked, err := repo.CreateBooking(ctx, &models.Booking{
		UserID:    payment.UserID,
		SpotID:    payment.SpotID,
		PaymentID: payment.ID,
		SlotCount: payment.SlotCount,
		StartTime: payment.StartTime,
		EndTime:   payment.EndTime,
		Status:    enums.BookingStatusPending,
	})
	if err != nil {
		// payment_id is unique; losing this race means another settlement
		// already committed the booking.
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "booking already settled for payment")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
	}

	s.metrics.IncConfirmation("success")
	return &ConfirmPaymentResult{
		PaymentID: payment.ID,
		Status:    enums.PaymentStatusSuccess,
		BookingID: &booked.ID,
	}, nil
}

// CancelBooking cancels a non-terminal booking and returns its slots.
func (s *service) CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, bookingID, actorID, enums.BookingStatusCancelled, true)
}

// CheckIn marks a pending booking as occupied.
func (s *service) CheckIn(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, bookingID, actorID, enums.BookingStatusCheckedIn, false)
}

// CheckOut completes an occupied booking and returns its slots.
func (s *service) CheckOut(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, bookingID, actorID, enums.BookingStatusCompleted, true)
}

// transition moves a booking to the target status under its row lock,
// optionally releasing the booked slots in the same transaction.
func (s *service) transition(ctx context.Context, bookingID, actorID uuid.UUID, target enums.BookingStatus, releaseSlots bool) (*models.Booking, error) {
	if bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	var updated *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		booked, err := repo.FindBookingForUpdate(ctx, bookingID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}
		if booked.UserID != actorID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		if !booked.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				"booking is "+string(booked.Status)+", cannot move to "+string(target))
		}

		if err := repo.UpdateBookingStatus(ctx, bookingID, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking status")
		}
		if releaseSlots {
			if err := inventory.Release(ctx, tx, booked.SpotID, booked.SlotCount); err != nil {
				return err
			}
		}

		booked.Status = target
		updated = booked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) GetBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	if bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	booked, err := s.repo.FindBooking(ctx, bookingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	return booked, nil
}

func (s *service) ListUserBookings(ctx context.Context, userID uuid.UUID, params pagination.Params) (*BookingList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	list, err := s.repo.ListUserBookings(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user bookings")
	}
	return list, nil
}

func (s *service) ListSpotBookings(ctx context.Context, spotID uuid.UUID, params pagination.Params) (*BookingList, error) {
	if spotID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "spot id required")
	}
	list, err := s.repo.ListSpotBookings(ctx, spotID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list spot bookings")
	}
	return list, nil
}

func (s *service) ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*BookingList, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	list, err := s.repo.ListOwnerBookings(ctx, ownerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owner bookings")
	}
	return list, nil
}

func validateCreateBookingInput(input CreateBookingInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.SpotID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "spot id required")
	}
	if input.SlotCount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "slot count must be positive")
	}
	if !input.EndTime.After(input.StartTime) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end time must be after start time")
	}
	return nil
}

// priceFor charges the hourly rate per slot for the booked window, rounded
// to two decimal places.
func priceFor(hourlyRate decimal.Decimal, input CreateBookingInput) decimal.Decimal {
	hours := decimal.NewFromFloat(input.EndTime.Sub(input.StartTime).Hours())
	return hourlyRate.Mul(hours).Mul(decimal.NewFromInt(int64(input.SlotCount))).Round(2)
}
