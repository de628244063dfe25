package reconciler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/parkloop/parkloop-backend/internal/inventory"
	"github.com/parkloop/parkloop-backend/pkg/db/models"
	"github.com/parkloop/parkloop-backend/pkg/enums"
	pkgerrors "github.com/parkloop/parkloop-backend/pkg/errors"
	"github.com/parkloop/parkloop-backend/pkg/logger"
	"github.com/parkloop/parkloop-backend/pkg/metrics"
)

// Reason strings recorded on payments failed by the reconciler.
const (
	ReasonGatewayFailure   = "gateway order creation failed"
	ReasonGatewayDeclined  = "gateway reported payment failed"
	ReasonTimeout          = "payment not confirmed before deadline"
	ReasonInvalidSignature = "gateway signature verification failed"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service resolves payments stuck in pending: it marks them failed and
// returns their reserved slots to the spot. Every failure-path slot
// release goes through here, so release happens at most once per payment.
type Service struct {
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.BookingMetrics
}

type ServiceParams struct {
	Tx      txRunner
	Logger  *logger.Logger
	Metrics *metrics.BookingMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reconciler: tx runner is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reconciler: logger is required")
	}
	return &Service{tx: params.Tx, logg: params.Logger, metrics: params.Metrics}, nil
}

// Reconcile fails a pending payment and releases its reservation inside a
// fresh transaction. It reports whether this call performed the release;
// a payment already in a terminal state is left untouched.
func (s *Service) Reconcile(ctx context.Context, paymentID uuid.UUID, reason string) (bool, error) {
	var released bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var innerErr error
		released, innerErr = s.ReconcileInTx(ctx, tx, paymentID, reason)
		return innerErr
	})
	if err != nil {
		return false, err
	}
	return released, nil
}

// ReconcileInTx is Reconcile for callers that already hold a transaction,
// such as a confirmation that discovered a forged signature while holding
// the payment row lock.
func (s *Service) ReconcileInTx(ctx context.Context, tx *gorm.DB, paymentID uuid.UUID, reason string) (bool, error) {
	if tx == nil {
		return false, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if paymentID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}

	var payment models.Payment
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", paymentID).
		First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}

	if payment.Status.IsTerminal() {
		return false, nil
	}

	updates := map[string]any{
		"status":         enums.PaymentStatusFailed,
		"failure_reason": reason,
	}
	if err := tx.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", payment.ID).
		Updates(updates).Error; err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment failed")
	}

	if err := inventory.Release(ctx, tx, payment.SpotID, payment.SlotCount); err != nil {
		return false, err
	}

	s.metrics.IncReconciled()
	return true, nil
}

// SweepOnce reconciles every payment that has been pending longer than
// pendingTTL. Each payment gets its own transaction so one bad row cannot
// block the rest of the batch.
func (s *Service) SweepOnce(ctx context.Context, pendingTTL time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-pendingTTL)

	var stale []models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.WithContext(ctx).
			Where("status = ? AND created_at < ?", enums.PaymentStatusPending, cutoff).
			Order("created_at ASC").
			Find(&stale).Error
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stale payments")
	}

	var reconciled int
	var errs error
	for _, payment := range stale {
		scoped := s.logg.WithPaymentID(ctx, payment.ID.String())
		released, rErr := s.Reconcile(ctx, payment.ID, ReasonTimeout)
		if rErr != nil {
			s.logg.Error(scoped, "failed to reconcile stale payment", rErr)
			errs = multierr.Append(errs, rErr)
			continue
		}
		if released {
			reconciled++
		}
	}
	return reconciled, errs
}
