package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/parkloop/parkloop-backend/pkg/logger"
)

const paymentTimeoutJobName = "payment-timeout"

const defaultPendingTTL = 30 * time.Minute

// stalePaymentSweeper fails pending payments older than the TTL and returns
// their slots.
type stalePaymentSweeper interface {
	SweepOnce(ctx context.Context, pendingTTL time.Duration) (int, error)
}

// PaymentTimeoutJob reconciles payments whose checkout never completed.
// It is the crash-safety net for holds taken before a gateway order could
// be confirmed.
type PaymentTimeoutJob struct {
	sweeper    stalePaymentSweeper
	logg       *logger.Logger
	pendingTTL time.Duration
}

// PaymentTimeoutJobParams configure the payment timeout job.
type PaymentTimeoutJobParams struct {
	Sweeper    stalePaymentSweeper
	Logger     *logger.Logger
	PendingTTL time.Duration
}

// NewPaymentTimeoutJob builds the job.
func NewPaymentTimeoutJob(params PaymentTimeoutJobParams) (*PaymentTimeoutJob, error) {
	if params.Sweeper == nil {
		return nil, fmt.Errorf("sweeper required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	ttl := params.PendingTTL
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}
	return &PaymentTimeoutJob{
		sweeper:    params.Sweeper,
		logg:       params.Logger,
		pendingTTL: ttl,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *PaymentTimeoutJob) Name() string {
	return paymentTimeoutJobName
}

// Run reconciles every payment pending longer than the TTL.
func (j *PaymentTimeoutJob) Run(ctx context.Context) error {
	reconciled, err := j.sweeper.SweepOnce(ctx, j.pendingTTL)
	if reconciled > 0 {
		scoped := j.logg.WithField(ctx, "reconciled", reconciled)
		j.logg.Info(scoped, "released slots for timed out payments")
	}
	return err
}
