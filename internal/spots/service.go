package spots

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parkloop/parkloop-backend/pkg/db/models"
	"github.com/parkloop/parkloop-backend/pkg/enums"
	pkgerrors "github.com/parkloop/parkloop-backend/pkg/errors"
	"github.com/parkloop/parkloop-backend/pkg/pagination"
)

// Service exposes the spot directory.
type Service interface {
	Create(ctx context.Context, input CreateSpotInput) (*models.Spot, error)
	Get(ctx context.Context, spotID uuid.UUID) (*models.Spot, error)
	ListVerified(ctx context.Context, params pagination.Params) (*SpotList, error)
}

type service struct {
	repo Repository
}

// NewService builds a spot service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "spots: repository is required")
	}
	return &service{repo: repo}, nil
}

// Create registers a listing with its full capacity available. Verification
// starts pending; unverified spots never appear in public listings and
// cannot be booked.
func (s *service) Create(ctx context.Context, input CreateSpotInput) (*models.Spot, error) {
	if input.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if strings.TrimSpace(input.Address) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address required")
	}
	if input.TotalSlots <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total slots must be positive")
	}
	if input.HourlyRate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hourly rate must not be negative")
	}

	spot, err := s.repo.Create(ctx, &models.Spot{
		OwnerID:            input.OwnerID,
		Title:              strings.TrimSpace(input.Title),
		Address:            strings.TrimSpace(input.Address),
		TotalSlots:         input.TotalSlots,
		AvailableSlots:     input.TotalSlots,
		HourlyRate:         input.HourlyRate,
		VerificationStatus: enums.SpotVerificationPending,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create spot")
	}
	return spot, nil
}

func (s *service) Get(ctx context.Context, spotID uuid.UUID) (*models.Spot, error) {
	if spotID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "spot id required")
	}
	spot, err := s.repo.FindByID(ctx, spotID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "spot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load spot")
	}
	return spot, nil
}

func (s *service) ListVerified(ctx context.Context, params pagination.Params) (*SpotList, error) {
	list, err := s.repo.ListVerified(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list spots")
	}
	return list, nil
}
