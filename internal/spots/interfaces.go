package spots

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parkloop/parkloop-backend/pkg/db/models"
	"github.com/parkloop/parkloop-backend/pkg/pagination"
)

// Repository defines persistence operations for the spot directory.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, spot *models.Spot) (*models.Spot, error)
	FindByID(ctx context.Context, spotID uuid.UUID) (*models.Spot, error)
	ListVerified(ctx context.Context, params pagination.Params) (*SpotList, error)
}
