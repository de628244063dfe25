package spots

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parkloop/parkloop-backend/pkg/db/models"
	"github.com/parkloop/parkloop-backend/pkg/enums"
	"github.com/parkloop/parkloop-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a spot repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, spot *models.Spot) (*models.Spot, error) {
	if spot.ID == uuid.Nil {
		spot.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(spot).Error; err != nil {
		return nil, err
	}
	return spot, nil
}

func (r *repository) FindByID(ctx context.Context, spotID uuid.UUID) (*models.Spot, error) {
	var spot models.Spot
	err := r.db.WithContext(ctx).Where("id = ?", spotID).First(&spot).Error
	if err != nil {
		return nil, err
	}
	return &spot, nil
}

func (r *repository) ListVerified(ctx context.Context, params pagination.Params) (*SpotList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Spot{}).
		Where("verification_status = ?", enums.SpotVerificationVerified)
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var spots []models.Spot
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&spots).Error
	if err != nil {
		return nil, err
	}

	list := &SpotList{}
	page := spots
	if len(spots) > limit {
		page = spots[:limit]
		last := page[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	list.Items = make([]SpotView, 0, len(page))
	for _, spot := range page {
		list.Items = append(list.Items, toView(spot))
	}
	return list, nil
}

func toView(spot models.Spot) SpotView {
	return SpotView{
		ID:                 spot.ID,
		OwnerID:            spot.OwnerID,
		Title:              spot.Title,
		Address:            spot.Address,
		TotalSlots:         spot.TotalSlots,
		AvailableSlots:     spot.AvailableSlots,
		HourlyRate:         spot.HourlyRate,
		VerificationStatus: spot.VerificationStatus,
		CreatedAt:          spot.CreatedAt,
	}
}
