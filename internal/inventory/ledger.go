package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parkloop/parkloop-backend/pkg/db/models"
	pkgerrors "github.com/parkloop/parkloop-backend/pkg/errors"
)

// This package is the single writer of spots.available_slots. Reserve and
// Release run one conditional UPDATE each, so two concurrent attempts against
// the same spot are serialized by the database and the loser observes the
// post-decrement value.

// Reserve atomically verifies availability and decrements available_slots by
// count. The guard lives in the WHERE clause; there is no read-then-write gap
// visible to other transactions.
func Reserve(ctx context.Context, tx *gorm.DB, spotID uuid.UUID, count int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if spotID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "spot id required")
	}
	if count <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("slot count must be positive, got %d", count))
	}

	res := tx.WithContext(ctx).Model(&models.Spot{}).
		Where("id = ? AND available_slots >= ?", spotID, count).
		Update("available_slots", gorm.Expr("available_slots - ?", count))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve slots")
	}
	if res.RowsAffected == 0 {
		return classifyReserveMiss(ctx, tx, spotID, count)
	}
	return nil
}

// Release atomically returns count slots to the spot. The increment is clamped
// at total_slots so a double-release bug can never push availability past
// capacity.
func Release(ctx context.Context, tx *gorm.DB, spotID uuid.UUID, count int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if spotID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "spot id required")
	}
	if count <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("slot count must be positive, got %d", count))
	}

	res := tx.WithContext(ctx).Model(&models.Spot{}).
		Where("id = ?", spotID).
		Update("available_slots", gorm.Expr(
			"CASE WHEN available_slots + ? > total_slots THEN total_slots ELSE available_slots + ? END",
			count, count,
		))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release slots")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "spot not found")
	}
	return nil
}

func classifyReserveMiss(ctx context.Context, tx *gorm.DB, spotID uuid.UUID, count int) error {
	var spot models.Spot
	err := tx.WithContext(ctx).Select("id", "available_slots").First(&spot, "id = ?", spotID).Error
	if err == gorm.ErrRecordNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "spot not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load spot")
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientSlots,
		fmt.Sprintf("%d slots requested, %d available", count, spot.AvailableSlots)).
		WithDetails(map[string]any{"requested": count, "available": spot.AvailableSlots})
}
