package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/parkloop/parkloop-backend/pkg/db/models"
	pkgerrors "github.com/parkloop/parkloop-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// serialize writers so concurrent tests exercise our guard, not sqlite's
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Spot{}); err != nil {
		t.Fatalf("migrate spots: %v", err)
	}
	return db
}

func seedSpot(t *testing.T, db *gorm.DB, total, available int) uuid.UUID {
	t.Helper()
	spot := models.Spot{
		ID:             uuid.New(),
		OwnerID:        uuid.New(),
		Title:          "Lot A",
		Address:        "12 Hill Rd",
		TotalSlots:     total,
		AvailableSlots: available,
	}
	if err := db.Create(&spot).Error; err != nil {
		t.Fatalf("seed spot: %v", err)
	}
	return spot.ID
}

func loadAvailable(t *testing.T, db *gorm.DB, spotID uuid.UUID) int {
	t.Helper()
	var spot models.Spot
	if err := db.First(&spot, "id = ?", spotID).Error; err != nil {
		t.Fatalf("load spot: %v", err)
	}
	return spot.AvailableSlots
}

func TestReserveDecrements(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	spotID := seedSpot(t, db, 5, 5)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Reserve(ctx, tx, spotID, 3)
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if got := loadAvailable(t, db, spotID); got != 2 {
		t.Fatalf("expected 2 available, got %d", got)
	}
}

func TestReserveInsufficientIsAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	spotID := seedSpot(t, db, 5, 2)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Reserve(ctx, tx, spotID, 3)
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientSlots) {
		t.Fatalf("expected INSUFFICIENT_SLOTS, got %v", err)
	}
	if got := loadAvailable(t, db, spotID); got != 2 {
		t.Fatalf("partial fulfilment is forbidden; available=%d", got)
	}
}

func TestReserveUnknownSpot(t *testing.T) {
	db := newTestDB(t)
	err := db.Transaction(func(tx *gorm.DB) error {
		return Reserve(context.Background(), tx, uuid.New(), 1)
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestReserveRejectsNonPositiveCount(t *testing.T) {
	db := newTestDB(t)
	spotID := seedSpot(t, db, 5, 5)
	err := db.Transaction(func(tx *gorm.DB) error {
		return Reserve(context.Background(), tx, spotID, 0)
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestConcurrentReservesNeverOversell(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	const slots = 4
	spotID := seedSpot(t, db, slots, slots)

	var wg sync.WaitGroup
	results := make(chan error, slots+1)
	for i := 0; i < slots+1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- db.Transaction(func(tx *gorm.DB) error {
				return Reserve(ctx, tx, spotID, 1)
			})
		}()
	}
	wg.Wait()
	close(results)

	var ok, insufficient int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case pkgerrors.IsCode(err, pkgerrors.CodeInsufficientSlots):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != slots || insufficient != 1 {
		t.Fatalf("expected %d successes and 1 rejection, got %d/%d", slots, ok, insufficient)
	}
	if got := loadAvailable(t, db, spotID); got != 0 {
		t.Fatalf("expected 0 available, got %d", got)
	}
}

func TestReleaseIncrements(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	spotID := seedSpot(t, db, 5, 1)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Release(ctx, tx, spotID, 2)
	})
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := loadAvailable(t, db, spotID); got != 3 {
		t.Fatalf("expected 3 available, got %d", got)
	}
}

func TestReleaseClampsAtTotal(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	spotID := seedSpot(t, db, 5, 4)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Release(ctx, tx, spotID, 3)
	})
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := loadAvailable(t, db, spotID); got != 5 {
		t.Fatalf("release must clamp at total_slots, got %d", got)
	}
}

func TestReleaseUnknownSpot(t *testing.T) {
	db := newTestDB(t)
	err := db.Transaction(func(tx *gorm.DB) error {
		return Release(context.Background(), tx, uuid.New(), 1)
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
