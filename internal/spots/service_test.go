package spots

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/parkloop/parkloop-backend/pkg/db/models"
	"github.com/parkloop/parkloop-backend/pkg/enums"
	pkgerrors "github.com/parkloop/parkloop-backend/pkg/errors"
	"github.com/parkloop/parkloop-backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:spots_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Spot{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db
}

func validInput() CreateSpotInput {
	return CreateSpotInput{
		OwnerID:    uuid.New(),
		Title:      "Riverside Lot",
		Address:    "3 Quay St",
		TotalSlots: 8,
		HourlyRate: decimal.NewFromInt(35),
	}
}

func TestCreateSpotStartsPendingWithFullCapacity(t *testing.T) {
	svc, _ := newTestService(t)

	spot, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if spot.VerificationStatus != enums.SpotVerificationPending {
		t.Fatalf("verification = %s, want pending", spot.VerificationStatus)
	}
	if spot.AvailableSlots != 8 {
		t.Fatalf("available = %d, want 8", spot.AvailableSlots)
	}
}

func TestCreateSpotValidation(t *testing.T) {
	svc, _ := newTestService(t)

	cases := map[string]func(*CreateSpotInput){
		"missing owner":  func(in *CreateSpotInput) { in.OwnerID = uuid.Nil },
		"blank title":    func(in *CreateSpotInput) { in.Title = "  " },
		"blank address":  func(in *CreateSpotInput) { in.Address = "" },
		"zero slots":     func(in *CreateSpotInput) { in.TotalSlots = 0 },
		"negative rate":  func(in *CreateSpotInput) { in.HourlyRate = decimal.NewFromInt(-1) },
	}
	for name, mutate := range cases {
		input := validInput()
		mutate(&input)
		if _, err := svc.Create(context.Background(), input); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestGetUnknownSpot(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestListVerifiedHidesPendingAndRejected(t *testing.T) {
	svc, db := newTestService(t)

	verified, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Model(&models.Spot{}).Where("id = ?", verified.ID).
		Update("verification_status", enums.SpotVerificationVerified).Error; err != nil {
		t.Fatalf("verify spot: %v", err)
	}
	if _, err := svc.Create(context.Background(), validInput()); err != nil {
		t.Fatalf("create pending: %v", err)
	}

	list, err := svc.ListVerified(context.Background(), pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != verified.ID {
		t.Fatalf("unexpected items: %+v", list.Items)
	}
}

func TestListVerifiedCursorPaging(t *testing.T) {
	svc, db := newTestService(t)

	base := time.Now().UTC().Truncate(time.Second)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		spot, err := svc.Create(context.Background(), validInput())
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := db.Model(&models.Spot{}).Where("id = ?", spot.ID).Updates(map[string]any{
			"verification_status": enums.SpotVerificationVerified,
			"created_at":          base.Add(time.Duration(i) * time.Minute),
		}).Error; err != nil {
			t.Fatalf("verify spot: %v", err)
		}
		ids = append(ids, spot.ID)
	}

	first, err := svc.ListVerified(context.Background(), pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Items) != 2 || first.NextCursor == "" {
		t.Fatalf("first page items=%d cursor=%q", len(first.Items), first.NextCursor)
	}
	if first.Items[0].ID != ids[2] {
		t.Fatalf("expected newest first, got %s", first.Items[0].ID)
	}

	second, err := svc.ListVerified(context.Background(), pagination.Params{Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Items) != 1 || second.Items[0].ID != ids[0] {
		t.Fatalf("unexpected second page: %+v", second.Items)
	}
	if second.NextCursor != "" {
		t.Fatalf("cursor after last page = %q", second.NextCursor)
	}
}
