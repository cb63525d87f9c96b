package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/praveensri2018/sivanyaAPI/pkg/db/models"
	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	pkgerrors "github.com/praveensri2018/sivanyaAPI/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:stock_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.StockMovement{}); err != nil {
		t.Fatalf("migrate stock: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db
}

func TestAvailableSignsMovements(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	seed := []RecordMovementInput{
		{ProductID: 10, Size: "M", Quantity: 5, Direction: enums.StockDirectionIn},
		{ProductID: 10, Size: "M", Quantity: 3, Direction: enums.StockDirectionIn},
		{ProductID: 10, Size: "M", Quantity: 2, Direction: enums.StockDirectionOut},
		{ProductID: 10, Size: "L", Quantity: 7, Direction: enums.StockDirectionIn},
	}
	for _, input := range seed {
		if _, err := svc.Record(ctx, input); err != nil {
			t.Fatalf("record %+v: %v", input, err)
		}
	}

	got, err := svc.Available(ctx, 10, "M")
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if got != 6 {
		t.Fatalf("expected balance 6, got %d", got)
	}

	got, err = svc.Available(ctx, 10, "L")
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected balance 7, got %d", got)
	}
}

func TestAvailableWithoutMovementsIsZero(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	got, err := svc.Available(context.Background(), 99, "XL")
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected 0 for missing key, got %d", got)
	}
}

func TestAvailableIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Record(ctx, RecordMovementInput{ProductID: 1, Size: "S", Quantity: 4, Direction: enums.StockDirectionIn}); err != nil {
		t.Fatalf("record: %v", err)
	}

	first, err := svc.Available(ctx, 1, "S")
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	second, err := svc.Available(ctx, 1, "S")
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if first != second {
		t.Fatalf("availability changed without movements: %d != %d", first, second)
	}
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []RecordMovementInput{
		{ProductID: 0, Size: "M", Quantity: 1, Direction: enums.StockDirectionIn},
		{ProductID: 1, Size: "", Quantity: 1, Direction: enums.StockDirectionIn},
		{ProductID: 1, Size: "M", Quantity: 0, Direction: enums.StockDirectionIn},
		{ProductID: 1, Size: "M", Quantity: -2, Direction: enums.StockDirectionOut},
		{ProductID: 1, Size: "M", Quantity: 1, Direction: "SIDEWAYS"},
	}
	for _, input := range cases {
		_, err := svc.Record(ctx, input)
		if err == nil {
			t.Fatalf("expected validation error for %+v", input)
		}
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("unexpected error for %+v: %v", input, err)
		}
	}
}

func TestListByProductNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	_, err := svc.ListByProduct(context.Background(), 123)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	movement, err := svc.Record(ctx, RecordMovementInput{ProductID: 2, Size: "M", Quantity: 5, Direction: enums.StockDirectionIn})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	updated, err := svc.UpdateQuantity(ctx, movement.ID, 8)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Quantity != 8 {
		t.Fatalf("expected quantity 8, got %d", updated.Quantity)
	}

	if err := svc.Delete(ctx, movement.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, movement.ID); err == nil {
		t.Fatal("expected not found for second delete")
	}
}

func TestStoreFailureIsInternal(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	if err := db.Exec("DROP TABLE product_stock").Error; err != nil {
		t.Fatalf("drop table: %v", err)
	}

	_, err := svc.Available(ctx, 10, "M")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("available: error = %v, want code %s", err, pkgerrors.CodeInternal)
	}
}
