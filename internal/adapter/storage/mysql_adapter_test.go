package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/justclick/storefront/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/storefront?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	return db
}

func setupMySQL(t *testing.T) (*MySQLAdapter, *sql.DB) {
	t.Helper()
	db := getMySQLDB(t)
	adapter := NewMySQLAdapter(db)
	if err := adapter.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return adapter, db
}

func TestListProducts(t *testing.T) {
	adapter, db := setupMySQL(t)
	defer db.Close()
	ctx := context.Background()

	db.ExecContext(ctx, `DELETE FROM products WHERE id LIKE 'test-%'`)
	err := adapter.SeedProducts(ctx, []domain.Product{
		{ID: "test-tint", Name: "Test Tint", Price: 299, Category: domain.CategoryLipTint, Stock: 10, Variants: []string{"One Size"}},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	products, err := adapter.ListProducts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var found *domain.Product
	for i := range products {
		if products[i].ID == "test-tint" {
			found = &products[i]
		}
	}
	if found == nil {
		t.Fatal("seeded product missing from list")
	}
	if found.Price != 299 || found.Stock != 10 {
		t.Errorf("unexpected product: %+v", found)
	}
	if len(found.Variants) != 1 || found.Variants[0] != "One Size" {
		t.Errorf("variants lost: %v", found.Variants)
	}
}

func TestUpsertOrder_Idempotent(t *testing.T) {
	adapter, db := setupMySQL(t)
	defer db.Close()
	ctx := context.Background()

	order := domain.Order{
		ID: uuid.New().String(),
		Lines: []domain.OrderLine{
			{ProductID: "test-tint", Name: "Test Tint", Price: 299, Quantity: 2, Variant: "One Size"},
		},
		Total:    598,
		Customer: domain.Customer{Name: "Ana"},
	}

	if err := adapter.UpsertOrder(ctx, order); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	// A retried submission with the same id must not duplicate.
	if err := adapter.UpsertOrder(ctx, order); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE id = ?`, order.ID).Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 order row, got %d", count)
	}

	db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, order.ID)
}

func TestDecrementStock_FlooredAtZero(t *testing.T) {
	adapter, db := setupMySQL(t)
	defer db.Close()
	ctx := context.Background()

	adapter.SeedProducts(ctx, []domain.Product{
		{ID: "test-floor", Name: "Floor", Price: 1, Stock: 3, Variants: []string{"One Size"}},
	})

	if err := adapter.DecrementStock(ctx, "test-floor", 5); err != nil {
		t.Fatalf("decrement: %v", err)
	}

	var stock int
	db.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = ?`, "test-floor").Scan(&stock)
	if stock != 0 {
		t.Errorf("expected stock 0, got %d", stock)
	}

	// A second decrement at zero is a no-op, not an error.
	if err := adapter.DecrementStock(ctx, "test-floor", 1); err != nil {
		t.Errorf("decrement at zero: %v", err)
	}

	db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, "test-floor")
}

func TestDecrementStock_UnknownProduct(t *testing.T) {
	adapter, db := setupMySQL(t)
	defer db.Close()

	err := adapter.DecrementStock(context.Background(), "test-ghost", 1)
	if !errors.Is(err, ErrNoSuchProduct) {
		t.Errorf("expected ErrNoSuchProduct, got %v", err)
	}
}
