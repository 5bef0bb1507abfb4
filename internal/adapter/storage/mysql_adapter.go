package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/justclick/storefront/internal/core/domain"
)

var ErrNoSuchProduct = errors.New("no such product")

// MySQLAdapter implements the remote document store on MySQL. Variant
// lists and order lines are stored as JSON columns; created_at on
// orders is assigned by the database.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// EnsureSchema creates the product and order tables when absent.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price DOUBLE,
			category VARCHAR(64),
			stock INT,
			variants JSON,
			image TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id VARCHAR(36) PRIMARY KEY,
			lines JSON NOT NULL,
			total DOUBLE NOT NULL,
			customer JSON,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, price, category, stock, variants, image
		FROM products`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			p        domain.Product
			price    sql.NullFloat64
			category sql.NullString
			stock    sql.NullInt64
			variants sql.NullString
			image    sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &price, &category, &stock, &variants, &image); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		// NULL columns map to the zero values the catalog normalizes.
		p.Price = price.Float64
		p.Category = category.String
		p.Stock = int(stock.Int64)
		p.Image = image.String
		if variants.Valid && variants.String != "" {
			if err := json.Unmarshal([]byte(variants.String), &p.Variants); err != nil {
				return nil, fmt.Errorf("decode variants for %s: %w", p.ID, err)
			}
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (m *MySQLAdapter) UpsertOrder(ctx context.Context, order domain.Order) error {
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("encode order lines: %w", err)
	}
	customer, err := json.Marshal(order.Customer)
	if err != nil {
		return fmt.Errorf("encode customer: %w", err)
	}

	// Replacing on duplicate id keeps a retried submission from
	// recording the order twice. created_at stays at its first value.
	_, err = m.db.ExecContext(ctx, `
		INSERT INTO orders (id, lines, total, customer)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE lines = VALUES(lines), total = VALUES(total), customer = VALUES(customer)`,
		order.ID, lines, order.Total, customer,
	)
	if err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) DecrementStock(ctx context.Context, productID string, quantity int) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE products
		SET stock = GREATEST(stock - ?, 0)
		WHERE id = ?`,
		quantity, productID,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Either the id is unknown or the stock was already at the
		// written value; distinguish so reconciliation can log it.
		var exists int
		err := m.db.QueryRowContext(ctx, `SELECT 1 FROM products WHERE id = ?`, productID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrNoSuchProduct, productID)
		}
		if err != nil {
			return fmt.Errorf("check product: %w", err)
		}
	}
	return nil
}

// SeedProducts upserts the given products, used by the seed command to
// publish a catalog.
func (m *MySQLAdapter) SeedProducts(ctx context.Context, products []domain.Product) error {
	for _, p := range products {
		variants, err := json.Marshal(p.Variants)
		if err != nil {
			return fmt.Errorf("encode variants: %w", err)
		}
		_, err = m.db.ExecContext(ctx, `
			INSERT INTO products (id, name, price, category, stock, variants, image)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				name = VALUES(name), price = VALUES(price), category = VALUES(category),
				stock = VALUES(stock), variants = VALUES(variants), image = VALUES(image)`,
			p.ID, p.Name, p.Price, p.Category, p.Stock, variants, p.Image,
		)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	return nil
}
