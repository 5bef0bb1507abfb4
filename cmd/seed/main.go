// Command seed creates the store schema and publishes the default
// catalog to MySQL, so a fresh environment serves live products
// instead of the built-in fallback.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/justclick/storefront/internal/adapter/storage"
	"github.com/justclick/storefront/internal/core/service"
	"github.com/justclick/storefront/pkg/config"
)

func main() {
	stock := flag.Int("stock", 0, "override stock for every product (0 keeps defaults)")
	flag.Parse()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	store := storage.NewMySQLAdapter(db)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to create schema: %v", err)
	}

	products := service.DefaultCatalog()
	if *stock > 0 {
		for i := range products {
			products[i].Stock = *stock
		}
	}

	if err := store.SeedProducts(ctx, products); err != nil {
		log.Fatalf("failed to seed products: %v", err)
	}
	log.Printf("seeded %d products", len(products))
}
