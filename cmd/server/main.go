package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/justclick/storefront/internal/adapter/handler"
	"github.com/justclick/storefront/internal/adapter/storage"
	"github.com/justclick/storefront/internal/core/service"
	"github.com/justclick/storefront/pkg/config"
	"github.com/justclick/storefront/pkg/logger"
)

func main() {
	cfg := config.Load()

	logg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logg.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL holds the remote product and order collections. The server
	// still starts when it is unreachable: the catalog falls back to
	// the built-in defaults and checkout reports the store as down.
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logg.Fatal("mysql open failed", zap.Error(err))
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		logg.Warn("mysql unreachable, starting with fallback catalog", zap.Error(err))
	} else {
		logg.Info("connected to mysql")
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logg.Warn("redis unreachable, cart will not survive restarts", zap.Error(err))
	} else {
		logg.Info("connected to redis")
	}

	store := storage.NewMySQLAdapter(db)
	cache := storage.NewRedisAdapter(rdb, cfg.CartKey)

	catalog := service.NewCatalogService(store, logg)
	catalog.Load(ctx)
	if catalog.Fallback() {
		logg.Warn("serving built-in catalog")
	}

	cart := service.NewCartService(catalog, cache, logg)
	cart.Restore(ctx)

	checkout := service.NewCheckoutService(catalog, cart, store, logg)
	challenges := service.NewChallengeService(cache, cfg.ChallengeTTL)

	r := mux.NewRouter()
	h := handler.NewHTTPHandler(catalog, cart, checkout, challenges, logg)
	h.Register(r)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		logg.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logg.Error("http server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	rdb.Close()
	db.Close()
	logg.Info("connections closed")
}
