package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ac2302/3d-ecommerce-backend/internal/catalog"
	"github.com/ac2302/3d-ecommerce-backend/internal/config"
	"github.com/ac2302/3d-ecommerce-backend/internal/httpx"
	"github.com/ac2302/3d-ecommerce-backend/internal/payment"
	"github.com/ac2302/3d-ecommerce-backend/internal/payout"
	"github.com/ac2302/3d-ecommerce-backend/internal/pkg/cache"
	"github.com/ac2302/3d-ecommerce-backend/internal/pkg/telemetry"
	"github.com/ac2302/3d-ecommerce-backend/internal/printjob"
	"github.com/ac2302/3d-ecommerce-backend/internal/purchase"
	"github.com/ac2302/3d-ecommerce-backend/internal/store/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry.InitLogger()

	cfg := config.Load()

	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var itemCache cache.Cache
	if cfg.RedisAddr != "" {
		itemCache = cache.NewRedisCache(cfg.RedisAddr, "catalog")
	}

	gateway := payment.NewRazorpayGateway(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	itemService := catalog.NewService(store.Items(), itemCache)
	purchaseService := purchase.NewService(
		purchase.Config{
			Currency:           cfg.Currency,
			SignatureSecret:    cfg.RazorpayKeySecret,
			AllowPaidDirectBuy: cfg.AllowPaidDirectBuy,
		},
		store.Items(),
		store.Ownerships(),
		store.Receipts(),
		gateway,
		store.AuditLog(),
	)
	payoutService := payout.NewService(store.Receipts())
	printJobService := printjob.NewService(store.PrintJobs())

	handler := httpx.NewHandler(itemService, purchaseService, payoutService, printJobService, store.Ownerships())
	router := httpx.NewRouter(handler, store.Users())

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown error", "error", err)
		}
	}()

	slog.Info("backend running", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}
