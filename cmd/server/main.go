package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/config"
	"github.com/mamadbah2/shopms/internal/repository/sheets"
	"github.com/mamadbah2/shopms/internal/scheduler"
	"github.com/mamadbah2/shopms/internal/server/handlers"
	"github.com/mamadbah2/shopms/internal/server/router"
	authsvc "github.com/mamadbah2/shopms/internal/service/auth"
	expensesvc "github.com/mamadbah2/shopms/internal/service/expenses"
	inventorysvc "github.com/mamadbah2/shopms/internal/service/inventory"
	ledgersvc "github.com/mamadbah2/shopms/internal/service/ledger"
	"github.com/mamadbah2/shopms/internal/service/receipt"
	reportingsvc "github.com/mamadbah2/shopms/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/shopms/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/shopms/pkg/clients/whatsapp"
	"github.com/mamadbah2/shopms/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.NewForEnv(cfg.Server.IsDevelopment()))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("invalid reporting timezone", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openBackend(ctx, cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	authSvc := authsvc.NewService(store.Users(), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, baseLogger.Named("svc.auth"))
	inventorySvc := inventorysvc.NewService(store.Products(), baseLogger.Named("svc.inventory"))
	ledgerSvc := ledgersvc.NewService(store.Products(), store.Sales(), store.Transactor(), baseLogger.Named("svc.ledger"))
	expenseSvc := expensesvc.NewService(store.Expenses(), baseLogger.Named("svc.expenses"))
	reportingSvc := reportingsvc.NewService(store.Sales(), store.Expenses(), store.Reports(), loc, cfg.Shop.Currency, baseLogger.Named("svc.reporting"))

	shop := receipt.Shop{
		Name:     cfg.Shop.Name,
		Address:  cfg.Shop.Address,
		Phone:    cfg.Shop.Phone,
		Footer:   cfg.Shop.ReceiptFooter,
		Currency: cfg.Shop.Currency,
		Location: loc,
	}

	engine := router.New(router.Handlers{
		Auth:      handlers.NewAuthHandler(authSvc, !cfg.Server.IsDevelopment(), baseLogger.Named("handlers.auth")),
		Products:  handlers.NewProductHandler(inventorySvc, baseLogger.Named("handlers.products")),
		Sales:     handlers.NewSaleHandler(ledgerSvc, shop, baseLogger.Named("handlers.sales")),
		Expenses:  handlers.NewExpenseHandler(expenseSvc, loc, baseLogger.Named("handlers.expenses")),
		Dashboard: handlers.NewDashboardHandler(reportingSvc, baseLogger.Named("handlers.dashboard")),
	}, cfg.Server.AllowedOrigins, baseLogger.Named("router"))

	var exporter scheduler.ReportExporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = sheets.NewReportExporter(sheetsRepo, cfg.Sheets.ReportRange)
		baseLogger.Info("google sheets report export enabled")
	}

	var messagingSvc whatsappsvc.MessagingService
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc = whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, baseLogger.Named("svc.whatsapp"))
		baseLogger.Info("whatsapp daily summary enabled")
	} else {
		baseLogger.Warn("whatsapp access token missing, daily summary notification disabled")
	}

	sched, err := scheduler.NewScheduler(*cfg, reportingSvc, exporter, messagingSvc, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("env", cfg.Server.Env),
			zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
