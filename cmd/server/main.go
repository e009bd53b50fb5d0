package main

import (
	"CaseKeeper/internal/config"
	"CaseKeeper/internal/handlers"
	"CaseKeeper/internal/middleware"
	"CaseKeeper/internal/repo"
	"CaseKeeper/internal/repo/memory"
	"CaseKeeper/internal/risk"
	"CaseKeeper/internal/service"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		sugar.Fatalw("failed to initialize store", "driver", cfg.StoreDriver, "error", err)
	}

	userService := service.NewUserService(store.Users(), sugar)
	recordService := service.NewRecordService(store, sugar)
	statsService := service.NewStatsService(store)

	if insecure := cfg.InsecureDefaults(); len(insecure) > 0 {
		sugar.Warnw("insecure default credentials in use, override them outside local runs", "settings", insecure)
	}
	if err := userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		sugar.Fatalw("failed to bootstrap admin", "error", err)
	}

	// прогноз загружается один раз до старта сервера
	facade, err := risk.Load(cfg.DatasetPath, risk.ForestOptions{Trees: cfg.RiskTrees, Seed: 1})
	if err != nil {
		if cfg.RiskRequired {
			sugar.Fatalw("failed to load crime dataset", "path", cfg.DatasetPath, "error", err)
		}
		sugar.Warnw("predictions disabled", "path", cfg.DatasetPath, "error", err)
		facade = nil
	} else {
		sugar.Infow("crime dataset loaded",
			"path", cfg.DatasetPath,
			"cities", facade.Statistics().TotalCities,
			"model_agreement", facade.ModelAgreement(),
		)
	}

	h := handlers.NewHandler(userService, recordService, statsService, facade, sugar, cfg)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"ServerURL", cfg.ServerURL,
		"StoreDriver", cfg.StoreDriver,
		"DatasetPath", cfg.DatasetPath,
	)

	server := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sugar.Infow("Starting server", "addr", cfg.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sugar.Infow("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		sugar.Errorw("Server failed", "error", err)
	}
	if err := store.Close(); err != nil {
		sugar.Errorw("failed to close store", "error", err)
	}
}

func openStore(cfg *config.Config) (repo.Store, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres, config.StoreSQLite:
		db, err := repo.InitDB(cfg.StoreDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return repo.NewGormStore(db), nil
	default:
		return memory.New(), nil
	}
}
