package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math/rand/v2"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/algo-battle-backend/internal/catalog"
	"github.com/DoyleJ11/algo-battle-backend/internal/config"
	"github.com/DoyleJ11/algo-battle-backend/internal/engine"
	"github.com/DoyleJ11/algo-battle-backend/internal/httpapi"
	"github.com/DoyleJ11/algo-battle-backend/internal/hub"
	"github.com/DoyleJ11/algo-battle-backend/internal/lobby"
	"github.com/DoyleJ11/algo-battle-backend/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (optional)")
	flag.Parse()

	// A missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("opening catalog", zap.Error(err))
	}

	h := hub.NewHub(ctx, lobbyOptions(cfg, logger), logger)

	handler := httpapi.SetupRoutes(httpapi.Deps{
		Hub:      h,
		Catalog:  provider,
		Validate: validator.New(validator.WithRequiredStructEnabled()),
		Logger:   logger,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		select {
		case h.Inbox() <- hub.ShutdownHub{}:
		case <-h.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func lobbyOptions(cfg config.Config, logger *zap.Logger) hub.LobbyOptions {
	return func(code string) lobby.Options {
		return lobby.Options{
			Rules: engine.Rules{TurnTimerSec: cfg.Battle.TurnTimerSec()},
			Pacing: lobby.Pacing{
				DraftPickDelay:   cfg.Battle.DraftPickDelay,
				BattleStartDelay: cfg.Battle.BattleStartDelay,
				ResolveDelay:     cfg.Battle.ResolveDelay,
				TickInterval:     cfg.Battle.TickInterval,
			},
			Source: newSource(cfg.Battle.Seed),
			Logger: logger,
		}
	}
}

// newSource gives each lobby its own generator; the lobby goroutine is its only user.
func newSource(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

func openCatalog(ctx context.Context, cfg config.Config, logger *zap.Logger) (catalog.Provider, error) {
	roster, err := loadRoster(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	if cfg.Catalog.Source == "file" {
		logger.Info("catalog loaded", zap.String("source", "file"), zap.Int("algorithms", len(roster)))
		return catalog.Static(roster), nil
	}

	db, err := catalog.OpenPostgres(cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	store, err := catalog.NewStore(db)
	if err != nil {
		return nil, err
	}
	if err := store.Seed(ctx, roster); err != nil {
		return nil, err
	}
	logger.Info("catalog loaded",
		zap.String("source", "database"),
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name),
		zap.Int("algorithms", len(roster)),
	)
	return store, nil
}

func loadRoster(path string) ([]engine.Template, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}
