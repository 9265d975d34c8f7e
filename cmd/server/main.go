// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/babo/internal/cache"
	"github.com/jason-s-yu/babo/internal/config"
	"github.com/jason-s-yu/babo/internal/database"
	"github.com/jason-s-yu/babo/internal/handlers"
	"github.com/jason-s-yu/babo/internal/janitor"
	"github.com/jason-s-yu/babo/internal/memstore"
	"github.com/jason-s-yu/babo/internal/room"
	"github.com/jason-s-yu/babo/internal/words"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// roomStore is what both the room service and the janitor need from storage.
type roomStore interface {
	room.Store
	janitor.StaleLister
}

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}

func run(ctx context.Context, cfg config.Config, logger *logrus.Logger) error {
	var store roomStore
	if cfg.DatabaseURL == "" {
		logger.Warn("no database configured, rooms are kept in memory")
		store = memstore.New()
	} else {
		pool, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		logger.Info("connected to postgres")
		store = database.NewStore(pool)
	}

	resolver := buildResolver(ctx, cfg, logger)
	rooms := room.NewService(store, resolver, nil, logger)

	mux := http.NewServeMux()
	handlers.Register(mux, handlers.NewRoomServer(rooms, resolver, logger))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	jan := janitor.New(store, rooms, cfg.PlayerIdleTimeout, cfg.JanitorInterval, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return jan.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildResolver assembles the word-pair chain from whatever is configured. The curated
// table is always present, so the resolver works with no external services at all.
func buildResolver(ctx context.Context, cfg config.Config, logger *logrus.Logger) *words.Resolver {
	var opts []words.ResolverOption

	if cfg.OpenAIKey != "" {
		opts = append(opts, words.WithGenerator(words.NewOpenAIGenerator(cfg.OpenAIKey, words.GeneratorConfig{
			Model:   cfg.OpenAIModel,
			Timeout: cfg.OpenAITimeout,
			RPS:     cfg.OpenAIRPS,
			Burst:   1,
		})))
	} else {
		logger.Info("OPENAI_API_KEY not set, using curated word pairs only")
	}

	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	switch {
	case err != nil:
		logger.WithError(err).Warn("redis unavailable, word pair cache disabled")
	case rdb != nil:
		opts = append(opts, words.WithCache(words.NewCache(rdb, cfg.PairCacheTTL)))
	}

	return words.NewResolver(words.NewCurated(), logger, opts...)
}
