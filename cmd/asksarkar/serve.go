package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/theIndrajeet/AskSarkar/internal/adapter/llm"
	"github.com/theIndrajeet/AskSarkar/internal/config"
	"github.com/theIndrajeet/AskSarkar/internal/conversation"
	"github.com/theIndrajeet/AskSarkar/internal/hub"
	"github.com/theIndrajeet/AskSarkar/internal/policy"
	"github.com/theIndrajeet/AskSarkar/internal/ratelimit"
	"github.com/theIndrajeet/AskSarkar/internal/repository"
	"github.com/theIndrajeet/AskSarkar/internal/scheduler"
	"github.com/theIndrajeet/AskSarkar/internal/service"
	handler "github.com/theIndrajeet/AskSarkar/internal/transport/http"
	"github.com/theIndrajeet/AskSarkar/internal/transport/ws"
)

// stores holds the open storage backends.
type stores struct {
	db      *repository.SQLiteStore
	records repository.RecordStore
	redis   *redis.Client
}

// openStores opens the configured record store. The SQLite log is opened
// when withDB is set or when records live in SQLite.
func openStores(ctx context.Context, cfg *config.Config, withDB bool) (*stores, error) {
	s := &stores{}
	storeType := repository.RecordStoreType(cfg.RecordStore)

	var opts []repository.RecordStoreOption
	if withDB || storeType == repository.RecordStoreSQLite {
		db, err := repository.NewSQLiteStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		s.db = db
		opts = append(opts, repository.WithSQLiteStore(db))
	}

	if storeType == repository.RecordStoreRedis {
		s.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := s.redis.Ping(ctx).Err(); err != nil {
			s.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		opts = append(opts, repository.WithRedisClient(s.redis), repository.WithRedisTTL(cfg.RedisTTL))
	}

	records, err := repository.NewRecordStore(storeType, opts...)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("record store %q: %w", cfg.RecordStore, err)
	}
	s.records = records
	return s, nil
}

// Close releases every open backend. A redis record store owns the client.
func (s *stores) Close() {
	if s.records != nil {
		s.records.Close()
	} else if s.redis != nil {
		s.redis.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

func newLimiter(cfg *config.Config, records repository.RecordStore) (*ratelimit.Limiter, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	opts := []ratelimit.Option{
		ratelimit.WithDailyLimit(cfg.DailyLimit),
		ratelimit.WithLocation(loc),
	}
	if cfg.WarningThreshold > 0 {
		opts = append(opts, ratelimit.WithWarningThreshold(cfg.WarningThreshold))
	}
	return ratelimit.New(records, opts...), nil
}

func newService(ctx context.Context, cfg *config.Config, st *stores) (*service.Service, error) {
	limiter, err := newLimiter(cfg, st.records)
	if err != nil {
		return nil, err
	}

	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		return nil, fmt.Errorf("init policy engine: %w", err)
	}

	generator, err := llm.NewGenerator(ctx, llm.Options{
		Provider: cfg.LLMProvider,
		BaseURL:  cfg.LLMBaseURL,
		APIKey:   cfg.LLMAPIKey,
		Model:    cfg.LLMModel,
		Timeout:  cfg.LLMTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init generator: %w", err)
	}

	return service.New(st.db, conversation.NewMemory(st.records), limiter, policyEngine, generator, cfg), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log.SetLevel(cfg.Level())

	log.Info("Starting AskSarkar",
		"port", cfg.HTTPPort,
		"database", cfg.DatabaseURL,
		"records", cfg.RecordStore,
		"provider", cfg.LLMProvider,
		"daily_limit", cfg.DailyLimit,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	svc, err := newService(ctx, cfg, st)
	if err != nil {
		return err
	}
	log.Info("Generator ready", "name", svc.Generator().Name(), "remote", svc.Generator().Remote())

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	sched := scheduler.New(loc)
	if err := sched.Add(scheduler.Job{
		Name: "usage-rollover",
		Spec: scheduler.MidnightSpec,
		Run:  svc.RolloverUsage,
	}); err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()
	log.Info("Usage rollover scheduled", "next", sched.Next("usage-rollover"))

	connectionHub := hub.NewHub()
	go connectionHub.Run(ctx)

	e := handler.NewServer(svc, ws.NewServer(cfg, connectionHub, svc))

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down AskSarkar")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("Server shutdown failed", "err", err)
	}

	log.Info("AskSarkar stopped")
	return nil
}
