// Package app assembles the service from configuration: stores, scraper,
// engine, delivery, commands, digest, poller and the ops HTTP server.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mkotecha/crickwatch/internal/api"
	"github.com/mkotecha/crickwatch/internal/clock/system"
	"github.com/mkotecha/crickwatch/internal/commands"
	"github.com/mkotecha/crickwatch/internal/config"
	"github.com/mkotecha/crickwatch/internal/digest"
	"github.com/mkotecha/crickwatch/internal/engine"
	"github.com/mkotecha/crickwatch/internal/match"
	"github.com/mkotecha/crickwatch/internal/notify"
	"github.com/mkotecha/crickwatch/internal/poller"
	"github.com/mkotecha/crickwatch/internal/rewrite"
	"github.com/mkotecha/crickwatch/internal/scraper"
	"github.com/mkotecha/crickwatch/internal/store/memory"
	"github.com/mkotecha/crickwatch/internal/store/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App holds the assembled service graph.
type App struct {
	Config config.Config
	Logger *zap.Logger

	Poller *poller.Poller
	API    *api.Server

	pool     *pgxpool.Pool
	headless *scraper.HeadlessFetcher
	provider notify.Provider
}

// New builds the full dependency graph from cfg. The caller owns the returned
// App and must Close it.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: log}

	states, ledger, tracking, logbook, err := a.buildStores(ctx)
	if err != nil {
		return nil, err
	}

	src, pages, err := a.buildScraper()
	if err != nil {
		a.Close()
		return nil, err
	}

	notifier, err := a.buildNotifier(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	drv := engine.New(states, ledger, log)

	hooks, err := a.buildHooks(cfg, src, pages, tracking, logbook, notifier, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Poller = poller.New(
		poller.Config{Interval: cfg.PollInterval()},
		src, drv, tracking, notifier, log, hooks...,
	)
	a.API = api.NewServer(tracking, states, log)
	return a, nil
}

func (a *App) buildStores(ctx context.Context) (match.StateStore, match.EventLedger, match.TrackingStore, match.DigestLog, error) {
	cfg := a.Config
	if cfg.DB.DSN == "" {
		a.Logger.Info("no database configured, using in-memory stores")
		return memory.NewStateStore(), memory.NewEventLedger(), memory.NewTrackingStore(), memory.NewDigestLog(), nil
	}

	pool, err := postgres.Connect(ctx, postgres.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: int32(cfg.DB.MaxConns),
		MinConns: int32(cfg.DB.MinConns),
	})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connect database: %w", err)
	}
	a.pool = pool

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		a.Close()
		return nil, nil, nil, nil, fmt.Errorf("ensure schema: %w", err)
	}

	states, err := postgres.NewStateStore(pool)
	if err != nil {
		a.Close()
		return nil, nil, nil, nil, err
	}
	ledger, err := postgres.NewEventLedger(pool)
	if err != nil {
		a.Close()
		return nil, nil, nil, nil, err
	}
	tracking, err := postgres.NewTrackingStore(pool)
	if err != nil {
		a.Close()
		return nil, nil, nil, nil, err
	}
	logbook, err := postgres.NewDigestLog(pool)
	if err != nil {
		a.Close()
		return nil, nil, nil, nil, err
	}
	return states, ledger, tracking, logbook, nil
}

func (a *App) buildScraper() (*scraper.Scraper, scraper.PageFetcher, error) {
	cfg := a.Config
	fetcher := scraper.NewFetcher(scraper.FetcherConfig{
		UserAgent: cfg.Scraper.UserAgent,
		Timeout:   cfg.ScrapeTimeout(),
	})

	var headless scraper.PageFetcher
	if cfg.Headless.Enabled {
		h, err := scraper.NewHeadless(scraper.HeadlessConfig{
			UserAgent:         cfg.Scraper.UserAgent,
			MaxParallel:       cfg.Headless.MaxParallel,
			NavigationTimeout: cfg.HeadlessNavTimeout(),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build headless fetcher: %w", err)
		}
		a.headless = h
		headless = h
	}

	return scraper.New(scraper.Config{BaseURL: cfg.Scraper.BaseURL}, fetcher, headless, a.Logger), fetcher, nil
}

func (a *App) buildNotifier(ctx context.Context) (*notify.Notifier, error) {
	cfg := a.Config

	var providers []notify.Provider
	if cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegram(notify.TelegramConfig{
			BotToken:          cfg.Telegram.BotToken,
			ChatID:            cfg.Telegram.ChatID,
			MessagesPerSecond: cfg.Telegram.MessagesPerSecond,
		})
		if err != nil {
			return nil, fmt.Errorf("build telegram provider: %w", err)
		}
		providers = append(providers, tg)
	}
	if cfg.PubSub.Enabled {
		ps, err := notify.NewPubSub(ctx, notify.PubSubConfig{
			ProjectID: cfg.PubSub.ProjectID,
			TopicID:   cfg.PubSub.TopicName,
		})
		if err != nil {
			return nil, fmt.Errorf("build pubsub provider: %w", err)
		}
		a.provider = ps
		providers = append(providers, ps)
	}

	var provider notify.Provider
	switch len(providers) {
	case 0:
		a.Logger.Warn("no delivery channel configured, alerts will be dropped")
		provider = notify.Noop{}
	case 1:
		provider = providers[0]
	default:
		provider = notify.Fanout(providers)
	}

	var rewriter notify.Rewriter
	if cfg.Rewrite.GroqAPIKey != "" {
		g, err := rewrite.NewGroq(rewrite.GroqConfig{
			APIKey: cfg.Rewrite.GroqAPIKey,
			Model:  cfg.Rewrite.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("build rewriter: %w", err)
		}
		rewriter = g
	}

	return notify.New(provider, rewriter, a.Logger), nil
}

func (a *App) buildHooks(cfg config.Config, src *scraper.Scraper, pages scraper.PageFetcher, tracking match.TrackingStore, logbook match.DigestLog, notifier *notify.Notifier, log *zap.Logger) ([]poller.Hook, error) {
	var hooks []poller.Hook

	if cfg.Telegram.BotToken != "" {
		cmdSource, err := commands.NewTelegramSource(commands.TelegramSourceConfig{
			BotToken: cfg.Telegram.BotToken,
		})
		if err != nil {
			return nil, fmt.Errorf("build command source: %w", err)
		}
		handler := commands.NewHandler(cmdSource, src, tracking, notifier, log)
		hooks = append(hooks, handler.Poll)
	}

	briefing, err := digest.New(digest.Config{
		Hour:     cfg.Digest.Hour,
		TimeZone: cfg.Digest.TimeZone,
		BaseURL:  cfg.Scraper.BaseURL,
	}, pages, logbook, notifier, system.New(), log)
	if err != nil {
		return nil, fmt.Errorf("build digest: %w", err)
	}
	hooks = append(hooks, briefing.Tick)

	return hooks, nil
}

// Close releases the pool, headless browser and delivery channels.
func (a *App) Close() {
	if a.headless != nil {
		a.headless.Close()
	}
	if closer, ok := a.provider.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.Logger.Warn("provider close failed", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
