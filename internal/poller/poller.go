// Package poller runs the monitoring cycle: discover live matches, snapshot
// each tracked one, classify, and deliver whatever fires. One bad match
// never takes down the cycle.
package poller

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mkotecha/crickwatch/internal/match"
	"github.com/mkotecha/crickwatch/internal/metrics"
	"github.com/mkotecha/crickwatch/internal/scraper"
)

// Config controls the polling loop.
type Config struct {
	Interval time.Duration
}

// Engine is the classification driver surface. The bool reports that the
// match is terminally over, even when no event accompanies it.
type Engine interface {
	Process(ctx context.Context, snap match.Snapshot) (*match.Event, bool, error)
}

// Source is the scraper surface the poller needs.
type Source interface {
	LiveMatches(ctx context.Context) ([]scraper.MatchLink, error)
	Snapshot(ctx context.Context, link scraper.MatchLink) (match.Snapshot, error)
	TossText(ctx context.Context, link scraper.MatchLink) string
}

// Publisher delivers detected events.
type Publisher interface {
	Publish(ctx context.Context, ev match.Event) error
}

// Hook runs at the top of each cycle (command handling, daily digest).
type Hook func(ctx context.Context) error

// Poller owns the monitoring loop.
type Poller struct {
	cfg      Config
	source   Source
	engine   Engine
	tracking match.TrackingStore
	notifier Publisher
	hooks    []Hook
	log      *zap.Logger
}

// New wires the poller.
func New(cfg Config, source Source, engine Engine, tracking match.TrackingStore, notifier Publisher, log *zap.Logger, hooks ...Hook) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	return &Poller{
		cfg:      cfg,
		source:   source,
		engine:   engine,
		tracking: tracking,
		notifier: notifier,
		hooks:    hooks,
		log:      log.Named("poller"),
	}
}

// Run ticks immediately and then on the configured interval until the
// context ends.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := p.Tick(ctx); err != nil {
			p.log.Error("poll cycle failed", zap.Error(err))
			metrics.ObservePoll("error")
		} else {
			metrics.ObservePoll("ok")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick executes one full cycle.
func (p *Poller) Tick(ctx context.Context) error {
	for _, hook := range p.hooks {
		if err := hook(ctx); err != nil {
			p.log.Warn("cycle hook failed", zap.Error(err))
		}
	}

	links, err := p.source.LiveMatches(ctx)
	if err != nil {
		metrics.ObserveScrapeError("index")
		return fmt.Errorf("discover live matches: %w", err)
	}
	metrics.SetActiveMatches(len(links))

	for _, link := range links {
		if err := p.processMatch(ctx, link); err != nil {
			p.log.Warn("match poll failed",
				zap.String("match_id", link.MatchID),
				zap.String("name", link.Name),
				zap.Error(err),
			)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

func (p *Poller) processMatch(ctx context.Context, link scraper.MatchLink) error {
	// New discoveries default to tracked; the operator mutes explicitly.
	if err := p.tracking.Upsert(ctx, match.TrackedMatch{MatchID: link.MatchID, Name: link.Name, Active: true}); err != nil {
		return fmt.Errorf("upsert tracking: %w", err)
	}
	active, err := p.tracking.IsActive(ctx, link.MatchID)
	if err != nil {
		return fmt.Errorf("check tracking: %w", err)
	}
	if !active {
		return nil
	}

	snap, err := p.source.Snapshot(ctx, link)
	if err != nil {
		metrics.ObserveScrapeError("match")
		return fmt.Errorf("snapshot: %w", err)
	}
	snap.TossText = p.source.TossText(ctx, link)

	metrics.ObserveSnapshot()
	ev, ended, err := p.engine.Process(ctx, snap)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	if ev != nil {
		metrics.ObserveEvent(string(ev.Kind))
		start := time.Now()
		if err := p.notifier.Publish(ctx, *ev); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
		metrics.ObserveNotifySend(time.Since(start))
	}

	// A concluded match drops out of tracking so later polls skip it before
	// fetching anything. Driven by the engine's terminal flag rather than the
	// event kind: a match discovered already finished ends silently.
	if ended {
		if err := p.tracking.SetActive(ctx, link.MatchID, false); err != nil {
			p.log.Warn("mute finished match failed", zap.String("match_id", link.MatchID), zap.Error(err))
		}
	}
	return nil
}
