package scraper

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mkotecha/crickwatch/internal/match"
)

// PageFetcher retrieves one URL's body.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Config controls the scraper facade.
type Config struct {
	BaseURL   string
	IndexPath string
}

// Scraper combines the plain fetcher, the headless fallback and the parsers
// into the poller-facing surface.
type Scraper struct {
	cfg      Config
	fetcher  PageFetcher
	headless PageFetcher
	log      *zap.Logger
}

// New builds a Scraper. headless may be nil to disable promotion.
func New(cfg Config, fetcher, headless PageFetcher, log *zap.Logger) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.cricbuzz.com"
	}
	if cfg.IndexPath == "" {
		cfg.IndexPath = "/cricket-match/live-scores"
	}
	return &Scraper{
		cfg:      cfg,
		fetcher:  fetcher,
		headless: headless,
		log:      log.Named("scraper"),
	}
}

// LiveMatches fetches the index page and returns live international fixtures.
func (s *Scraper) LiveMatches(ctx context.Context) ([]MatchLink, error) {
	body, err := s.fetcher.Fetch(ctx, s.cfg.BaseURL+s.cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("fetch live index: %w", err)
	}
	links, err := ParseMatchLinks(body, s.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse live index: %w", err)
	}
	return links, nil
}

// Snapshot fetches and parses one match page, promoting to a rendered fetch
// when the plain body has no score block.
func (s *Scraper) Snapshot(ctx context.Context, link MatchLink) (match.Snapshot, error) {
	body, err := s.fetcher.Fetch(ctx, link.URL)
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("fetch match page: %w", err)
	}
	snap, ok, err := ParseSnapshot(body, link.MatchID, link.Name)
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("parse match page: %w", err)
	}
	if ok {
		return snap, nil
	}
	if s.headless == nil {
		return match.Snapshot{}, fmt.Errorf("no score block on %s", link.URL)
	}

	s.log.Debug("promoting to headless fetch", zap.String("url", link.URL))
	body, err = s.headless.Fetch(ctx, link.URL)
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("headless match page: %w", err)
	}
	snap, ok, err = ParseSnapshot(body, link.MatchID, link.Name)
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("parse rendered page: %w", err)
	}
	if !ok {
		return match.Snapshot{}, fmt.Errorf("no score block on rendered %s", link.URL)
	}
	return snap, nil
}

// TossText fetches the scorecard page and returns its toss line, or "".
// Failures are soft: the toss is decoration, not state.
func (s *Scraper) TossText(ctx context.Context, link MatchLink) string {
	body, err := s.fetcher.Fetch(ctx, ScorecardURL(link.URL))
	if err != nil {
		s.log.Debug("toss fetch failed", zap.String("match_id", link.MatchID), zap.Error(err))
		return ""
	}
	toss, err := ParseTossText(body)
	if err != nil {
		return ""
	}
	return toss
}
