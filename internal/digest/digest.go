// Package digest sends the once-a-day schedule briefing: today's
// international fixtures, scraped from the provider's schedule page.
package digest

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/mkotecha/crickwatch/internal/match"
	"github.com/mkotecha/crickwatch/internal/notify"
	"github.com/mkotecha/crickwatch/internal/scraper"
)

const separator = "—————————————————"

// Config controls when and where the briefing runs.
type Config struct {
	// Hour is the local hour (0-23) the briefing goes out.
	Hour int
	// TimeZone anchors "today"; the audience is IST by default.
	TimeZone     string
	BaseURL      string
	SchedulePath string
}

// Announcer delivers the briefing text.
type Announcer interface {
	Announce(ctx context.Context, text string) error
}

// Digest owns the daily briefing cycle.
type Digest struct {
	cfg      Config
	loc      *time.Location
	fetcher  scraper.PageFetcher
	logbook  match.DigestLog
	announce Announcer
	clock    match.Clock
	log      *zap.Logger
}

// New wires the digest. The configured time zone must resolve.
func New(cfg Config, fetcher scraper.PageFetcher, logbook match.DigestLog, announce Announcer, clock match.Clock, log *zap.Logger) (*Digest, error) {
	if cfg.TimeZone == "" {
		cfg.TimeZone = "Asia/Kolkata"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.cricbuzz.com"
	}
	if cfg.SchedulePath == "" {
		cfg.SchedulePath = "/cricket-schedule"
	}
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load digest time zone: %w", err)
	}
	return &Digest{
		cfg:      cfg,
		loc:      loc,
		fetcher:  fetcher,
		logbook:  logbook,
		announce: announce,
		clock:    clock,
		log:      log.Named("digest"),
	}, nil
}

// Tick sends the briefing if the local hour matches and today's was not sent
// yet. Called from the main poll loop; cheap when out of window.
func (d *Digest) Tick(ctx context.Context) error {
	now := d.clock.Now().In(d.loc)
	if now.Hour() != d.cfg.Hour {
		return nil
	}
	date := now.Format("2006-01-02")
	sent, err := d.logbook.Sent(ctx, date)
	if err != nil {
		return fmt.Errorf("check digest log: %w", err)
	}
	if sent {
		return nil
	}

	body, err := d.fetcher.Fetch(ctx, d.cfg.BaseURL+d.cfg.SchedulePath)
	if err != nil {
		return fmt.Errorf("fetch schedule: %w", err)
	}
	fixtures, err := ParseSchedule(body, now)
	if err != nil {
		return fmt.Errorf("parse schedule: %w", err)
	}

	if err := d.announce.Announce(ctx, RenderBriefing(fixtures, now)); err != nil {
		return fmt.Errorf("send briefing: %w", err)
	}
	if err := d.logbook.MarkSent(ctx, date); err != nil {
		return fmt.Errorf("mark digest sent: %w", err)
	}
	d.log.Info("daily briefing sent", zap.String("date", date), zap.Int("fixtures", len(fixtures)))
	return nil
}

// ParseSchedule extracts today's international fixtures from the schedule
// page. Blocks are keyed by an uppercase "MON JAN 02" style date strip.
func ParseSchedule(body []byte, now time.Time) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	today := strings.ToUpper(now.Format("Mon Jan 02"))

	var fixtures []string
	doc.Find("div.cb-schdl").Each(func(_ int, block *goquery.Selection) {
		header := block.Find("div.cb-lv-grn-strip").First()
		if header.Length() == 0 || !strings.Contains(strings.ToUpper(header.Text()), today) {
			return
		}
		block.Next().Find("div.cb-ovr-flo").Each(func(_ int, m *goquery.Selection) {
			info := strings.TrimSpace(m.Text())
			if info != "" && scraper.IsInternational(info) {
				fixtures = append(fixtures, info)
			}
		})
	})
	return fixtures, nil
}

// RenderBriefing formats the briefing message.
func RenderBriefing(fixtures []string, now time.Time) string {
	if len(fixtures) == 0 {
		return "No international matches scheduled for today."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📅 *TODAY'S INTERNATIONAL SCHEDULE*\n%s\n_%s_\n\n", separator, now.Format("02 January 2006"))
	for _, f := range fixtures {
		fmt.Fprintf(&b, "• %s\n", f)
	}
	fmt.Fprintf(&b, "\n🖼 [Tap for Series Graphics](%s)\n%s\n🔔 *Keep notifications ON for live updates!*",
		notify.ImageSearchLink("Cricket Schedule"), separator)
	return b.String()
}
