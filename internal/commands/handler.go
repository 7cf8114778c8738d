// Package commands processes operator commands from the control chat:
// listing live fixtures, toggling tracking, and on-demand scores.
package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mkotecha/crickwatch/internal/match"
	"github.com/mkotecha/crickwatch/internal/scraper"
)

const separator = "—————————————————"

// maxScoreSummaries caps the fixtures shown by /score.
const maxScoreSummaries = 5

// MatchLister is the scraper surface the handler needs.
type MatchLister interface {
	LiveMatches(ctx context.Context) ([]scraper.MatchLink, error)
	Snapshot(ctx context.Context, link scraper.MatchLink) (match.Snapshot, error)
}

// Replier sends handler responses back to the chat.
type Replier interface {
	Announce(ctx context.Context, text string) error
}

// Handler polls the command source and executes commands.
type Handler struct {
	source   Source
	matches  MatchLister
	tracking match.TrackingStore
	replier  Replier
	log      *zap.Logger

	lastUpdateID int64
}

// NewHandler wires the handler.
func NewHandler(source Source, matches MatchLister, tracking match.TrackingStore, replier Replier, log *zap.Logger) *Handler {
	return &Handler{
		source:   source,
		matches:  matches,
		tracking: tracking,
		replier:  replier,
		log:      log.Named("commands"),
	}
}

// Poll drains pending updates and handles each command. Individual command
// failures are logged and skipped so one bad update cannot wedge the queue.
func (h *Handler) Poll(ctx context.Context) error {
	updates, err := h.source.Updates(ctx, h.lastUpdateID)
	if err != nil {
		return fmt.Errorf("poll commands: %w", err)
	}
	for _, u := range updates {
		h.lastUpdateID = u.ID
		if err := h.handle(ctx, strings.TrimSpace(u.Text)); err != nil {
			h.log.Warn("command failed", zap.String("text", u.Text), zap.Error(err))
		}
	}
	return nil
}

func (h *Handler) handle(ctx context.Context, text string) error {
	switch {
	case strings.HasPrefix(text, "/tracklist"):
		return h.trackList(ctx)
	case strings.HasPrefix(text, "/track"):
		return h.setTracking(ctx, text, true)
	case strings.HasPrefix(text, "/stop"):
		return h.setTracking(ctx, text, false)
	case strings.HasPrefix(text, "/score"):
		return h.scoreSummary(ctx)
	default:
		return nil
	}
}

func (h *Handler) trackList(ctx context.Context) error {
	links, err := h.matches.LiveMatches(ctx)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return h.replier.Announce(ctx, "📭 No LIVE international matches found right now.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 *TRACKING MANAGER*\n%s\n", separator)
	for i, link := range links {
		status := "✅ Tracking"
		if muted, err := h.isMuted(ctx, link.MatchID); err != nil {
			return err
		} else if muted {
			status = "❌ Muted"
		}
		fmt.Fprintf(&b, "*%d.* %s\nStatus: %s\nToggle: `/track %d` or `/stop %d`\n\n",
			i+1, link.Name, status, i+1, i+1)
	}
	return h.replier.Announce(ctx, b.String())
}

// isMuted treats an untracked match as active, matching the poller's default
// of tracking everything it discovers.
func (h *Handler) isMuted(ctx context.Context, matchID string) (bool, error) {
	list, err := h.tracking.List(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range list {
		if m.MatchID == matchID {
			return !m.Active, nil
		}
	}
	return false, nil
}

func (h *Handler) setTracking(ctx context.Context, text string, active bool) error {
	fields := strings.Fields(text)
	idx, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return h.replier.Announce(ctx, "⚠️ Invalid ID.")
	}
	links, err := h.matches.LiveMatches(ctx)
	if err != nil {
		return err
	}
	if idx < 1 || idx > len(links) {
		return h.replier.Announce(ctx, "⚠️ Invalid ID.")
	}
	link := links[idx-1]

	if err := h.tracking.Upsert(ctx, match.TrackedMatch{MatchID: link.MatchID, Name: link.Name, Active: active}); err != nil {
		return err
	}
	if err := h.tracking.SetActive(ctx, link.MatchID, active); err != nil {
		return err
	}
	if active {
		return h.replier.Announce(ctx, fmt.Sprintf("✅ Now tracking: *%s*", link.Name))
	}
	return h.replier.Announce(ctx, fmt.Sprintf("❌ Muted: *%s*", link.Name))
}

func (h *Handler) scoreSummary(ctx context.Context) error {
	if err := h.replier.Announce(ctx, "🏏 *Fetching live matches...*"); err != nil {
		return err
	}
	links, err := h.matches.LiveMatches(ctx)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return h.replier.Announce(ctx, "⚠️ There are no international matches on the board right now.")
	}
	if len(links) > maxScoreSummaries {
		links = links[:maxScoreSummaries]
	}

	var lines []string
	for _, link := range links {
		lines = append(lines, fmt.Sprintf("🔹 *%s*\n%s", link.Name, h.instantScore(ctx, link)))
	}
	return h.replier.Announce(ctx,
		fmt.Sprintf("🏆 *LIVE INTERNATIONALS* 🏆\n%s\n%s", separator, strings.Join(lines, "\n\n")))
}

func (h *Handler) instantScore(ctx context.Context, link scraper.MatchLink) string {
	snap, err := h.matches.Snapshot(ctx, link)
	if err != nil {
		return "Error loading score"
	}
	score := fmt.Sprintf("📊 %d-%d (%s overs)", snap.Runs, snap.Wickets, snap.OversRaw)
	text := snap.EventText()
	if text == "" {
		return score
	}
	if _, over := match.ResultPhrase(text); over {
		return fmt.Sprintf("%s\n🎯 *Result:* %s", score, text)
	}
	return fmt.Sprintf("%s\n🔥 *Latest:* %s", score, text)
}
