// Package match holds the core domain model for live match monitoring:
// snapshots parsed from the scoreboard, persisted per-match state, and the
// classifier that turns the two into at most one deduplicated event.
package match

import (
	"fmt"
	"strings"

	"github.com/mkotecha/crickwatch/internal/overs"
)

// Format is a coarse match format tag derived from the match name. It only
// influences which over-milestone thresholds apply.
type Format string

// Supported match formats.
const (
	FormatT20  Format = "t20"
	FormatODI  Format = "odi"
	FormatTest Format = "test"
)

// FormatFromName derives a Format from a match title.
func FormatFromName(name string) Format {
	upper := strings.ToUpper(name)
	switch {
	case strings.Contains(upper, "T20"):
		return FormatT20
	case strings.Contains(upper, "ODI"):
		return FormatODI
	default:
		return FormatTest
	}
}

// Snapshot is one freshly parsed observation of a match. It is produced by
// the scraper once per polling tick and consumed exactly once by the engine.
type Snapshot struct {
	// MatchID is the opaque stable identifier from the score provider URL.
	MatchID string
	// Name is the match title, e.g. "India vs Australia, 3rd T20I".
	Name string
	// Runs is the batting side's run count.
	Runs int
	// Wickets is the batting side's wicket count, 0-10.
	Wickets int
	// OversRaw is the native overs notation, e.g. "10.3". Never compared
	// directly; convert through overs.ToBalls.
	OversRaw string
	// StatusText is the official state line (may be empty).
	StatusText string
	// CommentaryText is the latest ball-by-ball note, used only when
	// StatusText is empty.
	CommentaryText string
	// BattingSide is a best-effort label of the side accumulating Runs.
	BattingSide string
	// TossText is the toss line from the scorecard, if scraped.
	TossText string
	// Format chooses milestone thresholds.
	Format Format
}

// Balls returns the snapshot's progress as a total ball count.
func (s Snapshot) Balls() int {
	return overs.ToBalls(s.OversRaw)
}

// EventText returns the status line, falling back to commentary.
func (s Snapshot) EventText() string {
	if s.StatusText != "" {
		return s.StatusText
	}
	return s.CommentaryText
}

// ScoreDisplay renders the human-facing score, e.g. "IND 245/3".
func (s Snapshot) ScoreDisplay() string {
	if s.BattingSide == "" {
		return fmt.Sprintf("%d/%d", s.Runs, s.Wickets)
	}
	return fmt.Sprintf("%s %d/%d", s.BattingSide, s.Runs, s.Wickets)
}

// WicketsAllOut is the terminal wicket count for an innings.
const WicketsAllOut = 10

// NeverBalls is the sentinel for "no wicket observed yet in this phase":
// one over-equivalent below any reachable ball count.
const NeverBalls = -60

// MatchState is the persisted per-match record the classifier runs against.
// LastBalls is monotonically non-decreasing within a phase; a regression
// beyond the reset window signals a new innings (see PhaseAdjust).
type MatchState struct {
	LastBalls       int
	LastWickets     int
	LastWicketBalls int
	TossAnnounced   bool
	Phase           int
	Ended           bool
}

// NewMatchState returns the initial state for a match on first observation.
func NewMatchState() MatchState {
	return MatchState{
		LastWicketBalls: NeverBalls,
		Phase:           1,
	}
}

// EventKind tags the variant of an emitted Event.
type EventKind string

// Supported event kinds, ordered here as the classifier prioritizes them.
const (
	KindWicketCollapse  EventKind = "WICKET_COLLAPSE"
	KindDoubleStrike    EventKind = "DOUBLE_STRIKE"
	KindMatchEnd        EventKind = "MATCH_END"
	KindPhaseBreak      EventKind = "PHASE_BREAK"
	KindOverMilestone   EventKind = "OVER_MILESTONE"
	KindPlayerMilestone EventKind = "PLAYER_MILESTONE"
	KindToss            EventKind = "TOSS"
)

// Event is the single notable occurrence produced by one classifier call.
// Events are immutable; only ID is persisted (in the ledger).
type Event struct {
	// ID is the deterministic ledger key: matchID + kind + discriminant.
	ID      string
	MatchID string
	Kind    EventKind

	// MatchName and the display fields below feed the delivery renderer.
	MatchName    string
	ScoreDisplay string
	OversDisplay string
	Text         string

	// Threshold and RunRate are set for over milestones.
	Threshold int
	RunRate   float64

	// Milestone is "50" or "100" for player milestones; Fast marks an
	// unusually quick one.
	Milestone string
	Fast      bool
}
