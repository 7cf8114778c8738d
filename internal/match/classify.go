package match

import (
	"github.com/mkotecha/crickwatch/internal/overs"
)

// Classifier tuning constants, all expressed in balls so that overs
// notation never leaks into a comparison.
const (
	// collapseWickets is the counter value that constitutes an early collapse.
	collapseWickets = 3
	// collapseWindowBalls bounds how early the collapse must happen (6 overs).
	collapseWindowBalls = 36
	// doubleStrikeWindowBalls is the maximum gap between two wickets for a
	// double strike (one over).
	doubleStrikeWindowBalls = 6
	// regressionBalls is the backwards jump (5 overs) that signals a new
	// innings rather than scoreboard noise.
	regressionBalls = 30
)

// Over-milestone thresholds per format, in completed overs. Short formats
// alert frequently; long formats every ten overs.
var (
	shortFormatMilestones = []int{6, 10, 15, 20}
	longFormatMilestones  = []int{10, 20, 30, 40, 50, 60, 70, 80, 90}
)

// MilestonesFor returns the ordered over thresholds for a format.
func MilestonesFor(f Format) []int {
	if f == FormatT20 {
		return shortFormatMilestones
	}
	return longFormatMilestones
}

// PhaseAdjust applies the innings-reset rule: a regression of at least
// regressionBalls means a new phase began, so progress and wicket tracking
// restart before classification. It returns the adjusted state and whether
// a reset occurred.
func PhaseAdjust(state MatchState, curBalls int) (MatchState, bool) {
	if state.Phase == 0 {
		state.Phase = 1
	}
	if curBalls-state.LastBalls <= -regressionBalls {
		state.LastBalls = 0
		state.LastWickets = 0
		state.LastWicketBalls = NeverBalls
		state.Phase++
		return state, true
	}
	return state, false
}

// FiredFunc reports whether an event identifier is already in the ledger.
// The classifier only reads through it; marking is the driver's job.
type FiredFunc func(eventID string) bool

// Outcome is the result of one classifier call.
type Outcome struct {
	// Event is the single event to emit, or nil.
	Event *Event
	// SeedIDs are identifiers to pre-mark as fired (cold start only), so a
	// newly discovered match does not replay its history as notifications.
	SeedIDs []string
	// Next is the state to persist for the match.
	Next MatchState
}

// Classify evaluates one snapshot against the (phase-adjusted) state and
// returns at most one candidate event. It is a total function: malformed
// fields degrade to safe defaults and it never partially applies state.
//
// The priority cascade runs top to bottom; the first matching candidate not
// yet in the ledger wins. The wicket check always runs first regardless of
// outcome because it must update LastWicketBalls as a side effect.
func Classify(snap Snapshot, state MatchState, coldStart bool, fired FiredFunc) Outcome {
	curBalls := snap.Balls()
	if snap.Runs < 0 {
		snap.Runs = 0
	}
	if snap.Wickets < 0 {
		snap.Wickets = 0
	}
	if snap.Wickets > WicketsAllOut {
		snap.Wickets = WicketsAllOut
	}

	next := state
	next.LastBalls = curBalls
	next.LastWickets = snap.Wickets

	resultWord, isOver := ResultPhrase(snap.StatusText)
	isBreak := (snap.Wickets == WicketsAllOut && !isOver) || IsBreakText(snap.StatusText)

	if coldStart {
		return seedColdStart(snap, next, curBalls, resultWord, isOver, isBreak)
	}

	var chosen *Event

	// (a) Secondary-counter change. At most one of collapse/double strike,
	// decided by condition; the window bookkeeping happens either way.
	if snap.Wickets > state.LastWickets {
		switch {
		case snap.Wickets == collapseWickets && curBalls <= collapseWindowBalls && state.LastWickets < collapseWickets:
			chosen = pickUnfired(chosen, fired, collapseEvent(snap))
		case state.LastWicketBalls > 0 && curBalls-state.LastWicketBalls <= doubleStrikeWindowBalls && snap.Wickets > 1:
			chosen = pickUnfired(chosen, fired, doubleStrikeEvent(snap))
		}
		next.LastWicketBalls = curBalls
	}

	// (b) Match end. Ended persists only once the result id is in the ledger:
	// when a wicket event wins this tick the result is deferred, not lost,
	// and fires on the next poll of the same scoreboard.
	if isOver && chosen == nil {
		chosen = pickUnfired(nil, fired, endEvent(snap, resultWord))
		next.Ended = true
	}

	// (c) Phase break.
	if !isOver && isBreak {
		chosen = pickUnfired(chosen, fired, breakEvent(snap))
	}

	// (d) Over milestone: only the first newly straddled threshold fires;
	// thresholds skipped by a sparse poll are never backfilled.
	if !isOver {
		for _, m := range MilestonesFor(snap.Format) {
			if state.LastBalls < m*overs.BallsPerOver && curBalls >= m*overs.BallsPerOver {
				chosen = pickUnfired(chosen, fired, milestoneEvent(snap, m, curBalls))
				break
			}
		}
	}

	// (e) Player milestone: skipped entirely when anything above fired.
	if chosen == nil && !isOver {
		if ms, fast, ok := PlayerMilestone(snap.EventText()); ok {
			chosen = pickUnfired(chosen, fired, playerEvent(snap, ms, fast))
		}
	}

	// (f) Toss, routed through the same ledger-gated pattern. TossAnnounced
	// only flips when the announcement actually goes out.
	if chosen == nil && snap.TossText != "" && !state.TossAnnounced {
		if ev := pickUnfired(nil, fired, tossEvent(snap)); ev != nil {
			chosen = ev
			next.TossAnnounced = true
		}
	}

	return Outcome{Event: chosen, Next: next}
}

// seedColdStart computes which identifiers would already count as fired for
// a match discovered mid-flight, emitting nothing.
func seedColdStart(snap Snapshot, next MatchState, curBalls int, resultWord string, isOver, isBreak bool) Outcome {
	var seed []string

	if isOver {
		seed = append(seed, EndEventID(snap.MatchID, resultWord))
		next.Ended = true
	}
	if isBreak {
		seed = append(seed, BreakEventID(snap.MatchID, snap.Runs))
	}
	if snap.Wickets >= collapseWickets {
		seed = append(seed, CollapseEventID(snap.MatchID))
	}
	for _, m := range MilestonesFor(snap.Format) {
		if curBalls >= m*overs.BallsPerOver {
			seed = append(seed, OverMilestoneEventID(snap.MatchID, m, snap.Runs))
		}
	}
	if _, _, ok := PlayerMilestone(snap.EventText()); ok {
		seed = append(seed, PlayerMilestoneEventID(snap.MatchID, snap.EventText()))
	}
	if snap.TossText != "" {
		seed = append(seed, TossEventID(snap.MatchID))
		next.TossAnnounced = true
	}
	if snap.Wickets > 0 {
		next.LastWicketBalls = curBalls
	}
	return Outcome{SeedIDs: seed, Next: next}
}

// pickUnfired keeps an already chosen candidate, otherwise admits the new
// one if its identifier is not in the ledger.
func pickUnfired(chosen *Event, fired FiredFunc, candidate Event) *Event {
	if chosen != nil {
		return chosen
	}
	if fired != nil && fired(candidate.ID) {
		return nil
	}
	return &candidate
}

func baseEvent(snap Snapshot, kind EventKind, id string) Event {
	return Event{
		ID:           id,
		MatchID:      snap.MatchID,
		Kind:         kind,
		MatchName:    snap.Name,
		ScoreDisplay: snap.ScoreDisplay(),
		OversDisplay: overs.Display(snap.Balls()),
		Text:         snap.EventText(),
	}
}

func collapseEvent(snap Snapshot) Event {
	return baseEvent(snap, KindWicketCollapse, CollapseEventID(snap.MatchID))
}

func doubleStrikeEvent(snap Snapshot) Event {
	return baseEvent(snap, KindDoubleStrike, DoubleStrikeEventID(snap.MatchID, snap.Wickets))
}

func endEvent(snap Snapshot, phrase string) Event {
	ev := baseEvent(snap, KindMatchEnd, EndEventID(snap.MatchID, phrase))
	ev.Text = snap.StatusText
	return ev
}

func breakEvent(snap Snapshot) Event {
	return baseEvent(snap, KindPhaseBreak, BreakEventID(snap.MatchID, snap.Runs))
}

func milestoneEvent(snap Snapshot, threshold, curBalls int) Event {
	ev := baseEvent(snap, KindOverMilestone, OverMilestoneEventID(snap.MatchID, threshold, snap.Runs))
	ev.Threshold = threshold
	ev.RunRate = overs.RunRate(snap.Runs, curBalls)
	return ev
}

func playerEvent(snap Snapshot, milestone string, fast bool) Event {
	ev := baseEvent(snap, KindPlayerMilestone, PlayerMilestoneEventID(snap.MatchID, snap.EventText()))
	ev.Milestone = milestone
	ev.Fast = fast
	return ev
}

func tossEvent(snap Snapshot) Event {
	ev := baseEvent(snap, KindToss, TossEventID(snap.MatchID))
	ev.Text = snap.TossText
	return ev
}
