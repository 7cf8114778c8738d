package match

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// firedSet is a test stand-in for the ledger predicate.
type firedSet map[string]bool

func (f firedSet) fn() FiredFunc {
	return func(id string) bool { return f[id] }
}

func (f firedSet) markOutcome(out Outcome) {
	if out.Event != nil {
		f[out.Event.ID] = true
	}
	for _, id := range out.SeedIDs {
		f[id] = true
	}
}

func snapshot(mutate func(*Snapshot)) Snapshot {
	s := Snapshot{
		MatchID:  "m1",
		Name:     "IND vs AUS, 1st Test",
		OversRaw: "0.0",
		Format:   FormatTest,
	}
	if mutate != nil {
		mutate(&s)
	}
	return s
}

func TestClassifyWicketCollapse(t *testing.T) {
	t.Parallel()

	fired := firedSet{}
	state := NewMatchState()
	state.LastBalls = 30
	state.LastWickets = 2
	state.LastWicketBalls = 20

	snap := snapshot(func(s *Snapshot) {
		s.Runs = 40
		s.Wickets = 3
		s.OversRaw = "5.2"
	})

	out := Classify(snap, state, false, fired.fn())
	require.NotNil(t, out.Event)
	require.Equal(t, KindWicketCollapse, out.Event.Kind)
	require.Equal(t, "m1|COLLAPSE|3WK", out.Event.ID)
	require.Equal(t, 32, out.Next.LastWicketBalls)
	require.Equal(t, 3, out.Next.LastWickets)
}

func TestClassifyCollapseOutsideEarlyWindow(t *testing.T) {
	t.Parallel()

	state := NewMatchState()
	state.LastBalls = 200
	state.LastWickets = 2
	state.LastWicketBalls = 100

	// Third wicket in the 35th over: no collapse, and the last wicket was
	// too long ago for a double strike.
	snap := snapshot(func(s *Snapshot) {
		s.Runs = 150
		s.Wickets = 3
		s.OversRaw = "34.4"
	})

	out := Classify(snap, state, false, firedSet{}.fn())
	require.Nil(t, out.Event)
	require.Equal(t, 208, out.Next.LastWicketBalls, "wicket bookkeeping still runs")
}

func TestClassifyDoubleStrike(t *testing.T) {
	t.Parallel()

	state := NewMatchState()
	state.LastBalls = 60
	state.LastWickets = 4
	state.LastWicketBalls = 58

	snap := snapshot(func(s *Snapshot) {
		s.Runs = 80
		s.Wickets = 5
		s.OversRaw = "10.4"
	})

	out := Classify(snap, state, false, firedSet{}.fn())
	require.NotNil(t, out.Event)
	require.Equal(t, KindDoubleStrike, out.Event.Kind)
	require.Equal(t, "m1|DOUBLE_STRIKE|5", out.Event.ID)
}

func TestClassifyDoubleStrikeWindowUsesBalls(t *testing.T) {
	t.Parallel()

	// 9.5 to 10.4 is five balls apart in ball arithmetic even though the
	// raw notation differs by 0.9.
	state := NewMatchState()
	state.LastBalls = 59
	state.LastWickets = 2
	state.LastWicketBalls = 59

	snap := snapshot(func(s *Snapshot) {
		s.Wickets = 3
		s.OversRaw = "10.4"
	})

	out := Classify(snap, state, false, firedSet{}.fn())
	require.NotNil(t, out.Event)
	require.Equal(t, KindDoubleStrike, out.Event.Kind)
}

func TestClassifyMatchEndBeatsMilestone(t *testing.T) {
	t.Parallel()

	state := NewMatchState()
	state.LastBalls = 295
	state.LastWickets = 7

	// Crosses the 50-over threshold and declares a result in one poll.
	snap := snapshot(func(s *Snapshot) {
		s.Runs = 280
		s.Wickets = 7
		s.OversRaw = "50.0"
		s.StatusText = "India won by 3 wickets"
	})

	out := Classify(snap, state, false, firedSet{}.fn())
	require.NotNil(t, out.Event)
	require.Equal(t, KindMatchEnd, out.Event.Kind)
	require.True(t, out.Next.Ended)
}

// TestClassifyResultDeferredBehindFinalWicket: when the last wicket and the
// result line land in one poll, the wicket event wins and Ended must not be
// set, so the result still fires on the following call.
func TestClassifyResultDeferredBehindFinalWicket(t *testing.T) {
	t.Parallel()

	fired := firedSet{}
	state := NewMatchState()
	state.LastBalls = 184
	state.LastWickets = 9
	state.LastWicketBalls = 184

	snap := snapshot(func(s *Snapshot) {
		s.Runs = 155
		s.Wickets = 10
		s.OversRaw = "31.0"
		s.StatusText = "Australia won by 57 runs"
	})

	out := Classify(snap, state, false, fired.fn())
	require.NotNil(t, out.Event)
	require.Equal(t, KindDoubleStrike, out.Event.Kind)
	require.False(t, out.Next.Ended, "deferred result must not retire the match")
	fired.markOutcome(out)

	// Same scoreboard one poll later: the result goes out and the match ends.
	out = Classify(snap, out.Next, false, fired.fn())
	require.NotNil(t, out.Event)
	require.Equal(t, KindMatchEnd, out.Event.Kind)
	require.True(t, out.Next.Ended)
	fired.markOutcome(out)

	// And only once.
	out = Classify(snap, out.Next, false, fired.fn())
	require.Nil(t, out.Event)
	require.True(t, out.Next.Ended)
}

func TestClassifyPhaseBreakOnAllOut(t *testing.T) {
	t.Parallel()

	state := NewMatchState()
	state.LastBalls = 280
	state.LastWickets = 9
	state.LastWicketBalls = 230

	snap := snapshot(func(s *Snapshot) {
		s.Runs = 243
		s.Wickets = 10
		s.OversRaw = "47.1"
	})

	out := Classify(snap, state, false, firedSet{}.fn())
	require.NotNil(t, out.Event)
	require.Equal(t, KindPhaseBreak, out.Event.Kind)
	require.Equal(t, "m1|BREAK|243", out.Event.ID)
}

func TestClassifyMilestoneSkipNotBackfill(t *testing.T) {
	t.Parallel()

	fired := firedSet{}
	state := NewMatchState()
	state.LastBalls = 58

	// A sparse poll jumps from over 9.4 to over 12.0, straddling only the
	// 10-over threshold in the long-format list.
	snap := snapshot(func(s *Snapshot) {
		s.Runs = 70
		s.OversRaw = "12.0"
	})

	out := Classify(snap, state, false, fired.fn())
	require.NotNil(t, out.Event)
	require.Equal(t, KindOverMilestone, out.Event.Kind)
	require.Equal(t, 10, out.Event.Threshold)
	fired.markOutcome(out)

	// A bigger jump straddling 20, 30 and 40 fires only the smallest.
	state = out.Next
	snap2 := snapshot(func(s *Snapshot) {
		s.Runs = 260
		s.OversRaw = "41.3"
	})
	out2 := Classify(snap2, state, false, fired.fn())
	require.NotNil(t, out2.Event)
	require.Equal(t, 20, out2.Event.Threshold)
	fired.markOutcome(out2)

	// The skipped 30 and 40 are never backfilled on the next poll.
	state = out2.Next
	snap3 := snapshot(func(s *Snapshot) {
		s.Runs = 265
		s.OversRaw = "41.5"
	})
	out3 := Classify(snap3, state, false, fired.fn())
	require.Nil(t, out3.Event)
}

func TestClassifyShortFormatThresholds(t *testing.T) {
	t.Parallel()

	state := NewMatchState()
	state.LastBalls = 35

	snap := snapshot(func(s *Snapshot) {
		s.Name = "IND vs AUS, 3rd T20I"
		s.Format = FormatT20
		s.Runs = 55
		s.OversRaw = "6.0"
	})

	out := Classify(snap, state, false, firedSet{}.fn())
	require.NotNil(t, out.Event)
	require.Equal(t, KindOverMilestone, out.Event.Kind)
	require.Equal(t, 6, out.Event.Threshold)
	require.InDelta(t, 9.17, out.Event.RunRate, 0.01)
}

func TestClassifyIdempotentAgainstLedger(t *testing.T) {
	t.Parallel()

	fired := firedSet{}
	state := NewMatchState()
	state.LastBalls = 58

	snap := snapshot(func(s *Snapshot) {
		s.Runs = 70
		s.OversRaw = "10.0"
	})

	first := Classify(snap, state, false, fired.fn())
	require.NotNil(t, first.Event)
	fired.markOutcome(first)

	// Identical inputs with the id now marked: silent.
	second := Classify(snap, state, false, fired.fn())
	require.Nil(t, second.Event)
}

func TestClassifyPlayerMilestoneSkippedWhenHigherPriorityFires(t *testing.T) {
	t.Parallel()

	state := NewMatchState()
	state.LastBalls = 58
	state.LastWickets = 1

	snap := snapshot(func(s *Snapshot) {
		s.Runs = 72
		s.Wickets = 1
		s.OversRaw = "10.0"
		s.CommentaryText = "Gill brings up a fine fifty off 38 balls"
	})

	out := Classify(snap, state, false, firedSet{}.fn())
	require.NotNil(t, out.Event)
	require.Equal(t, KindOverMilestone, out.Event.Kind, "milestone text must not preempt the cascade")
}

func TestClassifyPlayerMilestoneFires(t *testing.T) {
	t.Parallel()

	fired := firedSet{}
	state := NewMatchState()
	state.LastBalls = 62
	state.LastWickets = 1

	snap := snapshot(func(s *Snapshot) {
		s.Runs = 80
		s.Wickets = 1
		s.OversRaw = "10.4"
		s.CommentaryText = "Gill brings up a fine fifty off 24 balls"
	})

	out := Classify(snap, state, false, fired.fn())
	require.NotNil(t, out.Event)
	require.Equal(t, KindPlayerMilestone, out.Event.Kind)
	require.Equal(t, "50", out.Event.Milestone)
	require.True(t, out.Event.Fast)
	fired.markOutcome(out)

	// Same commentary on the next poll: suppressed by the text digest.
	out2 := Classify(snap, out.Next, false, fired.fn())
	require.Nil(t, out2.Event)
}

func TestClassifyToss(t *testing.T) {
	t.Parallel()

	fired := firedSet{}
	state := NewMatchState()

	snap := snapshot(func(s *Snapshot) {
		s.TossText = "India won the toss and elected to bat"
	})

	out := Classify(snap, state, false, fired.fn())
	require.NotNil(t, out.Event)
	require.Equal(t, KindToss, out.Event.Kind)
	require.True(t, out.Next.TossAnnounced)
	fired.markOutcome(out)

	out2 := Classify(snap, out.Next, false, fired.fn())
	require.Nil(t, out2.Event)
}

func TestClassifyColdStartSilence(t *testing.T) {
	t.Parallel()

	fired := firedSet{}
	state := NewMatchState()

	// Already deep into the innings: five down, past two long-format
	// thresholds, a milestone in the commentary, toss known.
	snap := snapshot(func(s *Snapshot) {
		s.Runs = 180
		s.Wickets = 5
		s.OversRaw = "23.4"
		s.CommentaryText = "Rahul raises his fifty off 48 balls"
		s.TossText = "India won the toss and elected to bat"
	})

	out := Classify(snap, state, true, fired.fn())
	require.Nil(t, out.Event, "cold start must be silent")
	require.Contains(t, out.SeedIDs, CollapseEventID("m1"))
	require.Contains(t, out.SeedIDs, OverMilestoneEventID("m1", 10, 180))
	require.Contains(t, out.SeedIDs, OverMilestoneEventID("m1", 20, 180))
	require.Contains(t, out.SeedIDs, PlayerMilestoneEventID("m1", snap.EventText()))
	require.Contains(t, out.SeedIDs, TossEventID("m1"))
	require.True(t, out.Next.TossAnnounced)
	require.Equal(t, 142, out.Next.LastBalls)
	fired.markOutcome(out)

	// The same snapshot on the next (warm) poll emits nothing either.
	out2 := Classify(snap, out.Next, false, fired.fn())
	require.Nil(t, out2.Event)
}

func TestClassifyColdStartOnFinishedMatch(t *testing.T) {
	t.Parallel()

	snap := snapshot(func(s *Snapshot) {
		s.Runs = 310
		s.Wickets = 6
		s.OversRaw = "49.3"
		s.StatusText = "Australia won by 4 wickets"
	})

	out := Classify(snap, NewMatchState(), true, firedSet{}.fn())
	require.Nil(t, out.Event)
	require.Contains(t, out.SeedIDs, EndEventID("m1", "won by"))
	require.True(t, out.Next.Ended)
}

func TestPhaseAdjust(t *testing.T) {
	t.Parallel()

	state := NewMatchState()
	state.LastBalls = 300
	state.LastWickets = 10
	state.LastWicketBalls = 290
	state.Phase = 1

	// Second innings begins: progress regresses by fifty overs.
	adjusted, reset := PhaseAdjust(state, 2)
	require.True(t, reset)
	require.Equal(t, 0, adjusted.LastBalls)
	require.Equal(t, 0, adjusted.LastWickets)
	require.Equal(t, NeverBalls, adjusted.LastWicketBalls)
	require.Equal(t, 2, adjusted.Phase)

	// Exactly five overs back triggers, one ball less does not.
	state = NewMatchState()
	state.LastBalls = 60
	_, reset = PhaseAdjust(state, 30)
	require.True(t, reset)
	_, reset = PhaseAdjust(state, 31)
	require.False(t, reset)
}

func TestClassifyMalformedFieldsDegrade(t *testing.T) {
	t.Parallel()

	snap := snapshot(func(s *Snapshot) {
		s.Runs = -4
		s.Wickets = 14
		s.OversRaw = "not-an-over"
	})

	out := Classify(snap, NewMatchState(), false, firedSet{}.fn())
	require.Equal(t, 0, out.Next.LastBalls)
	require.Equal(t, WicketsAllOut, out.Next.LastWickets)
}
