package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkotecha/crickwatch/internal/match"
	"github.com/mkotecha/crickwatch/internal/scraper"
	"github.com/mkotecha/crickwatch/internal/store/memory"
)

type fakeSource struct {
	updates []Update
}

func (f *fakeSource) Updates(_ context.Context, offset int64) ([]Update, error) {
	var out []Update
	for _, u := range f.updates {
		if u.ID > offset {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeLister struct {
	links []scraper.MatchLink
	snaps map[string]match.Snapshot
}

func (f *fakeLister) LiveMatches(context.Context) ([]scraper.MatchLink, error) {
	return f.links, nil
}

func (f *fakeLister) Snapshot(_ context.Context, link scraper.MatchLink) (match.Snapshot, error) {
	return f.snaps[link.MatchID], nil
}

type fakeReplier struct {
	sent []string
}

func (f *fakeReplier) Announce(_ context.Context, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func testHandler(updates ...Update) (*Handler, *fakeReplier, *memory.TrackingStore) {
	lister := &fakeLister{
		links: []scraper.MatchLink{
			{MatchID: "m1", Name: "India vs Australia, 3rd T20I", URL: "https://x/live-cricket-scores/m1/a"},
			{MatchID: "m2", Name: "England vs South Africa, 1st ODI", URL: "https://x/live-cricket-scores/m2/b"},
		},
		snaps: map[string]match.Snapshot{
			"m1": {MatchID: "m1", Runs: 186, Wickets: 4, OversRaw: "18.3", StatusText: "India opt to bat"},
			"m2": {MatchID: "m2", Runs: 301, Wickets: 7, OversRaw: "50", StatusText: "England won by 20 runs"},
		},
	}
	tracking := memory.NewTrackingStore()
	replier := &fakeReplier{}
	h := NewHandler(&fakeSource{updates: updates}, lister, tracking, replier, zap.NewNop())
	return h, replier, tracking
}

func TestHandlerTrackList(t *testing.T) {
	t.Parallel()

	h, replier, tracking := testHandler(Update{ID: 1, Text: "/tracklist"})
	require.NoError(t, tracking.Upsert(context.Background(), match.TrackedMatch{MatchID: "m2", Name: "ENG vs SA", Active: false}))

	require.NoError(t, h.Poll(context.Background()))
	require.Len(t, replier.sent, 1)
	require.Contains(t, replier.sent[0], "*1.* India vs Australia, 3rd T20I")
	require.Contains(t, replier.sent[0], "✅ Tracking")
	require.Contains(t, replier.sent[0], "❌ Muted")
}

func TestHandlerStopAndTrack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	h, replier, tracking := testHandler(
		Update{ID: 1, Text: "/stop 1"},
		Update{ID: 2, Text: "/track 1"},
	)

	require.NoError(t, h.Poll(ctx))
	require.Len(t, replier.sent, 2)
	require.Contains(t, replier.sent[0], "❌ Muted: *India vs Australia, 3rd T20I*")
	require.Contains(t, replier.sent[1], "✅ Now tracking")

	active, err := tracking.IsActive(ctx, "m1")
	require.NoError(t, err)
	require.True(t, active)
}

func TestHandlerInvalidIndex(t *testing.T) {
	t.Parallel()

	h, replier, _ := testHandler(
		Update{ID: 1, Text: "/track 9"},
		Update{ID: 2, Text: "/track abc"},
	)

	require.NoError(t, h.Poll(context.Background()))
	require.Len(t, replier.sent, 2)
	require.Contains(t, replier.sent[0], "Invalid ID")
	require.Contains(t, replier.sent[1], "Invalid ID")
}

func TestHandlerScoreSummary(t *testing.T) {
	t.Parallel()

	h, replier, _ := testHandler(Update{ID: 1, Text: "/score"})

	require.NoError(t, h.Poll(context.Background()))
	require.Len(t, replier.sent, 2)
	require.Contains(t, replier.sent[1], "LIVE INTERNATIONALS")
	require.Contains(t, replier.sent[1], "📊 186-4 (18.3 overs)")
	require.Contains(t, replier.sent[1], "🔥 *Latest:* India opt to bat")
	require.Contains(t, replier.sent[1], "🎯 *Result:* England won by 20 runs")
}

func TestHandlerOffsetAdvances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	h, replier, _ := testHandler(Update{ID: 7, Text: "/score"})

	require.NoError(t, h.Poll(ctx))
	require.NoError(t, h.Poll(ctx))

	// The second poll sees nothing new, so no duplicate summary goes out.
	require.Len(t, replier.sent, 2)
}
