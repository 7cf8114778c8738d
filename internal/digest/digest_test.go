package digest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkotecha/crickwatch/internal/store/memory"
)

const schedulePage = `
<html><body>
<div class="cb-col-100 cb-col cb-schdl">
  <div class="cb-col-100 cb-col cb-lv-grn-strip">SAT AUG 22 2026</div>
</div>
<div class="matches">
  <div class="cb-ovr-flo">India vs Australia, 3rd T20I</div>
</div>
<div class="cb-col-100 cb-col cb-schdl">
  <div class="cb-col-100 cb-col cb-lv-grn-strip">SUN AUG 23 2026</div>
</div>
<div class="matches">
  <div class="cb-ovr-flo">England vs South Africa, 1st ODI</div>
  <div class="cb-ovr-flo">Chennai vs Mumbai, Indian Premier League</div>
  <div class="cb-ovr-flo">New Zealand vs Pakistan, 2nd Test</div>
</div>
</body></html>`

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeAnnouncer struct{ sent []string }

func (f *fakeAnnouncer) Announce(_ context.Context, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

type fakeFetcher struct{ body []byte }

func (f *fakeFetcher) Fetch(context.Context, string) ([]byte, error) {
	return f.body, nil
}

func TestParseSchedule(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 23, 8, 5, 0, 0, time.UTC)
	fixtures, err := ParseSchedule([]byte(schedulePage), now)
	require.NoError(t, err)

	// Only today's block counts, and the franchise game is filtered.
	require.Equal(t, []string{
		"England vs South Africa, 1st ODI",
		"New Zealand vs Pakistan, 2nd Test",
	}, fixtures)
}

func TestDigestTickSendsOncePerDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	inWindow := time.Date(2026, 8, 23, 8, 10, 0, 0, loc)

	announcer := &fakeAnnouncer{}
	d, err := New(Config{Hour: 8}, &fakeFetcher{body: []byte(schedulePage)},
		memory.NewDigestLog(), announcer, fixedClock{t: inWindow}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, d.Tick(ctx))
	require.NoError(t, d.Tick(ctx))

	require.Len(t, announcer.sent, 1)
	require.Contains(t, announcer.sent[0], "TODAY'S INTERNATIONAL SCHEDULE")
	require.Contains(t, announcer.sent[0], "• England vs South Africa, 1st ODI")
	require.NotContains(t, announcer.sent[0], "Premier League")
}

func TestDigestTickOutsideWindow(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	night := time.Date(2026, 8, 23, 22, 0, 0, 0, loc)

	announcer := &fakeAnnouncer{}
	d, err := New(Config{Hour: 8}, &fakeFetcher{body: []byte(schedulePage)},
		memory.NewDigestLog(), announcer, fixedClock{t: night}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, d.Tick(context.Background()))
	require.Empty(t, announcer.sent)
}

func TestRenderBriefingEmpty(t *testing.T) {
	t.Parallel()

	out := RenderBriefing(nil, time.Now())
	require.Equal(t, "No international matches scheduled for today.", out)
}
