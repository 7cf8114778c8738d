package overs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToBalls(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "whole plus balls", raw: "10.3", want: 63},
		{name: "balls only", raw: "0.5", want: 5},
		{name: "whole overs", raw: "20", want: 120},
		{name: "trailing zero", raw: "10.0", want: 60},
		{name: "empty", raw: "", want: 0},
		{name: "garbage", raw: "abc", want: 0},
		{name: "negative", raw: "-3.1", want: 0},
		{name: "sub unit clamped", raw: "10.9", want: 65},
		{name: "two fractional digits rejected", raw: "10.33", want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ToBalls(tt.raw))
		})
	}
}

func TestToBallsAdjacency(t *testing.T) {
	t.Parallel()

	// "9.5" and "10.0" are one delivery apart, the miscompare the float
	// representation invites.
	require.Equal(t, 1, ToBalls("10.0")-ToBalls("9.5"))
}

func TestDisplayRoundTrip(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"0.0", "5.2", "10.3", "49.5"} {
		require.Equal(t, raw, Display(ToBalls(raw)))
	}
}

func TestRunRate(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0.0, RunRate(50, 0))
	require.InDelta(t, 6.0, RunRate(60, 60), 0.001)
	require.InDelta(t, 7.74, RunRate(80, 62), 0.01)
}

func TestCompleted(t *testing.T) {
	t.Parallel()

	require.Equal(t, 10, Completed(63))
	require.Equal(t, 0, Completed(-1))
}
