// Package overs converts cricket overs notation into ball counts.
//
// Overs notation is not decimal: "10.3" means 10 complete overs plus 3
// balls, so "9.5" and "10.0" are one ball apart, not half an over. Every
// comparison in the engine (resets, windows, milestones) runs on the
// integer ball count produced here, never on the raw string or a float.
package overs

import (
	"fmt"
	"regexp"
	"strconv"
)

// BallsPerOver is the number of legal deliveries in one over.
const BallsPerOver = 6

var oversPattern = regexp.MustCompile(`^(\d+)(?:\.(\d))?$`)

// ToBalls converts an overs string like "10.3" to a total ball count (63).
// Malformed or empty input yields 0. A fractional digit outside [0,5] is
// clamped before the multiply-and-add.
func ToBalls(raw string) int {
	m := oversPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}
	whole, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	balls := 0
	if m[2] != "" {
		balls, _ = strconv.Atoi(m[2])
	}
	if balls < 0 {
		balls = 0
	}
	if balls > BallsPerOver-1 {
		balls = BallsPerOver - 1
	}
	return whole*BallsPerOver + balls
}

// Completed returns the number of complete overs in a ball count.
func Completed(balls int) int {
	if balls < 0 {
		return 0
	}
	return balls / BallsPerOver
}

// Display renders a ball count back into overs notation.
func Display(balls int) string {
	if balls < 0 {
		balls = 0
	}
	return fmt.Sprintf("%d.%d", balls/BallsPerOver, balls%BallsPerOver)
}

// RunRate computes runs per over from a total ball count, guarded against
// division by zero.
func RunRate(runs, balls int) float64 {
	if balls <= 0 {
		return 0
	}
	return float64(runs) * BallsPerOver / float64(balls)
}
