package match

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

// Event identifiers are deterministic: matchID + kind + discriminant, where
// the discriminant is the smallest value set that is unique per real-world
// occurrence yet stable across repeated polls of the same occurrence.

// CollapseEventID keys the single early-collapse alert per match.
func CollapseEventID(matchID string) string {
	return fmt.Sprintf("%s|COLLAPSE|3WK", matchID)
}

// DoubleStrikeEventID keys a quick-succession wicket pair by the counter
// value it reached.
func DoubleStrikeEventID(matchID string, wickets int) string {
	return fmt.Sprintf("%s|DOUBLE_STRIKE|%d", matchID, wickets)
}

// EndEventID keys the final result by the matched vocabulary phrase, so the
// same result survives re-phrasing between polls.
func EndEventID(matchID, phrase string) string {
	return fmt.Sprintf("%s|END|%s", matchID, strings.ReplaceAll(phrase, " ", "_"))
}

// BreakEventID keys an innings/session break by the run total at the break.
func BreakEventID(matchID string, runs int) string {
	return fmt.Sprintf("%s|BREAK|%d", matchID, runs)
}

// OverMilestoneEventID keys a crossed over threshold.
func OverMilestoneEventID(matchID string, threshold, runs int) string {
	return fmt.Sprintf("%s|OV|%d|%d", matchID, threshold, runs)
}

// PlayerMilestoneEventID keys a player milestone by a short digest of the
// trigger text, since the provider exposes no player identifier.
func PlayerMilestoneEventID(matchID, text string) string {
	return fmt.Sprintf("%s|MILESTONE|%s", matchID, shortDigest(text))
}

// TossEventID keys the single toss announcement per match.
func TossEventID(matchID string) string {
	return fmt.Sprintf("%s|TOSS", matchID)
}

// shortDigest returns a crash-proof 10-character hex digest of free text.
func shortDigest(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])[:10]
}
