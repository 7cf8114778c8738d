package match

import (
	"regexp"
	"strings"
)

// resultPhrases is the closed vocabulary of match-result status lines. Order
// matters: the first match supplies the MatchEnd discriminant, so the more
// specific phrasings come first.
var resultPhrases = []string{
	"won by",
	"win by",
	"match drawn",
	"match tied",
	"drawn",
	"tied",
	"abandoned",
	"no result",
}

// breakPhrases is the closed vocabulary of innings/session break lines.
var breakPhrases = []string{
	"innings break",
	"target",
	"stumps",
	"lunch",
	"tea",
}

// ResultPhrase reports whether the status text declares a result, returning
// the matched vocabulary phrase. The phrase, not the full text, becomes the
// MatchEnd discriminant so a result re-phrased across polls never fires twice.
func ResultPhrase(status string) (string, bool) {
	lower := strings.ToLower(status)
	for _, p := range resultPhrases {
		if strings.Contains(lower, p) {
			return p, true
		}
	}
	return "", false
}

// IsBreakText reports whether the status text declares an innings or
// session break.
func IsBreakText(status string) bool {
	lower := strings.ToLower(status)
	for _, p := range breakPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Fifty keywords are checked before century keywords: "half-century"
// contains "century" and must not be misread as a hundred.
var (
	fiftyKeywords   = []string{"fifty", "half-century", "half century", "50 runs", "reaches 50"}
	centuryKeywords = []string{"century", "hundred", "100 runs", "reaches 100"}
)

// Bounds for the "fast" qualifier on player milestones, in balls faced.
const (
	fastFiftyBalls   = 25
	fastCenturyBalls = 50
)

var ballsFacedPattern = regexp.MustCompile(`(\d+)\s*(balls|b)\b`)

// PlayerMilestone scans free text for a fifty or century mention. It returns
// the milestone label ("50" or "100") and whether the innings qualifies as
// fast based on a parsed balls-faced figure.
func PlayerMilestone(text string) (milestone string, fast bool, ok bool) {
	lower := strings.ToLower(text)

	ballsFaced := -1
	if m := ballsFacedPattern.FindStringSubmatch(lower); m != nil {
		ballsFaced = atoiSafe(m[1])
	}

	for _, k := range fiftyKeywords {
		if strings.Contains(lower, k) {
			return "50", ballsFaced >= 0 && ballsFaced <= fastFiftyBalls, true
		}
	}
	for _, k := range centuryKeywords {
		if strings.Contains(lower, k) {
			return "100", ballsFaced >= 0 && ballsFaced <= fastCenturyBalls, true
		}
	}
	return "", false, false
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	return n
}
