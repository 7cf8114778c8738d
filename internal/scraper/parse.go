// Package scraper discovers live matches on the score provider and parses
// match pages into snapshots. The provider's markup shifts between page
// generations, so every extraction degrades to a zero value instead of
// failing the tick.
package scraper

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mkotecha/crickwatch/internal/match"
)

// MatchLink is one live fixture discovered on the index page.
type MatchLink struct {
	MatchID string
	Name    string
	URL     string
}

const (
	liveScoresPath = "/live-cricket-scores/"

	// The provider serves two page generations with different class sets;
	// both selector groups stay until the old one disappears for good.
	scoreSelector  = `div[class*="text-3xl"][class*="font-bold"], div[class*="cb-font-20"]`
	statusSelector = `div[class*="text-cb-danger"], div[class*="text-cb-info"], div[class*="text-cb-success"], div[class*="cb-text-complete"], div[class*="cb-text-abandon"]`
)

var (
	digitsPattern      = regexp.MustCompile(`\d+`)
	battingSidePattern = regexp.MustCompile(`^([A-Za-z]+)`)

	altStatusPhrases = []string{
		"won by", "abandoned", "target ", "innings break", "stumps", "no result",
	}
)

// ParseMatchLinks extracts live international fixtures from the index page.
// Concluded fixtures (result text in the surrounding card) are dropped here
// so they never enter tracking.
func ParseMatchLinks(body []byte, baseURL string) ([]MatchLink, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var links []MatchLink
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, liveScoresPath) {
			return
		}
		name := strings.TrimSpace(a.AttrOr("title", ""))
		if name == "" {
			name = strings.TrimSpace(a.Text())
		}
		if name == "" || !IsInternational(name) {
			return
		}
		if parent := a.Parent(); parent != nil {
			if _, over := match.ResultPhrase(parent.Text()); over {
				return
			}
		}
		full := href
		if strings.HasPrefix(href, "/") {
			full = baseURL + href
		}
		if _, dup := seen[full]; dup {
			return
		}
		seen[full] = struct{}{}
		links = append(links, MatchLink{
			MatchID: MatchIDFromURL(full, name),
			Name:    name,
			URL:     full,
		})
	})
	return links, nil
}

// MatchIDFromURL pulls the stable numeric identifier out of a match URL,
// falling back to a digest of the name for unrecognized shapes.
func MatchIDFromURL(url, name string) string {
	trimmed := strings.TrimSuffix(url, "/")
	parts := strings.Split(trimmed, "/")
	for i, p := range parts {
		if p == strings.Trim(liveScoresPath, "/") && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	sum := sha1.Sum([]byte(name))
	return hex.EncodeToString(sum[:])[:10]
}

// ParseSnapshot turns a match page into a Snapshot. ok is false when the
// score block is missing entirely, which usually means the page needs a
// rendered fetch.
func ParseSnapshot(body []byte, matchID, name string) (match.Snapshot, bool, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return match.Snapshot{}, false, err
	}

	scoreDiv := doc.Find(scoreSelector).First()
	if scoreDiv.Length() == 0 {
		return match.Snapshot{}, false, nil
	}

	snap := match.Snapshot{
		MatchID: matchID,
		Name:    name,
		Format:  match.FormatFromName(name),
	}

	if m := battingSidePattern.FindString(strings.TrimSpace(scoreDiv.Text())); m != "" {
		snap.BattingSide = m
	}

	cells := scoreDiv.Find("div")
	if cells.Length() > 0 {
		snap.Runs = firstInt(cells.Eq(0).Text())
	}
	if cells.Length() > 1 {
		snap.Wickets = firstInt(cells.Eq(1).Text())
	}
	if cells.Length() > 2 {
		raw := strings.TrimSpace(cells.Eq(2).Text())
		snap.OversRaw = strings.NewReplacer("(", "", ")", "").Replace(raw)
	}

	snap.StatusText = parseStatus(doc)
	snap.CommentaryText = parseCommentary(doc, snap.OversRaw)
	return snap, true, nil
}

func parseStatus(doc *goquery.Document) string {
	if s := strings.TrimSpace(doc.Find(statusSelector).First().Text()); s != "" {
		return s
	}
	// Fallback sweep for result lines the class-based selector misses.
	var found string
	doc.Find("div[class]").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		text := strings.TrimSpace(div.Text())
		if text == "" || len(text) >= 100 {
			return true
		}
		lower := strings.ToLower(text)
		for _, phrase := range altStatusPhrases {
			if strings.Contains(lower, phrase) {
				found = text
				return false
			}
		}
		return true
	})
	return found
}

// parseCommentary digs the latest ball note out of the commentary feed. Mid
// over the freshest entry sits on top; on the over boundary the provider
// reorders and it sits at the bottom.
func parseCommentary(doc *goquery.Document, oversRaw string) string {
	feed := doc.Find(`div[class*="leading-6"]`).First()
	if feed.Length() == 0 {
		return ""
	}
	entries := feed.ChildrenFiltered("div")
	if entries.Length() == 0 {
		return ""
	}
	entry := entries.Eq(0)
	if !strings.Contains(oversRaw, ".") {
		entry = entries.Eq(entries.Length() - 1)
	}
	row := entry.Find(`div[class*="flex"][class*="gap-4"]`).First()
	if row.Length() == 0 {
		return ""
	}
	cols := row.ChildrenFiltered("div")
	if cols.Length() < 2 {
		return ""
	}
	return strings.TrimSpace(cols.Eq(1).Text())
}

// ParseTossText extracts the toss line from a scorecard page, or "".
func ParseTossText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	var toss string
	doc.Find(`div[class*="font-bold"]`).EachWithBreak(func(_ int, div *goquery.Selection) bool {
		if !strings.Contains(div.Text(), "Toss") {
			return true
		}
		toss = strings.TrimSpace(div.Next().Text())
		return false
	})
	return toss, nil
}

// ScorecardURL maps a live-score page to its mobile scorecard, which carries
// the toss line.
func ScorecardURL(matchURL string) string {
	return strings.NewReplacer(
		"live-cricket-scores", "live-cricket-scorecard",
		"www.cricbuzz.com", "m.cricbuzz.com",
	).Replace(matchURL)
}

func firstInt(s string) int {
	digits := digitsPattern.FindString(strings.ReplaceAll(s, ",", ""))
	if digits == "" {
		return 0
	}
	n := 0
	for _, r := range digits {
		n = n*10 + int(r-'0')
	}
	return n
}
