package scraper

import "strings"

// Title fragments that mark domestic, youth or second-string fixtures.
var excludedTitleMarks = []string{
	" U19", "TROPHY", "LEAGUE", " XI", "INDIA A", "PAKISTAN A", "ENGLAND LIONS",
}

// Format tags that identify an international fixture outright.
var internationalFormats = []string{"TEST", "ODI", "T20I", "WORLD CUP"}

var fullMemberNations = []string{
	"INDIA", "AUSTRALIA", "ENGLAND", "NEW ZEALAND", "SOUTH AFRICA",
	"PAKISTAN", "SRI LANKA", "WEST INDIES", "BANGLADESH", "ZIMBABWE",
	"AFGHANISTAN", "IRELAND",
}

// IsInternational reports whether a match title looks like a full
// international fixture. Exclusions win over inclusions so that "India A vs
// England Lions, 1st Test" stays out.
func IsInternational(title string) bool {
	upper := strings.ToUpper(title)
	for _, mark := range excludedTitleMarks {
		if strings.Contains(upper, mark) {
			return false
		}
	}
	for _, format := range internationalFormats {
		if strings.Contains(upper, format) {
			return true
		}
	}
	nations := 0
	for _, c := range fullMemberNations {
		if strings.Contains(upper, c) {
			nations++
		}
	}
	return nations >= 2
}
