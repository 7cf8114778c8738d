package notify

import (
	"fmt"
	"net/url"
	"time"

	"github.com/mkotecha/crickwatch/internal/match"
)

const separator = "—————————————————"

// ImageSearchLink builds an image-search URL for a match or player query.
func ImageSearchLink(query string) string {
	q := url.QueryEscape(fmt.Sprintf("%s Cricket Match %d", query, time.Now().Year()))
	return fmt.Sprintf("https://www.google.com/search?q=%s&tbm=isch", q)
}

// Render turns an event into the channel message, Markdown formatted.
func Render(ev match.Event) string {
	switch ev.Kind {
	case match.KindWicketCollapse:
		return fmt.Sprintf(
			"🚨 *EARLY COLLAPSE* 🚨\n%s\n💥 Huge trouble early on!\n\n🏏 *MATCH:* %s\n📊 *SCORE:* *%s* (%s)\n💬 *LATEST WICKET:* _%s_\n\n🖼 [Tap for Match Action](%s)\n%s\n📉 *The batting side is under massive pressure!*",
			separator, ev.MatchName, ev.ScoreDisplay, ev.OversDisplay, ev.Text,
			ImageSearchLink(ev.MatchName), separator,
		)
	case match.KindDoubleStrike:
		return fmt.Sprintf(
			"🔥 *DOUBLE STRIKE* 🔥\n%s\n🎯 Two quick wickets have changed the momentum!\n\n🏏 *MATCH:* %s\n📊 *NEW SCORE:* *%s* (%s)\n💬 *LATEST:* _%s_\n\n🖼 [Tap for Celebration Photos](%s)\n%s\n⚠️ *Huge turning point in the game!*",
			separator, ev.MatchName, ev.ScoreDisplay, ev.OversDisplay, ev.Text,
			ImageSearchLink(ev.MatchName), separator,
		)
	case match.KindMatchEnd:
		return fmt.Sprintf(
			"🏆 *MATCH COMPLETED: FINAL RESULT* 🏆\n%s\n🎯 *%s*\n\n📊 *FINAL TALLY:*\n🔹 %s\n🔹 Score: *%s* (%s)\n\n🖼 [Tap for Winning Moments](%s)\n%s\n✅ *Coverage concluded.*",
			separator, ev.Text, ev.MatchName, ev.ScoreDisplay, ev.OversDisplay,
			ImageSearchLink(ev.MatchName), separator,
		)
	case match.KindPhaseBreak:
		return fmt.Sprintf(
			"🛑 *INNINGS COMPLETED* 🛑\n%s\n🏏 *%s* finishes their innings.\n\n📊 *FINAL SCORE:* *%s*\n🎯 *UPDATE:* _%s_\n\n🖼 [Tap for Match Gallery](%s)\n%s\n🕒 _Second innings starts shortly._",
			separator, ev.MatchName, ev.ScoreDisplay, ev.Text,
			ImageSearchLink(ev.MatchName), separator,
		)
	case match.KindOverMilestone:
		return fmt.Sprintf(
			"🏏 *%s UPDATE* 🏏\n%s\n🏆 *%s*\n\n📊 *SCORE:* *%s*\n🕒 *OVERS:* %s\n📈 *RUN RATE:* %s\n\n⚡ *LATEST:* _%s_\n\n🖼 [Tap for Match Photos](%s)\n%s\n🔔 *Stay tuned for more live action!*",
			phaseHeader(ev), separator, ev.MatchName, ev.ScoreDisplay, ev.OversDisplay,
			runRateDisplay(ev.RunRate), ev.Text, ImageSearchLink(ev.MatchName), separator,
		)
	case match.KindPlayerMilestone:
		header := fmt.Sprintf("🔥 *%s REACHED!* 🔥", ev.Milestone)
		if ev.Fast {
			header = speedAlert(ev.Milestone) + "\n" + header
		}
		return fmt.Sprintf(
			"%s\n%s\n⭐ *Player Milestone*\n\n🏏 *MATCH:* %s\n📊 *CURRENT SCORE:* *%s* (%s)\n💬 *COMMENTARY:* _%s_\n\n🖼 [Tap for Player Photos](%s)\n%s\n👏 *What a knock! Share the news!*",
			header, separator, ev.MatchName, ev.ScoreDisplay, ev.OversDisplay, ev.Text,
			ImageSearchLink(ev.MatchName+" "+ev.Text), separator,
		)
	case match.KindToss:
		return fmt.Sprintf(
			"🪙 *TOSS UPDATE* 🪙\n%s\n🏆 *%s*\n\n🏟 *%s*\n\n🖼 [Tap for Toss Photos](%s)\n%s\n🏏 _Match starting soon! Get ready!_",
			separator, ev.MatchName, ev.Text,
			ImageSearchLink(ev.MatchName+" Toss"), separator,
		)
	default:
		return fmt.Sprintf("🏏 *%s*\n%s (%s)\n_%s_", ev.MatchName, ev.ScoreDisplay, ev.OversDisplay, ev.Text)
	}
}

// phaseHeader names the crossed threshold, with T20 phases called out.
func phaseHeader(ev match.Event) string {
	if ev.Threshold == 6 {
		return "POWERPLAY END"
	}
	if ev.Threshold == 15 || (ev.Threshold == 20 && isShortFormat(ev.MatchName)) {
		return "DEATH OVERS"
	}
	return fmt.Sprintf("%d-OVER", ev.Threshold)
}

func isShortFormat(name string) bool {
	return match.FormatFromName(name) == match.FormatT20
}

func speedAlert(milestone string) string {
	if milestone == "100" {
		return "⚡ SENSATIONAL CENTURY ⚡"
	}
	return "⚡ EXPLOSIVE INNINGS ⚡"
}

func runRateDisplay(rate float64) string {
	if rate <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", rate)
}
