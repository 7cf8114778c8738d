// Package notify renders events into channel messages and delivers them.
package notify

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/mkotecha/crickwatch/internal/match"
)

// Provider delivers one rendered message to a channel.
type Provider interface {
	Send(ctx context.Context, text string) error
}

// Rewriter produces an editorial rewrite of a message. Implementations live
// in the rewrite package; a nil Rewriter disables the feature.
type Rewriter interface {
	Rewrite(ctx context.Context, text, battingSide string) (string, error)
}

// Notifier publishes events: the rendered message always goes out, and when
// a rewriter is configured its polished copy follows as a second message.
// Rewrite failures degrade to the plain message alone.
type Notifier struct {
	provider Provider
	rewriter Rewriter
	log      *zap.Logger
}

// New builds a Notifier. rewriter may be nil.
func New(provider Provider, rewriter Rewriter, log *zap.Logger) *Notifier {
	return &Notifier{
		provider: provider,
		rewriter: rewriter,
		log:      log.Named("notify"),
	}
}

// Publish renders and delivers one event.
func (n *Notifier) Publish(ctx context.Context, ev match.Event) error {
	text := Render(ev)
	if err := n.provider.Send(ctx, text); err != nil {
		return fmt.Errorf("send %s: %w", ev.ID, err)
	}

	if n.rewriter == nil {
		return nil
	}
	polished, err := n.rewriter.Rewrite(ctx, text, battingSide(ev))
	if err != nil {
		n.log.Warn("rewrite failed, plain message stands",
			zap.String("event_id", ev.ID), zap.Error(err))
		return nil
	}
	if polished == "" {
		return nil
	}
	if err := n.provider.Send(ctx, "✨ *PRO EDIT (COPY THIS):*\n\n"+polished); err != nil {
		n.log.Warn("pro edit send failed", zap.String("event_id", ev.ID), zap.Error(err))
	}
	return nil
}

// Announce delivers a non-event message (digest, startup banner) as is.
func (n *Notifier) Announce(ctx context.Context, text string) error {
	return n.provider.Send(ctx, text)
}

// battingSide recovers the side label from the score display, which leads
// with it when one was parsed.
func battingSide(ev match.Event) string {
	i := strings.IndexFunc(ev.ScoreDisplay, unicode.IsDigit)
	if i <= 0 {
		return ""
	}
	return strings.TrimSpace(ev.ScoreDisplay[:i])
}
