// Package generate holds the language-model collaborators for the
// diary engine: emotion classification plumbing, the daily summary
// chain, the closing line, and the forget acknowledgment.
package generate

import (
	"context"
	"strings"
)

// Chat is the low-level completion primitive every chain runs on.
type Chat interface {
	// Complete sends one system+user exchange and returns the
	// assistant text.
	Complete(ctx context.Context, system, user string) (string, error)
}

// Generator produces the diary's long-form texts. Injected context,
// when non-empty, is prepended verbatim as background for every chain
// that consults conversation history.
type Generator interface {
	// DailySummary writes the long-form first-person diary entry.
	DailySummary(ctx context.Context, transcript, injectedContext string) (string, error)

	// ClosingLine distills a full summary into a short aphoristic line.
	ClosingLine(ctx context.Context, fullSummary string) (string, error)

	// ForgetAck phrases a short "here is what I still remember"
	// confirmation from the conversation that survived a forget.
	ForgetAck(ctx context.Context, remaining, injectedContext string) (string, error)
}

// chains implements Generator on top of a Chat backend.
type chains struct {
	chat Chat
}

// NewGenerator builds a Generator over the given Chat backend.
func NewGenerator(chat Chat) Generator {
	return &chains{chat: chat}
}

func (g *chains) DailySummary(ctx context.Context, transcript, injectedContext string) (string, error) {
	user := withBackground(injectedContext, transcript)
	out, err := g.chat.Complete(ctx, promptDailySummary, user)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *chains) ClosingLine(ctx context.Context, fullSummary string) (string, error) {
	out, err := g.chat.Complete(ctx, promptClosingLine, fullSummary)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *chains) ForgetAck(ctx context.Context, remaining, injectedContext string) (string, error) {
	user := withBackground(injectedContext, remaining)
	out, err := g.chat.Complete(ctx, promptForgetAck, user)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// withBackground prepends injected prior-memory text to the
// conversation payload.
func withBackground(injected, body string) string {
	if injected == "" {
		return body
	}
	return "Background from earlier sessions:\n" + injected + "\n\n" + body
}
