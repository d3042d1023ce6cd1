// Package persuade turns a computed savings result into the short persuasive
// message that closes a conversation.
package persuade

import (
	"context"

	"github.com/quantifyai/refibot/internal/i18n"
	"github.com/quantifyai/refibot/internal/refinance"
)

// Generator produces a persuasive summary for a beneficial savings result.
type Generator interface {
	Generate(ctx context.Context, s *refinance.Savings, lang i18n.Language) (string, error)
}

// StaticGenerator always returns the canned localized closing line. It is the
// zero-dependency generator used when no LLM is configured, and the floor the
// fallback wrapper lands on.
type StaticGenerator struct{}

// Generate returns the static closing line for the language.
func (StaticGenerator) Generate(_ context.Context, _ *refinance.Savings, lang i18n.Language) (string, error) {
	return i18n.T(i18n.KeyPersuadeFallback, lang), nil
}
