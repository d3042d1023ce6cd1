package persuade

import (
	"context"

	"github.com/quantifyai/refibot/internal/i18n"
	"github.com/quantifyai/refibot/internal/refinance"
	"github.com/quantifyai/refibot/pkg/logging"
)

// FallbackGenerator wraps a primary generator and falls back to the static
// localized closing line when the primary fails. Generation never blocks a
// completed conversation: Generate always returns a usable message.
type FallbackGenerator struct {
	primary Generator
	static  StaticGenerator
	logger  *logging.Logger
}

// NewFallbackGenerator creates a fallback-enabled generator. A nil primary
// means every call lands on the static line.
func NewFallbackGenerator(primary Generator, logger *logging.Logger) *FallbackGenerator {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackGenerator{primary: primary, logger: logger}
}

// Generate tries the primary generator, then the static line.
func (g *FallbackGenerator) Generate(ctx context.Context, s *refinance.Savings, lang i18n.Language) (string, error) {
	if g.primary != nil {
		text, err := g.primary.Generate(ctx, s, lang)
		if err == nil && text != "" {
			return text, nil
		}
		if err != nil {
			g.logger.Warn("persuade: primary generator failed, using static fallback",
				"language", string(lang),
				"error", err,
			)
		}
	}
	return g.static.Generate(ctx, s, lang)
}
