package persuade

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quantifyai/refibot/internal/i18n"
	"github.com/quantifyai/refibot/internal/refinance"
	"github.com/quantifyai/refibot/pkg/logging"
)

type stubGenerator struct {
	text string
	err  error
}

func (s stubGenerator) Generate(context.Context, *refinance.Savings, i18n.Language) (string, error) {
	return s.text, s.err
}

var sampleSavings = &refinance.Savings{
	MonthlySavings:      310.5,
	YearlySavings:       3726,
	LifetimeSavings:     74520,
	NewMonthlyRepayment: 2217.9,
	NewInterestRate:     3.8,
	LenderName:          "OCBC Bank",
	Beneficial:          true,
}

func TestBuildPromptIncludesFigures(t *testing.T) {
	prompt := BuildPrompt(sampleSavings, i18n.English)
	for _, want := range []string{"RM310.50", "RM3,726.00", "RM74,520.00", "RM2,217.90", "3.80%", "OCBC Bank"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptLanguageSelection(t *testing.T) {
	en := BuildPrompt(sampleSavings, i18n.English)
	ms := BuildPrompt(sampleSavings, i18n.Malay)
	zh := BuildPrompt(sampleSavings, i18n.Chinese)
	if en == ms || en == zh || ms == zh {
		t.Fatal("expected language-specific prompts")
	}
	// Unknown languages fall back to English.
	if BuildPrompt(sampleSavings, i18n.Language("fr")) != en {
		t.Fatal("expected English prompt for unknown language")
	}
}

func TestStaticGeneratorLocalized(t *testing.T) {
	var g StaticGenerator
	en, _ := g.Generate(context.Background(), sampleSavings, i18n.English)
	ms, _ := g.Generate(context.Background(), sampleSavings, i18n.Malay)
	if en == "" || ms == "" || en == ms {
		t.Fatalf("expected distinct localized fallbacks, got %q and %q", en, ms)
	}
}

func TestFallbackUsesPrimaryWhenHealthy(t *testing.T) {
	g := NewFallbackGenerator(stubGenerator{text: "generated message"}, logging.Default())
	got, err := g.Generate(context.Background(), sampleSavings, i18n.English)
	if err != nil || got != "generated message" {
		t.Fatalf("expected primary output, got %q, %v", got, err)
	}
}

func TestFallbackOnPrimaryError(t *testing.T) {
	g := NewFallbackGenerator(stubGenerator{err: errors.New("quota exceeded")}, logging.Default())
	got, err := g.Generate(context.Background(), sampleSavings, i18n.Chinese)
	if err != nil {
		t.Fatalf("fallback must not surface errors, got %v", err)
	}
	if got != i18n.T(i18n.KeyPersuadeFallback, i18n.Chinese) {
		t.Fatalf("expected static Chinese fallback, got %q", got)
	}
}

func TestFallbackWithoutPrimary(t *testing.T) {
	g := NewFallbackGenerator(nil, nil)
	got, err := g.Generate(context.Background(), sampleSavings, i18n.Malay)
	if err != nil || got == "" {
		t.Fatalf("expected static output, got %q, %v", got, err)
	}
}

func TestFallbackOnEmptyPrimaryText(t *testing.T) {
	g := NewFallbackGenerator(stubGenerator{text: ""}, logging.Default())
	got, err := g.Generate(context.Background(), sampleSavings, i18n.English)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != i18n.T(i18n.KeyPersuadeFallback, i18n.English) {
		t.Fatalf("expected static fallback for empty text, got %q", got)
	}
}
