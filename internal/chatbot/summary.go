package chatbot

import (
	"fmt"
	"strings"

	"github.com/quantifyai/refibot/internal/i18n"
	"github.com/quantifyai/refibot/internal/refinance"
)

// RenderSummary produces the localized savings summary. It is a pure
// function of its inputs: the same result and language always render
// byte-identical text.
func RenderSummary(s *refinance.Savings, lang i18n.Language) string {
	labels := i18n.Summary(lang)
	var b strings.Builder
	b.WriteString(labels.Header)
	b.WriteString("\n")
	fmt.Fprintf(&b, "- %s: %s\n", labels.MonthlySavings, i18n.FormatMYR(s.MonthlySavings))
	fmt.Fprintf(&b, "- %s: %s\n", labels.YearlySavings, i18n.FormatMYR(s.YearlySavings))
	fmt.Fprintf(&b, "- %s: %s\n", labels.TotalSavings, i18n.FormatMYR(s.LifetimeSavings))
	fmt.Fprintf(&b, "- %s: %s\n", labels.NewRepayment, i18n.FormatMYR(s.NewMonthlyRepayment))
	fmt.Fprintf(&b, "- %s: %s (%s: %.2f%%)\n\n", labels.Lender, s.LenderName, labels.InterestRate, s.NewInterestRate)
	b.WriteString(labels.Analysis)
	return b.String()
}
