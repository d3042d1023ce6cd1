package chatbot

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/quantifyai/refibot/internal/finance"
	"github.com/quantifyai/refibot/internal/i18n"
	"github.com/quantifyai/refibot/internal/notify"
	"github.com/quantifyai/refibot/internal/portal"
	"github.com/quantifyai/refibot/internal/profile"
	"github.com/quantifyai/refibot/internal/rates"
	"github.com/quantifyai/refibot/internal/refinance"
	"github.com/quantifyai/refibot/pkg/logging"
)

type fakeMessenger struct {
	mu    sync.Mutex
	sends []sentMessage
}

type sentMessage struct {
	To   string
	Body string
}

func (f *fakeMessenger) SendText(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sentMessage{To: to, Body: body})
	return nil
}

func (f *fakeMessenger) sentTo(to string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.sends {
		if s.To == to {
			out = append(out, s.Body)
		}
	}
	return out
}

func (f *fakeMessenger) last(to string) string {
	bodies := f.sentTo(to)
	if len(bodies) == 0 {
		return ""
	}
	return bodies[len(bodies)-1]
}

type fakePortal struct {
	mu    sync.Mutex
	leads []portal.Lead
}

func (f *fakePortal) Submit(_ context.Context, lead portal.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leads = append(f.leads, lead)
	return nil
}

func (f *fakePortal) submitted() []portal.Lead {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]portal.Lead(nil), f.leads...)
}

type fakePersuader struct{}

func (fakePersuader) Generate(_ context.Context, _ *refinance.Savings, lang i18n.Language) (string, error) {
	return "PERSUADE:" + string(lang), nil
}

type fixedRateSource struct {
	quote rates.Quote
}

func (f fixedRateSource) BestRate(context.Context, float64) rates.Quote {
	return f.quote
}

type harness struct {
	engine    *Engine
	messenger *fakeMessenger
	portal    *fakePortal
	profiles  *profile.InMemoryRepository
	sessions  *MemoryStore
}

func newHarness(t *testing.T, rate float64, lender string, opts Options) *harness {
	t.Helper()
	messenger := &fakeMessenger{}
	portalClient := &fakePortal{}
	profiles := profile.NewInMemoryRepository()
	sessions := NewMemoryStore()
	calc := refinance.NewCalculator(fixedRateSource{rates.Quote{Rate: rate, LenderName: lender}}, 10000, logging.Default())
	notifier := notify.NewService(messenger, "admin-chat", nil, "", logging.Default())

	if opts.AdminContactURL == "" {
		opts.AdminContactURL = "wa.me/60126181683"
	}

	engine := NewEngine(
		sessions,
		refinance.DefaultLimits,
		calc,
		messenger,
		portalClient,
		fakePersuader{},
		profiles,
		notifier,
		nil,
		nil,
		opts,
		logging.Default(),
	)
	return &harness{
		engine:    engine,
		messenger: messenger,
		portal:    portalClient,
		profiles:  profiles,
		sessions:  sessions,
	}
}

func (h *harness) run(t *testing.T, chatID string, inputs ...string) {
	t.Helper()
	for _, input := range inputs {
		h.engine.ProcessInboundText(context.Background(), chatID, input)
	}
}

func (h *harness) session(t *testing.T, chatID string) *Session {
	t.Helper()
	s, err := h.sessions.GetOrCreate(context.Background(), chatID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return s
}

func TestPathAEndToEndBeneficial(t *testing.T) {
	h := newHarness(t, 3.8, "OCBC Bank", Options{})
	const chatID = "60123456789"

	h.run(t, chatID, "hello", "1", "John Doe", "1", "300000", "20", "4.5")

	s := h.session(t, chatID)
	if s.Phase != PhaseDone {
		t.Fatalf("expected DONE, got %s", s.Phase)
	}
	if s.Language != i18n.English || s.Profile.Name != "John Doe" {
		t.Fatalf("unexpected session: %+v", s)
	}

	bodies := h.messenger.sentTo(chatID)
	joined := strings.Join(bodies, "\n---\n")
	if !strings.Contains(joined, "OCBC Bank") || !strings.Contains(joined, "3.80%") {
		t.Fatalf("summary missing offer details:\n%s", joined)
	}
	if !strings.Contains(joined, "PERSUADE:en") {
		t.Fatalf("persuasive message not sent:\n%s", joined)
	}
	if !strings.Contains(joined, "wa.me/60126181683") {
		t.Fatalf("closing message missing contact URL:\n%s", joined)
	}

	leads := h.portal.submitted()
	if len(leads) != 1 {
		t.Fatalf("expected exactly one lead, got %d", len(leads))
	}
	if leads[0].LoanAmount != 300000 || leads[0].Phone != chatID {
		t.Fatalf("unexpected lead: %+v", leads[0])
	}
	if leads[0].EstimatedSavings <= 0 {
		t.Fatalf("expected positive estimated savings, got %v", leads[0].EstimatedSavings)
	}

	// Admin alert went to the admin chat.
	adminMsgs := h.messenger.sentTo("admin-chat")
	if len(adminMsgs) != 1 || !strings.Contains(adminMsgs[0], "New Lead Alert") {
		t.Fatalf("expected one admin alert, got %v", adminMsgs)
	}

	// Durable mirror captured the savings.
	rec, err := h.profiles.Get(context.Background(), chatID)
	if err != nil {
		t.Fatalf("profile mirror: %v", err)
	}
	if rec.LoanAmount != 300000 || rec.MonthlySavings <= 0 || rec.LenderName != "OCBC Bank" {
		t.Fatalf("unexpected mirror: %+v", rec)
	}
}

func TestPathANotBeneficialSubmitsNothing(t *testing.T) {
	h := newHarness(t, 5.0, "OCBC Bank", Options{})
	const chatID = "60123456789"

	h.run(t, chatID, "hello", "1", "John Doe", "1", "300000", "20", "4.5")

	if got := h.messenger.last(chatID); got != i18n.T(i18n.KeyNotBeneficial, i18n.English) {
		t.Fatalf("expected not-beneficial closing, got %q", got)
	}
	if leads := h.portal.submitted(); len(leads) != 0 {
		t.Fatalf("expected no lead, got %+v", leads)
	}
	if s := h.session(t, chatID); s.Phase != PhaseDone {
		t.Fatalf("expected DONE, got %s", s.Phase)
	}
}

func TestDisqualifiedLeadSubmissionConfigurable(t *testing.T) {
	h := newHarness(t, 5.0, "OCBC Bank", Options{SubmitDisqualifiedLeads: true})
	const chatID = "60123456789"

	h.run(t, chatID, "hello", "1", "John Doe", "1", "300000", "20", "4.5")

	leads := h.portal.submitted()
	if len(leads) != 1 {
		t.Fatalf("expected one disqualified lead, got %d", len(leads))
	}
	if leads[0].EstimatedSavings != 0 {
		t.Fatalf("disqualified lead must carry zero savings, got %v", leads[0].EstimatedSavings)
	}
}

func TestPathBEndToEnd(t *testing.T) {
	h := newHarness(t, 3.8, "OCBC Bank", Options{})
	const chatID = "60198765432"

	payment, err := finance.MonthlyPayment(450000, 4.6, 25)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	paymentStr := strconv.FormatFloat(finance.Round2(payment), 'f', 2, 64)

	h.run(t, chatID, "hi", "2", "Siti", "2", "450000", "25", paymentStr, "5")

	s := h.session(t, chatID)
	if s.Phase != PhaseDone {
		t.Fatalf("expected DONE, got %s", s.Phase)
	}
	if s.Language != i18n.Malay {
		t.Fatalf("expected Malay, got %s", s.Language)
	}
	if s.Profile.OutstandingBalance <= 0 {
		t.Fatal("expected outstanding balance recorded")
	}

	leads := h.portal.submitted()
	if len(leads) != 1 {
		t.Fatalf("expected one lead, got %d", len(leads))
	}
	if leads[0].LoanAmount != 450000 {
		t.Fatalf("expected original loan amount on lead, got %v", leads[0].LoanAmount)
	}
}

func TestPathBDeterministicOutput(t *testing.T) {
	const chatID = "60170000001"
	inputs := []string{"hi", "1", "Raj", "2", "450000", "25", "2200", "5"}

	h1 := newHarness(t, 3.8, "OCBC Bank", Options{})
	h1.run(t, chatID, inputs...)
	h2 := newHarness(t, 3.8, "OCBC Bank", Options{})
	h2.run(t, chatID, inputs...)

	out1 := h1.messenger.sentTo(chatID)
	out2 := h2.messenger.sentTo(chatID)
	if len(out1) != len(out2) {
		t.Fatalf("non-deterministic message count: %d vs %d", len(out1), len(out2))
	}
	for i := range out1 {
		if out1[i] != out2[i] {
			t.Fatalf("non-deterministic message %d:\n%s\nvs\n%s", i, out1[i], out2[i])
		}
	}

	// Estimation converged: the balance projection survives in the session
	// whatever the terminal outcome was.
	if s := h1.session(t, chatID); s.Profile.OutstandingBalance <= 0 {
		t.Fatal("expected converged balance projection")
	}
}

func TestEstimationFailureEndsGracefully(t *testing.T) {
	h := newHarness(t, 3.8, "OCBC Bank", Options{})
	const chatID = "60170000002"

	// A repayment below the zero-rate floor cannot be matched by any rate.
	h.run(t, chatID, "hi", "1", "Raj", "2", "450000", "25", "1200", "5")

	if got := h.messenger.last(chatID); got != i18n.T(i18n.KeyCalcFailed, i18n.English) {
		t.Fatalf("expected contact-support closing, got %q", got)
	}
	if leads := h.portal.submitted(); len(leads) != 0 {
		t.Fatalf("expected no lead, got %+v", leads)
	}
}

func TestInvalidInputNeverAdvancesPhase(t *testing.T) {
	h := newHarness(t, 3.8, "OCBC Bank", Options{})
	const chatID = "60170000003"

	h.run(t, chatID, "hi", "1", "John", "1")
	if s := h.session(t, chatID); s.Phase != PhasePathAAmount {
		t.Fatalf("setup: expected PATH_A_LOAN_AMOUNT, got %s", s.Phase)
	}

	for _, bad := range []string{"abc", "-5", "99999", "30000001", ""} {
		h.run(t, chatID, bad)
		if s := h.session(t, chatID); s.Phase != PhasePathAAmount {
			t.Fatalf("input %q advanced phase to %s", bad, s.Phase)
		}
	}

	// A valid value still advances afterwards.
	h.run(t, chatID, "300000")
	if s := h.session(t, chatID); s.Phase != PhasePathATenure {
		t.Fatalf("expected PATH_A_TENURE, got %s", s.Phase)
	}
}

func TestRestartFromAnyPhase(t *testing.T) {
	h := newHarness(t, 3.8, "OCBC Bank", Options{})
	const chatID = "60170000004"

	h.run(t, chatID, "hi REFAB12CD34", "1", "John", "1", "300000", "20")
	s := h.session(t, chatID)
	if s.Phase != PhasePathARate {
		t.Fatalf("setup: expected PATH_A_INTEREST_RATE, got %s", s.Phase)
	}

	h.run(t, chatID, "ReStArT")

	s = h.session(t, chatID)
	if s.Phase != PhaseLanguageSelect {
		t.Fatalf("expected restart to land on language selection, got %s", s.Phase)
	}
	if s.Profile.Name != "" || s.Profile.LoanAmount != 0 || s.Profile.Tenure != 0 {
		t.Fatalf("expected cleared profile, got %+v", s.Profile)
	}
	if s.Profile.ReferralCode != "REFAB12CD34" {
		t.Fatalf("expected referral code kept, got %q", s.Profile.ReferralCode)
	}
	if s.Profile.PhoneNumber != chatID {
		t.Fatalf("expected phone number kept, got %q", s.Profile.PhoneNumber)
	}
}

func TestReferralExtractedFromFirstMessage(t *testing.T) {
	h := newHarness(t, 3.8, "OCBC Bank", Options{})
	const chatID = "60170000005"

	h.run(t, chatID, "hello refxy98zz11 please")
	if s := h.session(t, chatID); s.Profile.ReferralCode != "REFXY98ZZ11" {
		t.Fatalf("expected uppercased referral code, got %q", s.Profile.ReferralCode)
	}
}

func TestReferralRequiredFlow(t *testing.T) {
	h := newHarness(t, 3.8, "OCBC Bank", Options{
		Referral: ReferralPolicy{Required: true, Prefix: "REF", DefaultCode: "NOREF"},
	})
	const chatID = "60170000006"

	h.run(t, chatID, "hello")
	s := h.session(t, chatID)
	if s.Phase != PhaseCollectReferral {
		t.Fatalf("expected referral collection, got %s", s.Phase)
	}

	// Garbage re-prompts without advancing.
	h.run(t, chatID, "huh?")
	if s := h.session(t, chatID); s.Phase != PhaseCollectReferral {
		t.Fatalf("expected to stay in referral collection, got %s", s.Phase)
	}

	// Declining substitutes the default code.
	h.run(t, chatID, "skip")
	s = h.session(t, chatID)
	if s.Phase != PhaseLanguageSelect {
		t.Fatalf("expected language selection, got %s", s.Phase)
	}
	if s.Profile.ReferralCode != "NOREF" {
		t.Fatalf("expected default code, got %q", s.Profile.ReferralCode)
	}
}

func TestDonePhaseRepliesWithClosing(t *testing.T) {
	h := newHarness(t, 3.8, "OCBC Bank", Options{})
	const chatID = "60170000007"

	h.run(t, chatID, "hello", "1", "John", "1", "300000", "20", "4.5")
	h.run(t, chatID, "thanks")

	if got := h.messenger.last(chatID); !strings.Contains(got, "restart") {
		t.Fatalf("expected closing with restart hint, got %q", got)
	}
	// Still only one lead.
	if leads := h.portal.submitted(); len(leads) != 1 {
		t.Fatalf("expected exactly one lead, got %d", len(leads))
	}
}

func TestFAQAnsweredWithoutPhaseChange(t *testing.T) {
	h := newHarness(t, 3.8, "OCBC Bank", Options{})
	const chatID = "60170000008"

	h.run(t, chatID, "hi", "1", "John", "1")
	before := h.session(t, chatID).Phase

	h.run(t, chatID, "what is refinancing?")

	if s := h.session(t, chatID); s.Phase != before {
		t.Fatalf("FAQ advanced phase from %s to %s", before, s.Phase)
	}
	if got := h.messenger.last(chatID); got != i18n.T(i18n.KeyPersuadeFallback, i18n.English) {
		t.Fatalf("expected FAQ answer, got %q", got)
	}
}

func TestConcurrentFirstContactSingleSession(t *testing.T) {
	h := newHarness(t, 3.8, "OCBC Bank", Options{})
	d := NewDispatcher(h.engine)
	const chatID = "60170000009"

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Dispatch(context.Background(), chatID, "hello")
		}()
	}
	wg.Wait()

	// All eight turns observed the same session: after the first turn the
	// phase is LANGUAGE_SELECTION and the rest were invalid inputs there.
	if s := h.session(t, chatID); s.Phase != PhaseLanguageSelect {
		t.Fatalf("expected language selection, got %s", s.Phase)
	}
}

func TestDispatcherSerializesPerChat(t *testing.T) {
	h := newHarness(t, 3.8, "OCBC Bank", Options{})
	d := NewDispatcher(h.engine)
	const chatID = "60170000010"

	d.Dispatch(context.Background(), chatID, "hello")

	inputs := []string{"1", "John Doe", "1", "300000", "20", "4.5"}
	var wg sync.WaitGroup
	for _, in := range inputs {
		in := in
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Dispatch(context.Background(), chatID, in)
		}()
	}
	wg.Wait()

	// Order is not guaranteed across goroutines, but the engine must never
	// corrupt state: the session is in a defined phase and at most one lead
	// was submitted.
	if leads := h.portal.submitted(); len(leads) > 1 {
		t.Fatalf("expected at most one lead, got %d", len(leads))
	}
}
