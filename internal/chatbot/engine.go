package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quantifyai/refibot/internal/i18n"
	"github.com/quantifyai/refibot/internal/messaging"
	"github.com/quantifyai/refibot/internal/notify"
	"github.com/quantifyai/refibot/internal/observability/metrics"
	"github.com/quantifyai/refibot/internal/portal"
	"github.com/quantifyai/refibot/internal/profile"
	"github.com/quantifyai/refibot/internal/refinance"
	"github.com/quantifyai/refibot/internal/transcript"
	"github.com/quantifyai/refibot/pkg/logging"
)

// RestartCommand resets a conversation from any phase.
const RestartCommand = "restart"

// Persuader generates the closing persuasive message. It must never fail the
// flow; the persuade package's fallback wrapper satisfies this.
type Persuader interface {
	Generate(ctx context.Context, s *refinance.Savings, lang i18n.Language) (string, error)
}

// Options carries the policy knobs the engine honors.
type Options struct {
	Referral ReferralPolicy
	// AdminContactURL lands in the closing message.
	AdminContactURL string
	// SubmitDisqualifiedLeads controls whether gated results still produce a
	// zeroed lead record on the portal.
	SubmitDisqualifiedLeads bool
}

// Engine is the conversation state machine. One ProcessInboundText call is
// one turn; the dispatcher guarantees turns for the same chat identity never
// overlap.
type Engine struct {
	sessions    SessionStore
	limits      refinance.Limits
	calc        *refinance.Calculator
	messenger   messaging.Messenger
	portal      portal.Submitter
	persuader   Persuader
	profiles    profile.Repository
	notifier    *notify.Service
	transcripts *transcript.Store
	metrics     *metrics.ChatbotMetrics
	opts        Options
	logger      *logging.Logger
	now         func() time.Time
}

// NewEngine wires the state machine. calc, messenger, and sessions are
// required; every other collaborator may be nil and is skipped.
func NewEngine(
	sessions SessionStore,
	limits refinance.Limits,
	calc *refinance.Calculator,
	messenger messaging.Messenger,
	portalClient portal.Submitter,
	persuader Persuader,
	profiles profile.Repository,
	notifier *notify.Service,
	transcripts *transcript.Store,
	m *metrics.ChatbotMetrics,
	opts Options,
	logger *logging.Logger,
) *Engine {
	if sessions == nil {
		panic("chatbot: session store required")
	}
	if calc == nil {
		panic("chatbot: calculator required")
	}
	if messenger == nil {
		panic("chatbot: messenger required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		sessions:    sessions,
		limits:      limits,
		calc:        calc,
		messenger:   messenger,
		portal:      portalClient,
		persuader:   persuader,
		profiles:    profiles,
		notifier:    notifier,
		transcripts: transcripts,
		metrics:     m,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

// ProcessInboundText runs one conversation turn. Panics are caught at this
// boundary: the user gets a generic localized error and the session is left
// as-is so an explicit restart is the recovery path.
func (e *Engine) ProcessInboundText(ctx context.Context, chatID, rawText string) {
	session, err := e.sessions.GetOrCreate(ctx, chatID)
	if err != nil {
		e.logger.Error("chatbot: session load failed", "chat_id", chatID, "error", err)
		return
	}

	e.metrics.ObserveInbound(string(session.Phase))
	e.logTranscript(ctx, session, transcript.Inbound, rawText)

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("chatbot: turn panicked",
				"chat_id", chatID,
				"phase", string(session.Phase),
				"panic", fmt.Sprint(r),
			)
			e.send(ctx, session, i18n.T(i18n.KeySomethingWrong, session.Language))
		}
	}()

	text := strings.TrimSpace(rawText)
	if strings.EqualFold(text, RestartCommand) {
		session.Reset()
		e.logger.Info("chatbot: conversation restarted", "chat_id", chatID)
	}

	e.handle(ctx, session, text)
	e.persist(ctx, session)
}

func (e *Engine) handle(ctx context.Context, s *Session, text string) {
	// Side questions are answered in place without advancing the flow. The
	// start and name phases accept free text, so they are exempt.
	if s.Phase != PhaseStart && s.Phase != PhaseCollectName {
		if key, ok := MatchFAQ(text, s.Language); ok {
			e.send(ctx, s, e.render(key, s.Language))
			return
		}
	}

	switch s.Phase {
	case PhaseStart:
		e.handleStart(ctx, s, text)
	case PhaseCollectReferral:
		e.handleReferral(ctx, s, text)
	case PhaseLanguageSelect:
		e.handleLanguageSelect(ctx, s, text)
	case PhaseCollectName:
		e.handleName(ctx, s, text)
	case PhaseChoosePath:
		e.handleChoosePath(ctx, s, text)
	case PhasePathAAmount:
		e.handlePathAAmount(ctx, s, text)
	case PhasePathATenure:
		e.handlePathATenure(ctx, s, text)
	case PhasePathARate:
		e.handlePathARate(ctx, s, text)
	case PhasePathBAmount:
		e.handlePathBAmount(ctx, s, text)
	case PhasePathBTenure:
		e.handlePathBTenure(ctx, s, text)
	case PhasePathBPayment:
		e.handlePathBPayment(ctx, s, text)
	case PhasePathBYearsPaid:
		e.handlePathBYearsPaid(ctx, s, text)
	case PhaseDone:
		e.send(ctx, s, e.render(i18n.KeyThankYou, s.Language))
	default:
		e.logger.Warn("chatbot: unknown phase", "chat_id", s.ChatID, "phase", string(s.Phase))
		e.send(ctx, s, i18n.T(i18n.KeySomethingWrong, s.Language))
	}
}

func (e *Engine) handleStart(ctx context.Context, s *Session, text string) {
	if code := e.opts.Referral.ExtractReferralCode(text); code != "" {
		s.Profile.ReferralCode = code
	}
	if e.opts.Referral.Required && s.Profile.ReferralCode == "" {
		s.Phase = PhaseCollectReferral
		e.send(ctx, s, i18n.T(i18n.KeyAskReferral, i18n.DefaultLanguage))
		return
	}
	e.beginLanguageSelect(ctx, s)
}

func (e *Engine) handleReferral(ctx context.Context, s *Session, text string) {
	if code := e.opts.Referral.ExtractReferralCode(text); code != "" {
		s.Profile.ReferralCode = code
	} else if e.opts.Referral.Declined(text) {
		s.Profile.ReferralCode = e.opts.Referral.DefaultCode
	} else {
		e.send(ctx, s, i18n.T(i18n.KeyInvalidInput, i18n.DefaultLanguage))
		return
	}
	e.beginLanguageSelect(ctx, s)
}

func (e *Engine) beginLanguageSelect(ctx context.Context, s *Session) {
	s.Phase = PhaseLanguageSelect
	e.send(ctx, s, i18n.T(i18n.KeyWelcomeBanner, i18n.DefaultLanguage))
	e.send(ctx, s, i18n.T(i18n.KeyWelcome, i18n.DefaultLanguage))
}

func (e *Engine) handleLanguageSelect(ctx context.Context, s *Session, text string) {
	lang, ok := i18n.ParseChoice(text)
	if !ok {
		// Language not chosen yet, re-prompt in the default locale.
		e.send(ctx, s, i18n.T(i18n.KeyInvalidInput, i18n.DefaultLanguage))
		return
	}
	s.Language = lang
	s.Phase = PhaseCollectName
	e.send(ctx, s, i18n.T(i18n.KeyAskName, lang))
}

func (e *Engine) handleName(ctx context.Context, s *Session, text string) {
	if text == "" {
		e.send(ctx, s, i18n.T(i18n.KeyInvalidInput, s.Language))
		return
	}
	s.Profile.Name = text
	s.Phase = PhaseChoosePath
	e.send(ctx, s, i18n.T(i18n.KeyChoosePath, s.Language))
}

func (e *Engine) handleChoosePath(ctx context.Context, s *Session, text string) {
	switch text {
	case "1":
		s.Phase = PhasePathAAmount
		e.send(ctx, s, i18n.T(i18n.KeyPathALoanAmount, s.Language))
	case "2":
		s.Phase = PhasePathBAmount
		e.send(ctx, s, i18n.T(i18n.KeyPathBLoanAmount, s.Language))
	default:
		e.send(ctx, s, i18n.T(i18n.KeyInvalidInput, s.Language))
	}
}

func (e *Engine) handlePathAAmount(ctx context.Context, s *Session, text string) {
	amount, ok := parseFloat(text)
	if v := e.limits.ValidateLoanAmount(amount, s.Language); !ok || !v.Valid {
		e.send(ctx, s, e.validationMessage(ok, v, i18n.KeyErrLoanAmount, s.Language))
		return
	}
	s.Profile.LoanAmount = amount
	s.Phase = PhasePathATenure
	e.send(ctx, s, i18n.T(i18n.KeyPathATenure, s.Language))
}

func (e *Engine) handlePathATenure(ctx context.Context, s *Session, text string) {
	tenure, ok := parseInt(text)
	if v := e.limits.ValidateTenureA(tenure, s.Language); !ok || !v.Valid {
		e.send(ctx, s, e.validationMessage(ok, v, i18n.KeyErrTenure, s.Language))
		return
	}
	s.Profile.Tenure = tenure
	s.Phase = PhasePathARate
	e.send(ctx, s, i18n.T(i18n.KeyPathARate, s.Language))
}

func (e *Engine) handlePathARate(ctx context.Context, s *Session, text string) {
	rate, ok := parseFloat(text)
	if v := e.limits.ValidateInterestRate(rate, s.Language); !ok || !v.Valid {
		e.send(ctx, s, e.validationMessage(ok, v, i18n.KeyErrRate, s.Language))
		return
	}
	s.Profile.InterestRate = rate

	result, err := e.calc.PathA(ctx, s.Profile.LoanAmount, s.Profile.Tenure, rate)
	e.finishConversation(ctx, s, result, err)
}

func (e *Engine) handlePathBAmount(ctx context.Context, s *Session, text string) {
	amount, ok := parseFloat(text)
	if v := e.limits.ValidateLoanAmount(amount, s.Language); !ok || !v.Valid {
		e.send(ctx, s, e.validationMessage(ok, v, i18n.KeyErrLoanAmount, s.Language))
		return
	}
	s.Profile.OriginalLoanAmount = amount
	s.Phase = PhasePathBTenure
	e.send(ctx, s, i18n.T(i18n.KeyPathBTenure, s.Language))
}

func (e *Engine) handlePathBTenure(ctx context.Context, s *Session, text string) {
	tenure, ok := parseInt(text)
	if v := e.limits.ValidateTenureB(tenure, s.Language); !ok || !v.Valid {
		e.send(ctx, s, e.validationMessage(ok, v, i18n.KeyErrTenure, s.Language))
		return
	}
	s.Profile.OriginalTenure = tenure
	s.Phase = PhasePathBPayment
	e.send(ctx, s, i18n.T(i18n.KeyPathBPayment, s.Language))
}

func (e *Engine) handlePathBPayment(ctx context.Context, s *Session, text string) {
	payment, ok := parseFloat(text)
	if v := e.limits.ValidateRepayment(payment, s.Language); !ok || !v.Valid {
		e.send(ctx, s, e.validationMessage(ok, v, i18n.KeyErrRepayment, s.Language))
		return
	}
	s.Profile.MonthlyPayment = payment
	s.Phase = PhasePathBYearsPaid
	e.send(ctx, s, i18n.T(i18n.KeyPathBYearsPaid, s.Language))
}

func (e *Engine) handlePathBYearsPaid(ctx context.Context, s *Session, text string) {
	years, ok := parseInt(text)
	if v := e.limits.ValidateYearsPaid(years, s.Profile.OriginalTenure, s.Language); !ok || !v.Valid {
		e.send(ctx, s, e.validationMessage(ok, v, i18n.KeyErrYearsPaid, s.Language))
		return
	}
	s.Profile.YearsPaid = years

	result, err := e.calc.PathB(ctx,
		s.Profile.OriginalLoanAmount,
		s.Profile.OriginalTenure,
		s.Profile.MonthlyPayment,
		s.Profile.YearsPaid,
	)
	e.finishConversation(ctx, s, result, err)
}

// finishConversation handles the three terminal outcomes: calculation
// failure, gated non-beneficial result, and a real lead.
func (e *Engine) finishConversation(ctx context.Context, s *Session, result *refinance.Savings, err error) {
	if err != nil {
		if !errors.Is(err, refinance.ErrEstimationFailed) {
			e.logger.Error("chatbot: calculation failed", "chat_id", s.ChatID, "error", err)
		}
		e.metrics.ObserveCalcFailure()
		e.metrics.ObserveCompleted("calc_failed")
		s.Phase = PhaseDone
		e.send(ctx, s, i18n.T(i18n.KeyCalcFailed, s.Language))
		return
	}

	e.copySavings(s, result)

	if !result.Beneficial {
		key := i18n.KeyNotBeneficial
		if result.Reason == refinance.ReasonBelowThreshold {
			key = i18n.KeySavingsTooLow
		}
		e.metrics.ObserveCompleted("not_beneficial")
		s.Phase = PhaseDone
		e.send(ctx, s, i18n.T(key, s.Language))
		if e.opts.SubmitDisqualifiedLeads {
			e.submitLead(ctx, s, 0)
		}
		return
	}

	e.send(ctx, s, RenderSummary(result, s.Language))

	if e.persuader != nil {
		if msg, perr := e.persuader.Generate(ctx, result, s.Language); perr == nil && msg != "" {
			e.send(ctx, s, msg)
		}
	}

	e.send(ctx, s, e.render(i18n.KeyThankYou, s.Language))

	e.persist(ctx, s)
	if e.notifier != nil {
		e.notifier.NotifyNewLead(ctx, s.Record(e.now().UTC()))
	}
	e.submitLead(ctx, s, result.LifetimeSavings)

	e.metrics.ObserveCompleted("lead")
	s.Phase = PhaseDone
}

func (e *Engine) copySavings(s *Session, r *refinance.Savings) {
	s.Profile.MonthlySavings = r.MonthlySavings
	s.Profile.YearlySavings = r.YearlySavings
	s.Profile.LifetimeSavings = r.LifetimeSavings
	s.Profile.NewMonthlyRepayment = r.NewMonthlyRepayment
	s.Profile.LenderName = r.LenderName
	s.Profile.OutstandingBalance = r.OutstandingBalance
	s.Profile.CurrentRepayment = r.CurrentRepayment
}

// submitLead posts the lead to the portal at most once per conversation.
// Failures are logged; the user never sees them.
func (e *Engine) submitLead(ctx context.Context, s *Session, estimatedSavings float64) {
	if e.portal == nil || s.LeadSubmitted {
		return
	}
	loanAmount := s.Profile.LoanAmount
	if loanAmount == 0 {
		loanAmount = s.Profile.OriginalLoanAmount
	}
	lead := portal.Lead{
		ReferrerCode:     s.Profile.ReferralCode,
		Phone:            s.Profile.PhoneNumber,
		LoanAmount:       loanAmount,
		EstimatedSavings: estimatedSavings,
	}
	if err := e.portal.Submit(ctx, lead); err != nil {
		e.metrics.ObserveLead("failed")
		e.logger.Error("chatbot: lead submission failed", "chat_id", s.ChatID, "error", err)
		return
	}
	s.LeadSubmitted = true
	e.metrics.ObserveLead("submitted")
}

// persist writes the session back to its store and mirrors the profile to
// the durable repository. Both are log-and-continue.
func (e *Engine) persist(ctx context.Context, s *Session) {
	if err := e.sessions.Save(ctx, s); err != nil {
		e.logger.Error("chatbot: session save failed", "chat_id", s.ChatID, "error", err)
	}
	if e.profiles == nil {
		return
	}
	if err := e.profiles.Upsert(ctx, s.Record(e.now().UTC())); err != nil {
		e.logger.Error("chatbot: profile mirror failed", "chat_id", s.ChatID, "error", err)
	}
}

// send delivers one outbound message. Transport failures are logged and
// swallowed; there is nothing to substitute for an undeliverable reply.
func (e *Engine) send(ctx context.Context, s *Session, body string) {
	if err := e.messenger.SendText(ctx, s.ChatID, body); err != nil {
		e.metrics.ObserveOutbound("failed")
		e.logger.Error("chatbot: send failed", "chat_id", s.ChatID, "error", err)
		return
	}
	e.metrics.ObserveOutbound("sent")
	e.logTranscript(ctx, s, transcript.Outbound, body)
}

func (e *Engine) logTranscript(ctx context.Context, s *Session, dir transcript.Direction, body string) {
	err := e.transcripts.Append(ctx, transcript.Message{
		ChatID:    s.ChatID,
		Direction: dir,
		Body:      body,
		Phase:     string(s.Phase),
	})
	if err != nil {
		e.logger.Warn("chatbot: transcript append failed", "chat_id", s.ChatID, "error", err)
	}
}

// render resolves a catalog key, filling in the admin contact URL where the
// message carries one.
func (e *Engine) render(key i18n.Key, lang i18n.Language) string {
	msg := i18n.T(key, lang)
	if key == i18n.KeyThankYou {
		return fmt.Sprintf(msg, e.opts.AdminContactURL)
	}
	return msg
}

// validationMessage picks the localized error: the validator's own message
// when the number parsed, the field's generic message when it did not.
func (e *Engine) validationMessage(parsed bool, v refinance.Validation, key i18n.Key, lang i18n.Language) string {
	if parsed && v.Message != "" {
		return v.Message
	}
	return i18n.T(key, lang)
}

func parseFloat(text string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	return v, err == nil
}

func parseInt(text string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	return v, err == nil
}
