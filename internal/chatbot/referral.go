package chatbot

import (
	"regexp"
	"strings"
	"sync"
)

// ReferralPolicy controls how referral codes are collected during onboarding.
type ReferralPolicy struct {
	// Required forces an explicit referral step when the first message
	// carries no code. When false, missing codes are simply left empty.
	Required bool
	// Prefix is the token prefix a code must start with, e.g. "REF".
	Prefix string
	// DefaultCode substitutes for users who decline the referral question.
	DefaultCode string
}

// Code patterns compiled once per prefix. A deployment uses one prefix, but
// the policy is a value type so the cache lives at package level.
var (
	codePatternMu sync.RWMutex
	codePatterns  = map[string]*regexp.Regexp{}
)

func codePattern(prefix string) *regexp.Regexp {
	codePatternMu.RLock()
	re, ok := codePatterns[prefix]
	codePatternMu.RUnlock()
	if ok {
		return re
	}

	codePatternMu.Lock()
	defer codePatternMu.Unlock()
	if re, ok = codePatterns[prefix]; ok {
		return re
	}
	re = regexp.MustCompile(`\b` + regexp.QuoteMeta(prefix) + `[A-Z0-9]{8,}\b`)
	codePatterns[prefix] = re
	return re
}

// ExtractReferralCode finds a referral token anywhere in the text: the prefix
// followed by at least 8 alphanumeric characters. Matching is
// case-insensitive; the returned code is uppercased. Returns "" when absent.
func (p ReferralPolicy) ExtractReferralCode(text string) string {
	prefix := p.Prefix
	if prefix == "" {
		prefix = "REF"
	}
	re := codePattern(strings.ToUpper(prefix))
	return re.FindString(strings.ToUpper(text))
}

// Declined reports whether the reply skips the referral question.
func (p ReferralPolicy) Declined(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "skip", "no", "none":
		return true
	}
	return false
}
