package chatbot

import (
	"strings"

	"github.com/quantifyai/refibot/internal/i18n"
)

// faqEntry is one canned question/answer pair. Questions are matched by
// substring against the lowercased inbound text.
type faqEntry struct {
	triggers map[i18n.Language][]string
	answer   i18n.Key
}

// The FAQ table answers common side questions without advancing the flow.
// Keys reuse the catalog so answers stay localized with everything else.
var faqTable = []faqEntry{
	{
		triggers: map[i18n.Language][]string{
			i18n.English: {"what is refinancing", "how does refinancing work"},
			i18n.Malay:   {"apa itu pembiayaan semula", "bagaimana pembiayaan semula"},
			i18n.Chinese: {"什么是再融资", "再融资是什么"},
		},
		answer: i18n.KeyPersuadeFallback,
	},
	{
		triggers: map[i18n.Language][]string{
			i18n.English: {"talk to someone", "contact admin", "speak to a human"},
			i18n.Malay:   {"hubungi pentadbir", "cakap dengan manusia"},
			i18n.Chinese: {"联系管理员", "人工客服"},
		},
		answer: i18n.KeyThankYou,
	},
}

// MatchFAQ returns the localized canned answer for a side question, or
// ("", false) when the text is not an FAQ. English triggers are always
// checked so mixed-language chats still match.
func MatchFAQ(text string, lang i18n.Language) (i18n.Key, bool) {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return "", false
	}
	for _, entry := range faqTable {
		langs := []i18n.Language{lang}
		if lang != i18n.English {
			langs = append(langs, i18n.English)
		}
		for _, l := range langs {
			for _, trigger := range entry.triggers[l] {
				if strings.Contains(lowered, trigger) {
					return entry.answer, true
				}
			}
		}
	}
	return "", false
}
