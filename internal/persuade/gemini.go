package persuade

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/quantifyai/refibot/internal/i18n"
	"github.com/quantifyai/refibot/internal/refinance"
)

var systemRoles = map[i18n.Language]string{
	i18n.English: "You are a professional financial assistant specializing in refinancing. Respond in English.",
	i18n.Malay:   "Anda adalah seorang pembantu kewangan profesional yang pakar dalam pembiayaan semula. Jawab dalam Bahasa Melayu.",
	i18n.Chinese: "您是一位专业的财务助理，专门从事再融资。用中文回答。",
}

var prompts = map[i18n.Language]string{
	i18n.English: `You are Quantify AI Assistant, a friendly and professional consultant specializing in refinancing solutions.
Focus first on presenting the user's potential savings clearly and confidently. Then, explain why refinancing is an opportunity many homeowners overlook.
Highlight that banks benefit from borrowers continuing to pay higher interest rates, but refinancing empowers users to save more and invest in their future, a holiday getaway, or even an upgrade of lifestyle.
Keep the tone approachable, helpful, and reassuring, positioning yourself as a knowledgeable partner in financial improvement.
The response should be concise, persuasive, and less than 500 characters. Avoid greetings and closings.`,
	i18n.Malay: `Anda adalah Pembantu AI Quantify, seorang perunding mesra dan profesional yang pakar dalam penyelesaian pembiayaan semula.
Fokus terlebih dahulu pada menyampaikan penjimatan pengguna dengan jelas dan yakin. Kemudian, jelaskan mengapa pembiayaan semula adalah peluang yang banyak pemilik rumah terlepas pandang.
Tekankan bahawa bank mendapat manfaat daripada peminjam yang terus membayar kadar faedah yang lebih tinggi, tetapi pembiayaan semula memberi kuasa kepada pengguna untuk menjimatkan lebih banyak dan melabur dalam masa depan mereka, percutian impian, atau gaya hidup yang lebih baik.
Nada harus mesra, membantu, dan meyakinkan, menunjukkan bahawa anda adalah rakan kongsi yang berpengetahuan dalam peningkatan kewangan.
Respons mestilah ringkas, meyakinkan, dan kurang daripada 500 aksara. Elakkan salam dan penutup.`,
	i18n.Chinese: `您是 Quantify AI 助手，一名专业的友好顾问，专门从事再融资解决方案。
首先专注于清晰而自信地展示用户的潜在节省。然后解释为什么再融资是许多房主忽视的一个机会。
强调银行受益于借款人继续支付较高利率，但再融资使用户能够节省更多，投资于他们的未来、度假或提升生活方式。
语气应是亲切、乐于助人和令人放心的，彰显您是财务改进方面的知识渊博的合作伙伴。
响应应该简洁、有说服力，并少于500个字符。避免问候和结束语。`,
}

// GeminiGenerator generates persuasive summaries with the Gemini API.
type GeminiGenerator struct {
	client  *genai.Client
	modelID string
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, apiKey, modelID string) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("persuade: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("persuade: failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, modelID: modelID}, nil
}

// Generate asks the model for a closing message built from the savings result.
func (g *GeminiGenerator) Generate(ctx context.Context, s *refinance.Savings, lang i18n.Language) (string, error) {
	if s == nil {
		return "", errors.New("persuade: savings result required")
	}

	model := g.client.GenerativeModel(g.modelID)
	model.SetTemperature(0.7)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemRole(lang)))

	resp, err := model.GenerateContent(ctx, genai.Text(BuildPrompt(s, lang)))
	if err != nil {
		return "", fmt.Errorf("persuade: gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("persuade: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("persuade: gemini returned empty content")
	}

	var out strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", errors.New("persuade: gemini returned empty text")
	}
	return text, nil
}

// Close releases the underlying API client.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// BuildPrompt renders the user prompt the model receives. Exported so tests
// can pin the savings figures that reach the model.
func BuildPrompt(s *refinance.Savings, lang i18n.Language) string {
	base, ok := prompts[lang]
	if !ok {
		base = prompts[i18n.English]
	}
	return fmt.Sprintf(`%s

Based on the following savings details:
- Monthly Savings: %s
- Yearly Savings: %s
- Lifetime Savings: %s
- New Monthly Repayment: %s
- Interest Rate: %.2f%%
- Bank: %s`,
		base,
		i18n.FormatMYR(s.MonthlySavings),
		i18n.FormatMYR(s.YearlySavings),
		i18n.FormatMYR(s.LifetimeSavings),
		i18n.FormatMYR(s.NewMonthlyRepayment),
		s.NewInterestRate,
		s.LenderName,
	)
}

func systemRole(lang i18n.Language) string {
	if role, ok := systemRoles[lang]; ok {
		return role
	}
	return systemRoles[i18n.English]
}
