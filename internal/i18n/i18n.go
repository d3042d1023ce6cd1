// Package i18n holds the localized message catalog for the chatbot. Wording
// is data, not logic: callers look messages up by key and language and never
// branch on the text itself.
package i18n

// Language is a supported conversation locale.
type Language string

const (
	English Language = "en"
	Malay   Language = "ms"
	Chinese Language = "zh"
)

// DefaultLanguage is used before the user has picked a locale.
const DefaultLanguage = English

// ParseChoice maps the numeric language-selection reply to a locale.
func ParseChoice(input string) (Language, bool) {
	switch input {
	case "1":
		return English, true
	case "2":
		return Malay, true
	case "3":
		return Chinese, true
	default:
		return "", false
	}
}

// Supported reports whether lang is a known locale.
func Supported(lang Language) bool {
	switch lang {
	case English, Malay, Chinese:
		return true
	}
	return false
}

// Key identifies a message in the catalog.
type Key string

const (
	KeyWelcomeBanner    Key = "welcome_banner"
	KeyWelcome          Key = "welcome"
	KeyInvalidInput     Key = "invalid_input"
	KeyAskName          Key = "ask_name"
	KeyAskReferral      Key = "ask_referral"
	KeyChoosePath       Key = "choose_path"
	KeyPathALoanAmount  Key = "path_a_loan_amount"
	KeyPathATenure      Key = "path_a_tenure"
	KeyPathARate        Key = "path_a_interest_rate"
	KeyPathBLoanAmount  Key = "path_b_original_loan_amount"
	KeyPathBTenure      Key = "path_b_original_tenure"
	KeyPathBPayment     Key = "path_b_monthly_payment"
	KeyPathBYearsPaid   Key = "path_b_years_paid"
	KeyNotBeneficial    Key = "not_beneficial"
	KeySavingsTooLow    Key = "savings_too_low"
	KeyCalcFailed       Key = "calc_failed"
	KeyThankYou         Key = "thank_you"
	KeySomethingWrong   Key = "something_wrong"
	KeyPersuadeFallback Key = "persuade_fallback"

	KeyErrLoanAmount Key = "err_loan_amount"
	KeyErrTenure     Key = "err_tenure"
	KeyErrRate       Key = "err_interest_rate"
	KeyErrRepayment  Key = "err_repayment"
	KeyErrYearsPaid  Key = "err_years_paid"
)

var catalog = map[Key]map[Language]string{
	KeyWelcomeBanner: {
		English: "Welcome to Quantify AI! 👋",
		Malay:   "Selamat datang ke Quantify AI! 👋",
		Chinese: "欢迎来到 Quantify AI！👋",
	},
	KeyWelcome: {
		English: "Discover how much you could potentially save on your housing loan.\n1️⃣ *English*\n2️⃣ *Bahasa Malaysia*\n3️⃣ *Chinese*",
		Malay:   "Ketahui berapa banyak anda boleh jimatkan daripada pinjaman perumahan anda.\n1️⃣ *Inggeris*\n2️⃣ *Bahasa Malaysia*\n3️⃣ *Cina*",
		Chinese: "想知道您在贷款上可节省多少吗？\n1️⃣ *英语*\n2️⃣ *马来语*\n3️⃣ *中文*",
	},
	KeyInvalidInput: {
		English: "*Invalid input.* Please try again.",
		Malay:   "*Input tidak sah.* Sila cuba lagi.",
		Chinese: "*输入无效。* 请再试一次。",
	},
	KeyAskName: {
		English: "*What's your name?*\n_Example: John Doe_",
		Malay:   "*Siapa nama anda?*\n_Contoh: John Doe_",
		Chinese: "*你的名字是什么？*\n_例如：John Doe_",
	},
	KeyAskReferral: {
		English: "*Do you have a referral code?*\nReply with the code, or type *skip* to continue without one.",
		Malay:   "*Adakah anda mempunyai kod rujukan?*\nBalas dengan kod tersebut, atau taip *skip* untuk teruskan tanpa kod.",
		Chinese: "*您有推荐码吗？*\n请回复推荐码，或输入 *skip* 继续。",
	},
	KeyChoosePath: {
		English: "*Do you know your outstanding loan details?*\n1️⃣ *Yes*\n2️⃣ *No*\n_This includes information like loan amount, tenure, and monthly repayment._",
		Malay:   "*Adakah anda tahu butiran pinjaman tertunggak anda?*\n1️⃣ *Ya*\n2️⃣ *Tidak*\n_Ini termasuk maklumat seperti jumlah pinjaman, tempoh, dan bayaran balik bulanan._",
		Chinese: "*您知道您的未偿贷款详细信息吗？*\n1️⃣ *是*\n2️⃣ *否*\n_这包括贷款金额、期限和每月还款等信息。_",
	},
	KeyPathALoanAmount: {
		English: "*What is your outstanding loan amount?*\n_Example: 300000 for RM300,000_",
		Malay:   "*Apakah jumlah pinjaman tertunggak anda?*\n_Contoh: 300000 untuk RM300,000_",
		Chinese: "*您的未偿还贷款金额是多少？*\n_例如：300000 表示 RM300,000_",
	},
	KeyPathATenure: {
		English: "*What is your loan tenure in years?*\n_Example: 20 for 20 years_",
		Malay:   "*Apakah tempoh pinjaman anda dalam tahun?*\n_Contoh: 20 untuk 20 tahun_",
		Chinese: "*您的贷款期限是多少年？*\n_例如：20 表示 20 年_",
	},
	KeyPathARate: {
		English: "*What is your current interest rate?*\n_Example: 4.5 for 4.5%_",
		Malay:   "*Apakah kadar faedah semasa anda?*\n_Contoh: 4.5 untuk 4.5%_",
		Chinese: "*您当前的利率是多少？*\n_例如：4.5 表示 4.5%_",
	},
	KeyPathBLoanAmount: {
		English: "*What was your original loan amount?*\n_Example: 450000 for RM450,000_",
		Malay:   "*Apakah jumlah pinjaman asal anda?*\n_Contoh: 450000 untuk RM450,000_",
		Chinese: "*您的原始贷款金额是多少？*\n_例如：450000 表示 RM450,000_",
	},
	KeyPathBTenure: {
		English: "*What was your original loan tenure in years?*\n_Example: 25 for 25 years_",
		Malay:   "*Apakah tempoh pinjaman asal anda dalam tahun?*\n_Contoh: 25 untuk 25 tahun_",
		Chinese: "*您的原始贷款期限是多少年？*\n_例如：25 表示 25 年_",
	},
	KeyPathBPayment: {
		English: "*What is your current monthly repayment?*\n_Example: 2200 for RM2,200_",
		Malay:   "*Apakah bayaran balik bulanan anda sekarang?*\n_Contoh: 2200 untuk RM2,200_",
		Chinese: "*您当前的每月还款额是多少？*\n_例如：2200 表示 RM2,200_",
	},
	KeyPathBYearsPaid: {
		English: "*How many years have you been paying this loan?*\n_Example: 5 for 5 years_",
		Malay:   "*Anda telah membayar pinjaman ini selama berapa tahun?*\n_Contoh: 5 untuk 5 tahun_",
		Chinese: "*您已经支付了多少年的贷款？*\n_例如：5 表示 5 年_",
	},
	KeyNotBeneficial: {
		English: "Your current loan terms are already optimal. Refinancing might not be beneficial at this time.",
		Malay:   "Terma pinjaman semasa anda sudah optimum. Pembiayaan semula mungkin tidak bermanfaat pada masa ini.",
		Chinese: "您当前的贷款条件已经是最优的。目前再融资可能没有好处。",
	},
	KeySavingsTooLow: {
		English: "The savings from refinancing are below RM10,000. It might not be worth refinancing at this time.",
		Malay:   "Penjimatan daripada pembiayaan semula adalah kurang daripada RM10,000. Pembiayaan semula mungkin tidak berbaloi pada masa ini.",
		Chinese: "再融资的节省低于 RM10,000。目前再融资可能不值得。",
	},
	KeyCalcFailed: {
		English: "We were unable to analyze your loan details. Please contact support.",
		Malay:   "Kami tidak dapat menganalisis butiran pinjaman anda. Sila hubungi sokongan.",
		Chinese: "我们无法分析您的贷款详细信息。请联系客服。",
	},
	KeyThankYou: {
		English: "Thank you for using our service! If you have any questions, please contact our admin at %s. Alternatively, if you would like to restart the process, kindly type \"restart\".",
		Malay:   "Terima kasih kerana menggunakan perkhidmatan kami! Jika anda mempunyai sebarang soalan, sila hubungi pentadbir kami di %s. Sebagai alternatif, taip \"restart\" untuk memulakan semula.",
		Chinese: "感谢您使用我们的服务！如有任何疑问，请通过 %s 联系管理员。如需重新开始，请输入 \"restart\"。",
	},
	KeySomethingWrong: {
		English: "An unexpected error occurred. Please try again or type \"restart\".",
		Malay:   "Ralat tidak dijangka berlaku. Sila cuba lagi atau taip \"restart\".",
		Chinese: "发生意外错误。请重试或输入 \"restart\"。",
	},
	KeyPersuadeFallback: {
		English: "Refinancing could save you significant amounts over time. Contact us to learn more about optimizing your finances.",
		Malay:   "Pembiayaan semula boleh menjimatkan jumlah yang besar sepanjang tempoh pinjaman anda. Hubungi kami untuk maklumat lanjut.",
		Chinese: "再融资可以帮助您在贷款期限内节省大量资金。联系我们了解更多信息。",
	},
	KeyErrLoanAmount: {
		English: "*Invalid loan amount.* Please enter a number between RM100,000 and RM30,000,000.",
		Malay:   "*Jumlah pinjaman tidak sah.* Sila masukkan nombor antara RM100,000 dan RM30,000,000.",
		Chinese: "*贷款金额无效。* 请输入 RM100,000 至 RM30,000,000 之间的数字。",
	},
	KeyErrTenure: {
		English: "*Invalid tenure.* Please enter a whole number of years within the allowed range.",
		Malay:   "*Tempoh tidak sah.* Sila masukkan bilangan tahun penuh dalam julat yang dibenarkan.",
		Chinese: "*期限无效。* 请输入允许范围内的整数年份。",
	},
	KeyErrRate: {
		English: "*Invalid interest rate.* Please enter a rate between 3 and 8.",
		Malay:   "*Kadar faedah tidak sah.* Sila masukkan kadar antara 3 dan 8.",
		Chinese: "*利率无效。* 请输入 3 至 8 之间的利率。",
	},
	KeyErrRepayment: {
		English: "*Invalid monthly repayment.* Please enter an amount between RM500 and RM60,000.",
		Malay:   "*Bayaran balik bulanan tidak sah.* Sila masukkan jumlah antara RM500 dan RM60,000.",
		Chinese: "*每月还款额无效。* 请输入 RM500 至 RM60,000 之间的金额。",
	},
	KeyErrYearsPaid: {
		English: "*Invalid years paid.* It must be at least 0 and less than your original tenure.",
		Malay:   "*Tahun pembayaran tidak sah.* Ia mestilah sekurang-kurangnya 0 dan kurang daripada tempoh asal anda.",
		Chinese: "*已支付年数无效。* 必须至少为 0 且小于原始贷款期限。",
	},
}

// T returns the message for key in lang, falling back to English when the
// translation or the key is missing.
func T(key Key, lang Language) string {
	translations, ok := catalog[key]
	if !ok {
		return ""
	}
	if msg, ok := translations[lang]; ok {
		return msg
	}
	return translations[English]
}

// SummaryLabels carries the localized field labels for the savings summary.
type SummaryLabels struct {
	Header         string
	MonthlySavings string
	YearlySavings  string
	TotalSavings   string
	NewRepayment   string
	Lender         string
	InterestRate   string
	Analysis       string
}

var summaryLabels = map[Language]SummaryLabels{
	English: {
		Header:         "Here is your refinancing summary:",
		MonthlySavings: "Monthly Savings",
		YearlySavings:  "Yearly Savings",
		TotalSavings:   "Total Savings",
		NewRepayment:   "New Monthly Repayment",
		Lender:         "Bank",
		InterestRate:   "Interest Rate",
		Analysis:       "Please hold on while we analyze if refinancing benefits you.",
	},
	Malay: {
		Header:         "Berikut adalah ringkasan pembiayaan semula anda:",
		MonthlySavings: "Penjimatan Bulanan",
		YearlySavings:  "Penjimatan Tahunan",
		TotalSavings:   "Jumlah Penjimatan",
		NewRepayment:   "Bayaran Bulanan Baru",
		Lender:         "Bank",
		InterestRate:   "Kadar Faedah",
		Analysis:       "Sila tunggu sementara kami menganalisis sama ada pembiayaan semula memberi manfaat kepada anda.",
	},
	Chinese: {
		Header:         "以下是您的再融资摘要：",
		MonthlySavings: "每月节省",
		YearlySavings:  "每年节省",
		TotalSavings:   "总节省",
		NewRepayment:   "新的每月还款",
		Lender:         "银行",
		InterestRate:   "利率",
		Analysis:       "请稍等，我们正在分析再融资是否对您有益。",
	},
}

// Summary returns the summary labels for lang, falling back to English.
func Summary(lang Language) SummaryLabels {
	if labels, ok := summaryLabels[lang]; ok {
		return labels
	}
	return summaryLabels[English]
}
