package bot

// Language is a supported reply language. All language codes coming from
// storage or callbacks go through ParseLanguage, so a typo can never select
// a missing locale.
type Language string

const (
	LangEnglish Language = "en"
	LangArabic  Language = "ar"
	LangFrench  Language = "fr"
)

// SupportedLanguages lists every language the bot replies in.
var SupportedLanguages = []Language{LangEnglish, LangArabic, LangFrench}

// ParseLanguage maps a language code to a Language, defaulting to English
// for unrecognized or empty codes.
func ParseLanguage(code string) Language {
	switch Language(code) {
	case LangArabic:
		return LangArabic
	case LangFrench:
		return LangFrench
	default:
		return LangEnglish
	}
}

// Localized is a parallel message table: exactly one variant per supported
// language for each message kind.
type Localized map[Language]string

// For returns the variant for lang, falling back to English.
func (l Localized) For(lang Language) string {
	if s, ok := l[lang]; ok {
		return s
	}
	return l[LangEnglish]
}

// =============================================================================
// Command messages
// =============================================================================

const MsgWelcome = `👋 *Welcome to Amazon Link Bot!*

📸 *How to use:*
1. Choose your language
2. Send me a product photo
3. I'll send you an Amazon link

🛒 *Only Amazon links*
👇 *Choose your language:*`

const MsgHelp = `*🤖 Amazon Link Bot - Help*

*English:*
/start - Start bot and choose language
/help - Show this message
/link <product> - Get a direct Amazon link

*العربية:*
/start - بدء البوت واختيار اللغة
/help - عرض رسالة المساعدة
/link <منتج> - الحصول على رابط أمازون مباشر

*Français:*
/start - Démarrer le bot et choisir la langue
/help - Afficher ce message
/link <produit> - Obtenir un lien Amazon direct

*📸 How to use:*
1. Send /start
2. Choose language
3. Send product photo
4. Get Amazon link

*🛒 Only Amazon:*
This bot only sends Amazon affiliate links.`

const (
	MsgLinkUsage     = "Usage: /link product name\nمثال: /link iphone 15"
	MsgLinkResultFmt = "🛒 *Amazon link for:* %s\n\n%s"
)

// MsgChooseLanguageFirst is deliberately a single tri-lingual string: at
// this point the user has no stored language to select a variant with.
const MsgChooseLanguageFirst = "Please choose language first / اختر اللغة أولاً / Veuillez d'abord choisir la langue"

// =============================================================================
// Photo flow messages
// =============================================================================

var MsgLanguageConfirmed = Localized{
	LangEnglish: "✅ *English selected!*\n\n📸 Now send me a photo of any product.\n\nI'll analyze it and send you an Amazon link.",
	LangArabic:  "✅ *تم اختيار العربية!*\n\n📸 الآن أرسل لي صورة أي منتج.\n\nسأحللها وأرسل لك رابط أمازون.",
	LangFrench:  "✅ *Français sélectionné!*\n\n📸 Maintenant envoyez-moi une photo de n'importe quel produit.\n\nJe vais l'analyser et vous envoyer un lien Amazon.",
}

var MsgAnalyzing = Localized{
	LangEnglish: "🔍 *Analyzing photo...*",
	LangArabic:  "🔍 *جاري تحليل الصورة...*",
	LangFrench:  "🔍 *Analyse de la photo...*",
}

// MsgResultFmt is populated with the product name and the merchant link.
var MsgResultFmt = Localized{
	LangEnglish: "✅ *Photo analyzed*\n\n🔍 *Product:* %s\n\n🛒 *Amazon link:*\n%s\n\n📎 *Note:* This is a direct Amazon link",
	LangArabic:  "✅ *تم تحليل الصورة*\n\n🔍 *المنتج:* %s\n\n🛒 *رابط أمازون:*\n%s\n\n📎 *ملاحظة:* هذا رابط أمازون مباشر",
	LangFrench:  "✅ *Photo analysée*\n\n🔍 *Produit:* %s\n\n🛒 *Lien Amazon:*\n%s\n\n📎 *Note:* Ceci est un lien Amazon direct",
}

var MsgProcessingError = Localized{
	LangEnglish: "❌ Error processing photo. Please try again.",
	LangArabic:  "❌ خطأ في معالجة الصورة. حاول مرة أخرى.",
	LangFrench:  "❌ Erreur de traitement de la photo. Veuillez réessayer.",
}

var MsgSendAnother = Localized{
	LangEnglish: "📸 Send another product photo",
	LangArabic:  "📸 أرسل صورة منتج أخرى",
	LangFrench:  "📸 Envoyer une autre photo de produit",
}

// =============================================================================
// Button labels
// =============================================================================

var BtnOpenAmazon = Localized{
	LangEnglish: "🛒 Open Amazon",
	LangArabic:  "🛒 افتح أمازون",
	LangFrench:  "🛒 Ouvrir Amazon",
}

var BtnAnotherPhoto = Localized{
	LangEnglish: "📸 Another photo",
	LangArabic:  "📸 صورة أخرى",
	LangFrench:  "📸 Autre photo",
}

// Language picker buttons (shown before any language is known)
const (
	BtnLangEnglish = "🇺🇸 English"
	BtnLangArabic  = "🇸🇦 العربية"
	BtnLangFrench  = "🇫🇷 Français"
)

// Callback data
const (
	CallbackLangPrefix = "lang_"
	CallbackAnother    = "another"
)
