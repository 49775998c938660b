package classifier

import "regexp"

// GeneralTopic is returned by PrimaryTopic when no category keyword occurs.
const GeneralTopic = "عام"

type topicKeywords struct {
	Topic    string
	Keywords []string
}

// Declaration order is significant: the first category reaching the maximum
// count wins a tie.
var primaryTopics = []topicKeywords{
	{Topic: "فقه", Keywords: []string{"حكم", "حلال", "حرام", "مكروه", "مستحب", "واجب", "يجوز", "فقه"}},
	{Topic: "عقيدة", Keywords: []string{"عقيدة", "إيمان", "توحيد", "الله", "صفات", "أسماء"}},
	{Topic: "تفسير", Keywords: []string{"تفسير", "آية", "سورة", "قرآن", "معنى"}},
	{Topic: "حديث", Keywords: []string{"حديث", "روى", "البخاري", "مسلم", "سنن", "صحيح"}},
	{Topic: "سيرة", Keywords: []string{"سيرة", "النبي", "غزوة", "صحابة"}},
	{Topic: "أخلاق", Keywords: []string{"أخلاق", "آداب", "تزكية"}},
}

var topicVocabulary = []string{
	"فقه", "عقيدة", "تفسير", "حديث", "سيرة", "أخلاق", "مقاصد", "أصول",
	"معاملات", "عبادات", "أحوال شخصية", "جنايات", "سياسة شرعية",
}

var scholars = []string{
	"ابن تيمية", "ابن القيم", "الشافعي", "مالك", "أبو حنيفة",
	"أحمد بن حنبل", "الغزالي", "ابن رشد", "ابن حزم", "الشاطبي",
}

// Naming one of these in a query raises expertise confidence.
var confidenceScholars = []string{"ابن تيمية", "ابن القيم", "الشاطبي"}

var madhabNames = []string{"حنفي", "مالكي", "شافعي", "حنبلي", "ظاهري", "زيدي", "إمامي", "إباضي"}

var technicalTerms = []string{
	"اصطلاح", "تعليل", "استنباط", "قياس", "استحسان", "استصحاب",
	"مقاصد", "علة", "معلول", "مشروط", "متعدي", "لازم", "تخصيص",
	"تقييد", "إطلاق", "عموم", "خصوص", "مجمل", "مبين", "منسوخ", "ناسخ",
}

var (
	comparisonPhrases = []string{"الفرق بين", "مقارنة"}
	evidencePhrases   = []string{"الدليل", "البرهان"}
)

var (
	beginnerTerms     = []string{"ما هو", "كيف", "ما معنى", "مبتدئ", "أساسي"}
	intermediateTerms = []string{"تفصيل", "شرح", "مقارنة", "الفرق بين", "رأي"}
	advancedTerms     = []string{"دليل", "حجة", "أصول", "قواعد", "علة", "ترجيح", "تحقيق"}
)

// sura marker, chapter token, optional verse marker characters, verse digits
var scriptureRef = regexp.MustCompile(`سورة\s+(\S+)\s*[:آية]*\s*(\d+)`)

const (
	weightLength     = 0.2
	weightTechnical  = 0.4
	weightComparison = 0.15
	weightEvidence   = 0.15
	weightMultipart  = 0.1

	lengthNorm    = 300.0
	technicalNorm = 5.0
)
