// Package contextplan assembles the per-turn context and renders the final
// system prompt. Block order is fixed: later instructions take precedence.
package contextplan

import (
	"strings"

	"github.com/yungbote/shariabridge-backend/internal/assistant/classifier"
	"github.com/yungbote/shariabridge-backend/internal/assistant/knowledge"
	"github.com/yungbote/shariabridge-backend/internal/assistant/reasoning"
	"github.com/yungbote/shariabridge-backend/internal/assistant/search"
)

// ReplyPrefix opens every assistant reply.
const ReplyPrefix = "👨🏻‍⚕️ المساعد الشرعي: "

const excerptRunes = 150

type EnhancedContext struct {
	Query            string
	Profile          knowledge.UserProfile
	Conversation     knowledge.ConversationContext
	Expertise        classifier.Expertise
	SearchContext    string
	ReasoningContext string
}

// Assemble estimates expertise from the query and the recent answered
// questions, and renders the search and reasoning blocks when present.
func Assemble(query string, profile knowledge.UserProfile, conv knowledge.ConversationContext, sr *search.Result, layers []reasoning.Layer, clf classifier.Classifier) EnhancedContext {
	if clf == nil {
		clf = classifier.Heuristic{}
	}
	recent := conv.AnsweredQuestions
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	questions := make([]string, len(recent))
	for i, aq := range recent {
		questions[i] = aq.Question
	}

	ec := EnhancedContext{
		Query:        query,
		Profile:      profile,
		Conversation: conv,
		Expertise:    clf.Expertise(query, questions),
	}
	if sr != nil {
		ec.SearchContext = SearchBlock(*sr)
	}
	if len(layers) > 0 {
		ec.ReasoningContext = ReasoningBlock(layers)
	}
	return ec
}

func orFallback(items []string, sep, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, sep)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func SearchBlock(sr search.Result) string {
	const noOpinion = "لم يتم العثور على رأي محدد"
	var b strings.Builder
	b.WriteString("لقد قمت بالبحث المتقدم والشامل عن هذا الموضوع في المصادر الشرعية الموثوقة.\n\n")
	b.WriteString("المصادر التي تم البحث فيها: " + strings.Join(sr.Sources, "، ") + "\n\n")

	b.WriteString("الأدلة الشرعية المستخرجة:\n")
	b.WriteString("- من القرآن الكريم: " + orFallback(sr.Evidences.Quran, "، ", "لم يتم العثور على أدلة قرآنية محددة") + "\n")
	b.WriteString("- من السنة النبوية: " + orFallback(sr.Evidences.Hadith, "، ", "لم يتم العثور على أحاديث محددة") + "\n")
	b.WriteString("- من الإجماع: " + orFallback(sr.Evidences.Ijma, "، ", "لم يتم العثور على إجماع محدد") + "\n")
	b.WriteString("- من القياس: " + orFallback(sr.Evidences.Qiyas, "، ", "لم يتم العثور على قياس محدد") + "\n\n")

	b.WriteString("آراء المذاهب الفقهية:\n")
	b.WriteString("- المذهب الحنفي: " + orDefault(sr.Madhabs.Hanafi, noOpinion) + "\n")
	b.WriteString("- المذهب المالكي: " + orDefault(sr.Madhabs.Maliki, noOpinion) + "\n")
	b.WriteString("- المذهب الشافعي: " + orDefault(sr.Madhabs.Shafii, noOpinion) + "\n")
	b.WriteString("- المذهب الحنبلي: " + orDefault(sr.Madhabs.Hanbali, noOpinion) + "\n\n")

	b.WriteString("آراء العلماء المعاصرين:\n")
	b.WriteString(orFallback(sr.ContemporaryViews, "\n", "لم يتم العثور على آراء معاصرة محددة") + "\n\n")
	b.WriteString("النقاط الرئيسية المستخلصة:\n")
	b.WriteString(orFallback(sr.Highlights, "\n", "لم يتم استخلاص نقاط رئيسية محددة") + "\n\n")
	b.WriteString("نقاط الخلاف (إن وجدت):\n")
	b.WriteString(orFallback(sr.ControversialPoints, "\n", "لم يتم العثور على نقاط خلاف واضحة") + "\n\n")
	b.WriteString("الرأي الراجح من خلال البحث:\n")
	b.WriteString(orDefault(sr.RecommendedView, "لم يتم تحديد رأي راجح واضح") + "\n\n")
	b.WriteString("السياق التفصيلي:\n")
	b.WriteString(sr.DetailedContext)
	return b.String()
}

func ReasoningBlock(layers []reasoning.Layer) string {
	var b strings.Builder
	b.WriteString("لقد قمت بتحليل منطقي متعدد الطبقات للسؤال، وفيما يلي النتائج الرئيسية:\n\n")
	for i, l := range layers {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + l.Title + ": " + excerpt(l.Content) + "...")
	}
	b.WriteString("\n\nتم عرض التحليل الكامل للمستخدم بالفعل، لذا ركز على تقديم الإجابة النهائية المبنية على هذا التحليل.")
	return b.String()
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= excerptRunes {
		return s
	}
	return string(r[:excerptRunes])
}
