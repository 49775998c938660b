package contextplan

import (
	"strings"
	"testing"
	"time"

	"github.com/yungbote/shariabridge-backend/internal/assistant/classifier"
	"github.com/yungbote/shariabridge-backend/internal/assistant/knowledge"
	"github.com/yungbote/shariabridge-backend/internal/assistant/reasoning"
	"github.com/yungbote/shariabridge-backend/internal/assistant/search"
)

func profile() knowledge.UserProfile {
	return knowledge.UserProfile{TopicsOfInterest: []string{}, LanguagePreference: "formal", ExpertiseLevel: classifier.Intermediate}
}

func TestRenderMinimalPrompt(t *testing.T) {
	ec := Assemble("س", profile(), knowledge.ConversationContext{}, nil, nil, nil)
	p := RenderSystemPrompt(ec)

	for _, want := range []string{
		"لمستوى المستخدم (متوسط)",
		"- المذهب المفضل: غير محدد",
		"- مستوى الفهم: متوسط",
		"- المواضيع السابقة: لم يتم تحديد مواضيع محددة بعد",
		"- أسلوب التواصل المفضل: formal",
		`دائماً ابدأ ردك بـ "` + ReplyPrefix + `"`,
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	if strings.Contains(p, "٦.") || strings.Contains(p, "٧.") {
		t.Fatalf("search/reasoning blocks rendered without input")
	}
}

func TestRenderBlockOrder(t *testing.T) {
	sr := &search.Result{Sources: []string{"أ", "ب"}, Reliability: 0.9}
	layers := []reasoning.Layer{{Title: "ط1", Content: strings.Repeat("م", 200)}, {Title: "ط2", Content: "قصير"}}
	prof := profile()
	prof.PreferredMadhab = "مالكي"
	prof.TopicsOfInterest = []string{"فقه", "أصول"}

	p := RenderSystemPrompt(Assemble("س", prof, knowledge.ConversationContext{}, sr, layers, nil))

	order := []string{"٥. الموازنة", "٦. تكامل نتائج البحث", "٧. تكامل التحليل المنطقي", "المعلومات المستخلصة عن المستخدم", "دائماً ابدأ ردك"}
	last := -1
	for _, marker := range order {
		i := strings.Index(p, marker)
		if i < 0 || i <= last {
			t.Fatalf("marker %q out of order (at %d, previous %d)", marker, i, last)
		}
		last = i
	}
	if !strings.Contains(p, "- المذهب المفضل: مالكي") || !strings.Contains(p, "- المواضيع السابقة: فقه، أصول") {
		t.Fatalf("profile block wrong")
	}
}

func TestSearchBlockFallbacks(t *testing.T) {
	block := SearchBlock(search.FailureResult("س", time.Time{}))
	for _, want := range []string{
		"- من القرآن الكريم: لم يتم العثور على أدلة قرآنية محددة",
		"- من السنة النبوية: لم يتم العثور على أحاديث محددة",
		"- من الإجماع: لم يتم العثور على إجماع محدد",
		"- من القياس: لم يتم العثور على قياس محدد",
		"- المذهب الحنبلي: لم يتم العثور على رأي محدد",
		"لم يتم العثور على آراء معاصرة محددة",
		"لم يتم استخلاص نقاط رئيسية محددة",
		"لم يتم العثور على نقاط خلاف واضحة",
		"لم يتم تحديد رأي راجح واضح",
		"السياق التفصيلي:\n" + search.FailureContext,
	} {
		if !strings.Contains(block, want) {
			t.Fatalf("search block missing %q", want)
		}
	}
}

func TestSearchBlockJoins(t *testing.T) {
	sr := search.Result{
		Sources:           []string{"أ", "ب"},
		Evidences:         search.Evidences{Quran: []string{"آية1", "آية2"}},
		Madhabs:           search.Madhabs{Shafii: "يجوز"},
		ContemporaryViews: []string{"رأي1", "رأي2"},
		RecommendedView:   "الجواز",
	}
	block := SearchBlock(sr)
	for _, want := range []string{
		"المصادر التي تم البحث فيها: أ، ب",
		"- من القرآن الكريم: آية1، آية2",
		"- المذهب الشافعي: يجوز",
		"آراء العلماء المعاصرين:\nرأي1\nرأي2",
		"الرأي الراجح من خلال البحث:\nالجواز",
	} {
		if !strings.Contains(block, want) {
			t.Fatalf("search block missing %q", want)
		}
	}
}

func TestReasoningBlockExcerpts(t *testing.T) {
	block := ReasoningBlock([]reasoning.Layer{{Title: "ط1", Content: strings.Repeat("م", 200)}, {Title: "ط2", Content: "قصير"}})
	if !strings.Contains(block, "- ط1: "+strings.Repeat("م", 150)+"...\n- ط2: قصير...") {
		t.Fatalf("excerpts wrong:\n%s", block)
	}
	if strings.Contains(block, strings.Repeat("م", 151)) {
		t.Fatalf("excerpt longer than 150 runes")
	}
}

func TestAssembleExpertiseUsesRecentAnswered(t *testing.T) {
	conv := knowledge.ConversationContext{AnsweredQuestions: []knowledge.AnsweredQuestion{
		{Question: "ما هو"}, {Question: "دليل"}, {Question: "دليل"}, {Question: "دليل"}, {Question: "دليل"}, {Question: "دليل"},
	}}
	ec := Assemble("ترجيح", profile(), conv, nil, nil, classifier.Heuristic{})
	if ec.Expertise.Level != classifier.Advanced {
		t.Fatalf("level=%s", ec.Expertise.Level)
	}
	if ec.Expertise.Factors.BeginnerTerms != 0 {
		t.Fatalf("question outside the last five was counted: %+v", ec.Expertise.Factors)
	}
	if !strings.Contains(RenderSystemPrompt(ec), "- مستوى الفهم: متقدم") {
		t.Fatalf("advanced label not rendered")
	}
}
