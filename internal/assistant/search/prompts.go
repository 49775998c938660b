package search

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yungbote/shariabridge-backend/internal/inference/engine"
)

const rewriteSystemPrompt = `أنت خبير في تحسين استعلامات البحث الإسلامية. قم بتحويل سؤال المستخدم إلى 3 استعلامات بحث مختلفة ومتخصصة:

1. استعلام بحث دقيق للفتاوى المتعلقة بالموضوع
2. استعلام بحث للأدلة الشرعية (قرآن، سنة، إجماع)
3. استعلام بحث للآراء العلمية والفقهية المقارنة

أضف المصطلحات الشرعية المتخصصة التي تُحسن نتائج البحث وتستهدف المواقع الإسلامية الموثوقة.
قدم الاستعلامات بترقيم وبدون تعليقات إضافية.`

const synthesisTemplate = `انت خبير في تحليل وتلخيص المعلومات الشرعية. قم بتخيل أنك بحثت في المواقع الإسلامية الموثوقة التالية:
%s

وقمت بالبحث باستخدام الاستعلامات التالية:
%s

السؤال الأصلي هو: %s

قم بتزويدي بتلخيص شامل للمعلومات التي من المرجح أن تجدها في هذه المواقع الموثوقة، متضمنًا:
1. الآيات القرآنية المتعلقة بالموضوع
2. الأحاديث النبوية ذات الصلة مع درجة صحتها
3. آراء المذاهب الفقهية الرئيسية
4. آراء العلماء المعاصرين
5. نقاط الاتفاق والاختلاف الرئيسية
6. الحكم الراجح بناءً على قوة الأدلة

قدم المعلومات بتنسيق JSON يتبع المخطط التالي:
{
  "evidences": {
    "quran": [],
    "hadith": [],
    "ijma": [],
    "qiyas": []
  },
  "scholarlyOpinions": [],
  "madhabs": {
    "hanafi": "",
    "maliki": "",
    "shafii": "",
    "hanbali": ""
  },
  "contemporaryViews": [],
  "highlights": [],
  "controversialPoints": [],
  "recommendedView": "",
  "detailedContext": ""
}`

const (
	documentsHeader = "مقتطفات من نتائج البحث الفعلية في المواقع الموثوقة (استخدمها عند التلخيص):"
	maxDocuments    = 10
	snippetRunes    = 300
)

func buildSynthesisPrompt(sources, expanded []string, query string, docs []Document) string {
	prompt := fmt.Sprintf(synthesisTemplate, strings.Join(sources, ", "), strings.Join(expanded, "\n"), query)
	if len(docs) == 0 {
		return prompt
	}
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\n")
	b.WriteString(documentsHeader)
	for i, d := range docs {
		if i >= maxDocuments {
			break
		}
		snippet := strings.TrimSpace(d.Snippet)
		if utf8.RuneCountInString(snippet) > snippetRunes {
			snippet = string([]rune(snippet)[:snippetRunes]) + "..."
		}
		fmt.Fprintf(&b, "\n- %s (%s): %s", strings.TrimSpace(d.Title), d.URL, snippet)
	}
	return b.String()
}

func stringArray() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

var synthesisSchema = &engine.JSONSchema{
	Name: "search_synthesis",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"evidences": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"quran":  stringArray(),
					"hadith": stringArray(),
					"ijma":   stringArray(),
					"qiyas":  stringArray(),
				},
			},
			"scholarlyOpinions": stringArray(),
			"madhabs": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"hanafi":  map[string]any{"type": "string"},
					"maliki":  map[string]any{"type": "string"},
					"shafii":  map[string]any{"type": "string"},
					"hanbali": map[string]any{"type": "string"},
				},
			},
			"contemporaryViews":   stringArray(),
			"highlights":          stringArray(),
			"controversialPoints": stringArray(),
			"recommendedView":     map[string]any{"type": "string"},
			"detailedContext":     map[string]any{"type": "string"},
		},
	},
}
