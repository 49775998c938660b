package classifier

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPrimaryTopic(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", GeneralTopic},
		{"no keywords", "مرحبا بكم", GeneralTopic},
		{"fiqh wins by count", "ما حكم هذا وهل هو حلال", "فقه"},
		{"tie goes to first category", "تفسير حديث", "تفسير"},
		{"hadith", "روى البخاري هذا الحديث", "حديث"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PrimaryTopic(tc.text); got != tc.want {
				t.Fatalf("PrimaryTopic(%q)=%q want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestTopicsVocabularyOrder(t *testing.T) {
	got := Topics("في المعاملات وأصول الفقه")
	want := []string{"فقه", "أصول", "معاملات"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("topics mismatch (-want +got):\n%s", diff)
	}
	if got := Topics("لا شيء هنا"); len(got) != 0 {
		t.Fatalf("expected no topics, got %v", got)
	}
}

func TestScriptureReferences(t *testing.T) {
	text := "قال تعالى في سورة البقرة آية 255 وفي سورة النساء 3 ثم سورة البقرة آية 255"
	got := ScriptureReferences(text)
	want := []string{"البقرة:255", "النساء:3", "البقرة:255"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("refs mismatch (-want +got):\n%s", diff)
	}
	if got := ScriptureReferences("سورة بلا رقم"); len(got) != 0 {
		t.Fatalf("expected none, got %v", got)
	}
}

func TestScholarReferencesListOrder(t *testing.T) {
	got := ScholarReferences("ذكر الشافعي ثم ابن تيمية والشاطبي")
	want := []string{"ابن تيمية", "الشافعي", "الشاطبي"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("scholars mismatch (-want +got):\n%s", diff)
	}
}

func TestMadhabEarliestOccurrence(t *testing.T) {
	cases := []struct{ text, want string }{
		{"أنا حنبلي وأحب المذهب الشافعي", "حنبلي"},
		{"شافعي ثم حنفي", "شافعي"},
		{"لا مذهب", ""},
	}
	for _, tc := range cases {
		if got := Madhab(tc.text); got != tc.want {
			t.Fatalf("Madhab(%q)=%q want %q", tc.text, got, tc.want)
		}
	}
}

func TestComplexity(t *testing.T) {
	approx := func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
	runes := func(s string) float64 { return float64(len([]rune(s))) }

	if got := Complexity(""); got != 0 {
		t.Fatalf("empty: got %v", got)
	}
	if got, want := Complexity("الفرق بين"), runes("الفرق بين")/300*0.2+0.15; !approx(got, want) {
		t.Fatalf("comparison: got %v want %v", got, want)
	}
	if got, want := Complexity("أ? ب?"), runes("أ? ب?")/300*0.2+0.1; !approx(got, want) {
		t.Fatalf("multipart: got %v want %v", got, want)
	}
	// the Arabic question mark does not count as a part separator
	if got, want := Complexity("أ؟ ب؟"), runes("أ؟ ب؟")/300*0.2; !approx(got, want) {
		t.Fatalf("arabic question mark: got %v want %v", got, want)
	}
	technical := "قياس استحسان استصحاب تخصيص تقييد عموم"
	if got, want := Complexity(technical), runes(technical)/300*0.2+0.4; !approx(got, want) {
		t.Fatalf("technical cap: got %v want %v", got, want)
	}
	if got := Complexity(strings.Repeat("ا", 3000)); got != 1 {
		t.Fatalf("clamp: got %v", got)
	}
}

func TestEstimateExpertise(t *testing.T) {
	cases := []struct {
		name       string
		query      string
		recent     []string
		level      Level
		confidence float64
	}{
		{"empty is intermediate", "", nil, Intermediate, 0.5},
		{"advanced tie falls to beginner", "ما هو الدليل", nil, Beginner, 0.6},
		{"advanced", "ما ترجيح الدليل وقواعد الأصول", nil, Advanced, 0.9},
		{"scholar bonus capped", "ما ترجيح الدليل وقواعد الأصول عند ابن تيمية", nil, Advanced, 0.95},
		{"recent half weight", "", []string{"شرح"}, Intermediate, 0.55},
		{"only last five recent", "", []string{"ما هو", "شرح", "شرح", "شرح", "شرح", "شرح"}, Intermediate, 0.75},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EstimateExpertise(tc.query, tc.recent)
			if got.Level != tc.level {
				t.Fatalf("level=%s want %s (%+v)", got.Level, tc.level, got.Factors)
			}
			if math.Abs(got.Confidence-tc.confidence) > 1e-9 {
				t.Fatalf("confidence=%v want %v", got.Confidence, tc.confidence)
			}
		})
	}
}

func TestEstimateExpertiseLongQueryBonus(t *testing.T) {
	q := strings.Repeat("س", 201)
	got := EstimateExpertise(q, nil)
	if math.Abs(got.Confidence-0.6) > 1e-9 {
		t.Fatalf("confidence=%v want 0.6", got.Confidence)
	}
	if got.Factors.QueryLength != 201 {
		t.Fatalf("query length=%d", got.Factors.QueryLength)
	}
}

func TestLevelLabel(t *testing.T) {
	if Beginner.Label() != "مبتدئ" || Intermediate.Label() != "متوسط" || Advanced.Label() != "متقدم" {
		t.Fatalf("unexpected labels")
	}
}
