package knowledge

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/yungbote/shariabridge-backend/internal/assistant/classifier"
)

var labels = []string{
	"فقه", "عقيدة", "تفسير", "حديث", "سيرة", "أخلاق", "مقاصد", "أصول",
	"معاملات", "عبادات", "جنايات", "حنفي", "مالكي", "ابن حزم", "كلمة",
}

func TestConceptNetworkSymmetricProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewSession(Options{})
		turns := rapid.IntRange(1, 6).Draw(t, "turns")
		for i := 0; i < turns; i++ {
			words := rapid.SliceOfN(rapid.SampledFrom(labels), 0, 6).Draw(t, "words")
			s.RecordAssistantTurn("q", strings.Join(words, " "), 0)
		}
		net := s.Snapshot().ConceptNetwork
		for a, edges := range net {
			for b, w := range edges {
				if a == b {
					t.Fatalf("self edge %s", a)
				}
				if net[b][a] != w {
					t.Fatalf("edge %s->%s=%d but reverse=%d", a, b, w, net[b][a])
				}
			}
		}
	})
}

func TestExpertiseNeverDemotesProperty(t *testing.T) {
	rank := map[classifier.Level]int{classifier.Beginner: 0, classifier.Intermediate: 1, classifier.Advanced: 2}
	rapid.Check(t, func(t *rapid.T) {
		s := NewSession(Options{})
		prev := rank[s.Snapshot().User.ExpertiseLevel]
		turns := rapid.IntRange(1, 8).Draw(t, "turns")
		for i := 0; i < turns; i++ {
			words := rapid.SliceOfN(rapid.SampledFrom(append(labels, "?", "الدليل", "الفرق بين", "قياس", "تخصيص")), 0, 30).Draw(t, "words")
			s.RecordUserTurn(strings.Join(words, " "))
			cur := rank[s.Snapshot().User.ExpertiseLevel]
			if cur < prev {
				t.Fatalf("demoted from %d to %d", prev, cur)
			}
			prev = cur
		}
	})
}
