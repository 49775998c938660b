// Package classifier maps raw question and answer text to topic tags,
// citations and difficulty scores using fixed Arabic vocabularies.
package classifier

import (
	"math"
	"strings"
	"unicode/utf8"
)

type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

// Label is the Arabic name used inside prompts.
func (l Level) Label() string {
	switch l {
	case Beginner:
		return "مبتدئ"
	case Advanced:
		return "متقدم"
	default:
		return "متوسط"
	}
}

type ExpertiseFactors struct {
	QueryLength       int     `json:"query_length"`
	BeginnerTerms     float64 `json:"beginner_terms_count"`
	IntermediateTerms float64 `json:"intermediate_terms_count"`
	AdvancedTerms     float64 `json:"advanced_terms_count"`
}

type Expertise struct {
	Level      Level            `json:"level"`
	Confidence float64          `json:"confidence_score"`
	Factors    ExpertiseFactors `json:"analysis_factors"`
}

// Classifier is the text-analysis capability the knowledge model and the
// context assembler depend on.
type Classifier interface {
	PrimaryTopic(text string) string
	Topics(text string) []string
	ScriptureReferences(text string) []string
	ScholarReferences(text string) []string
	Madhab(text string) string
	Complexity(text string) float64
	Expertise(query string, recent []string) Expertise
}

// Heuristic is the keyword and pattern classifier.
type Heuristic struct{}

var _ Classifier = Heuristic{}

func (Heuristic) PrimaryTopic(text string) string          { return PrimaryTopic(text) }
func (Heuristic) Topics(text string) []string              { return Topics(text) }
func (Heuristic) ScriptureReferences(text string) []string { return ScriptureReferences(text) }
func (Heuristic) ScholarReferences(text string) []string   { return ScholarReferences(text) }
func (Heuristic) Madhab(text string) string                { return Madhab(text) }
func (Heuristic) Complexity(text string) float64           { return Complexity(text) }
func (Heuristic) Expertise(query string, recent []string) Expertise {
	return EstimateExpertise(query, recent)
}

// PrimaryTopic counts how many of each category's keywords occur in text and
// returns the category with the strictly highest count, or GeneralTopic.
func PrimaryTopic(text string) string {
	best, bestCount := GeneralTopic, 0
	for _, tk := range primaryTopics {
		if n := countPresent(text, tk.Keywords); n > bestCount {
			best, bestCount = tk.Topic, n
		}
	}
	return best
}

// Topics returns every vocabulary label contained in text, in vocabulary order.
func Topics(text string) []string {
	return present(text, topicVocabulary)
}

// ScriptureReferences returns "chapter:verse" for every non-overlapping
// citation match, duplicates included.
func ScriptureReferences(text string) []string {
	matches := scriptureRef.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1]+":"+m[2])
	}
	return out
}

func ScholarReferences(text string) []string {
	return present(text, scholars)
}

// Madhab returns the school name occurring earliest in text, or "".
func Madhab(text string) string {
	lower := strings.ToLower(text)
	best, bestAt := "", -1
	for _, name := range madhabNames {
		if i := strings.Index(lower, name); i >= 0 && (bestAt < 0 || i < bestAt) {
			best, bestAt = name, i
		}
	}
	return best
}

// Complexity is the weighted sum of length, technical vocabulary, comparison,
// evidence-request and multi-part signals, clamped to [0,1].
func Complexity(text string) float64 {
	score := float64(utf8.RuneCountInString(text)) / lengthNorm * weightLength
	score += math.Min(float64(countPresent(text, technicalTerms))/technicalNorm, 1) * weightTechnical
	if containsAny(text, comparisonPhrases) {
		score += weightComparison
	}
	if containsAny(text, evidencePhrases) {
		score += weightEvidence
	}
	if strings.Count(text, "?") > 1 {
		score += weightMultipart
	}
	return math.Max(0, math.Min(score, 1))
}

// EstimateExpertise scores the query at full weight and each of the last five
// recent questions at half weight against three tiers of indicator terms.
func EstimateExpertise(query string, recent []string) Expertise {
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	beg := float64(countPresent(query, beginnerTerms))
	inter := float64(countPresent(query, intermediateTerms))
	adv := float64(countPresent(query, advancedTerms))
	for _, q := range recent {
		beg += float64(countPresent(q, beginnerTerms)) * 0.5
		inter += float64(countPresent(q, intermediateTerms)) * 0.5
		adv += float64(countPresent(q, advancedTerms)) * 0.5
	}

	level, score := Intermediate, inter
	switch {
	case adv > inter && adv > beg:
		level, score = Advanced, adv
	case beg > inter:
		level, score = Beginner, beg
	}

	queryLen := utf8.RuneCountInString(query)
	confidence := math.Min(0.9, 0.5+score/10)
	if queryLen > 200 {
		confidence += 0.1
	}
	if containsAny(query, confidenceScholars) {
		confidence += 0.1
	}

	return Expertise{
		Level:      level,
		Confidence: math.Min(0.95, confidence),
		Factors: ExpertiseFactors{
			QueryLength:       queryLen,
			BeginnerTerms:     beg,
			IntermediateTerms: inter,
			AdvancedTerms:     adv,
		},
	}
}

func countPresent(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			n++
		}
	}
	return n
}

func present(text string, terms []string) []string {
	out := []string{}
	for _, t := range terms {
		if strings.Contains(text, t) {
			out = append(out, t)
		}
	}
	return out
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
