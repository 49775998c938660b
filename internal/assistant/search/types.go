// Package search implements the search-augmentation step: query rewriting,
// trusted-domain expansion, optional retrieval and a model-synthesised
// summary of what the trusted sources say.
package search

import "time"

// FailureContext is the explanation carried by a failed augmentation.
const FailureContext = "لم يتم العثور على معلومات بسبب خطأ في البحث."

// Reliability reported for every successful augmentation. It is not derived
// from the synthesised content.
const SuccessReliability = 0.9

type Evidences struct {
	Quran  []string `json:"quran"`
	Hadith []string `json:"hadith"`
	Ijma   []string `json:"ijma"`
	Qiyas  []string `json:"qiyas"`
}

type Madhabs struct {
	Hanafi  string `json:"hanafi"`
	Maliki  string `json:"maliki"`
	Shafii  string `json:"shafii"`
	Hanbali string `json:"hanbali"`
}

// Result is immutable once returned.
type Result struct {
	SourcesCount        int       `json:"sources_count"`
	Sources             []string  `json:"sources"`
	SourceURLs          []string  `json:"source_urls"`
	Evidences           Evidences `json:"evidences"`
	ScholarlyOpinions   []string  `json:"scholarly_opinions"`
	Madhabs             Madhabs   `json:"madhabs"`
	ContemporaryViews   []string  `json:"contemporary_views"`
	Highlights          []string  `json:"highlights"`
	ControversialPoints []string  `json:"controversial_points"`
	RecommendedView     string    `json:"recommended_view"`
	Reliability         float64   `json:"reliability"`
	DetailedContext     string    `json:"detailed_context"`
	Query               string    `json:"query"`
	Timestamp           time.Time `json:"timestamp"`
}

func (r Result) Failed() bool { return r.Reliability == 0 }

// FailureResult is the well-defined value returned when augmentation fails.
func FailureResult(query string, at time.Time) Result {
	return Result{
		Sources:             []string{},
		SourceURLs:          []string{},
		Evidences:           emptyEvidences(),
		ScholarlyOpinions:   []string{},
		ContemporaryViews:   []string{},
		Highlights:          []string{},
		ControversialPoints: []string{},
		Reliability:         0,
		DetailedContext:     FailureContext,
		Query:               query,
		Timestamp:           at,
	}
}

func emptyEvidences() Evidences {
	return Evidences{Quran: []string{}, Hadith: []string{}, Ijma: []string{}, Qiyas: []string{}}
}

// Progress is reported for display only.
type Progress struct {
	Percent int    `json:"percent"`
	Status  string `json:"status"`
	Failed  bool   `json:"failed,omitempty"`
}

type ProgressFunc func(Progress)

func (f ProgressFunc) report(percent int, status string) {
	if f != nil {
		f(Progress{Percent: percent, Status: status})
	}
}

const (
	statusRewrite    = "تحسين استعلام البحث..."
	statusQuerying   = "استعلام المصادر الموثوقة..."
	statusAnalyzing  = "تحليل النتائج..."
	statusProcessing = "معالجة المعلومات..."
	statusOpinions   = "تحليل الآراء الفقهية..."
	statusDone       = "تم الانتهاء من البحث"
	statusFailed     = "حدث خطأ أثناء البحث"
)
