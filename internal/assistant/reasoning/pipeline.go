// Package reasoning runs the staged analysis that precedes the final answer.
// Each stage sees the output of the stages before it.
package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/shariabridge-backend/internal/assistant/knowledge"
	"github.com/yungbote/shariabridge-backend/internal/assistant/llm"
	"github.com/yungbote/shariabridge-backend/internal/assistant/search"
	"github.com/yungbote/shariabridge-backend/internal/platform/logger"
)

type Layer struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ErrorLayer is returned alone when the first stage fails.
func ErrorLayer() Layer { return Layer{Title: titleError, Content: contentError} }

// SearchFuture blocks until the turn's search settles. A nil future, or one
// returning nil, means no search result is available.
type SearchFuture func(ctx context.Context) *search.Result

// Resolved wraps an already known result.
func Resolved(r *search.Result) SearchFuture {
	return func(context.Context) *search.Result { return r }
}

// Observer receives a copy of the layers after every committed stage.
type Observer interface {
	OnLayers(layers []Layer)
}

type NopObserver struct{}

func (NopObserver) OnLayers([]Layer) {}

type ObserverFunc func(layers []Layer)

func (f ObserverFunc) OnLayers(layers []Layer) { f(layers) }

// PracticalGate reports whether the practical-application stage applies.
func PracticalGate(query, classification string) bool {
	for _, k := range practicalKeywords {
		if strings.Contains(query, k) {
			return true
		}
	}
	for _, m := range practicalMarkers {
		if strings.Contains(classification, m) {
			return true
		}
	}
	return false
}

type Deps struct {
	Model llm.Model
	Log   *logger.Logger
}

type Pipeline struct {
	model llm.Model
	log   *logger.Logger
}

func New(deps Deps) (*Pipeline, error) {
	if deps.Model == nil {
		return nil, fmt.Errorf("reasoning: model required")
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{model: deps.Model, log: log.With("component", "reasoning")}, nil
}

// answeredJSON keeps the prompt-facing field names stable regardless of the
// API encoding of knowledge.AnsweredQuestion.
type answeredJSON struct {
	Question           string    `json:"question"`
	Timestamp          time.Time `json:"timestamp"`
	SearchPerformed    bool      `json:"searchPerformed"`
	ReasoningPerformed bool      `json:"reasoningPerformed"`
}

// Run never fails. On a stage error it returns the layers committed so far,
// or the error layer when there are none.
func (p *Pipeline) Run(ctx context.Context, query string, fut SearchFuture, history []knowledge.AnsweredQuestion, obs Observer) []Layer {
	ctx, span := otel.Tracer("shariabridge/reasoning").Start(ctx, "reasoning.run")
	defer span.End()
	if obs == nil {
		obs = NopObserver{}
	}

	r := &run{p: p, ctx: ctx, obs: obs}
	err := r.stages(query, fut, history)
	span.SetAttributes(attribute.Int("reasoning.layers", len(r.layers)))
	if err != nil {
		span.RecordError(err)
		p.log.Warn("reasoning stage failed", "query", query, "completed", len(r.layers), "error", err)
		if len(r.layers) == 0 {
			return []Layer{ErrorLayer()}
		}
	}
	return r.layers
}

type run struct {
	p      *Pipeline
	ctx    context.Context
	obs    Observer
	layers []Layer
}

func (r *run) stage(title, system, user string) (string, error) {
	ctx, span := otel.Tracer("shariabridge/reasoning").Start(r.ctx, "reasoning.stage")
	defer span.End()
	span.SetAttributes(attribute.Int("reasoning.stage", len(r.layers)+1))

	out, err := llm.Ask(ctx, r.p.model, system, user, llm.Options{})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%s: %w", title, err)
	}
	r.layers = append(r.layers, Layer{Title: title, Content: out})
	r.obs.OnLayers(append([]Layer(nil), r.layers...))
	return out, nil
}

func (r *run) stages(query string, fut SearchFuture, history []knowledge.AnsweredQuestion) error {
	classification, err := r.stage(titleClassification, classificationPrompt, "تحليل السؤال التالي: "+query)
	if err != nil {
		return err
	}

	evidence, err := r.stage(titleEvidence, evidencePrompt,
		fmt.Sprintf("السؤال: %s\n\nالتحليل الأولي: %s", query, classification))
	if err != nil {
		return err
	}

	var sr *search.Result
	if fut != nil {
		sr = fut(r.ctx)
	}

	integration := ""
	if sr != nil {
		body, _ := json.Marshal(sr)
		integration, err = r.stage(titleIntegration, integrationPrompt,
			fmt.Sprintf("السؤال: %s\n\nنتائج البحث العلمي: %s\n\nنتائج البحث الآلي: %s", query, evidence, body))
		if err != nil {
			return err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "السؤال: %s\n\nالتحليل الأولي: %s\n\nالبحث والأدلة: %s", query, classification, evidence)
	if sr != nil {
		fmt.Fprintf(&b, "\n\nتكامل البحث: %s\n\nالسياق التفصيلي من البحث: %s", integration, sr.DetailedContext)
	}
	fmt.Fprintf(&b, "\n\nتاريخ الأسئلة السابقة للمستخدم: %s", historyJSON(history))

	conclusion, err := r.stage(titleSynthesis, synthesisPrompt, b.String())
	if err != nil {
		return err
	}

	if PracticalGate(query, classification) {
		if _, err := r.stage(titlePractical, practicalPrompt,
			fmt.Sprintf("السؤال: %s\n\nالتحليل السابق والاستنتاج: %s", query, conclusion)); err != nil {
			return err
		}
	}
	return nil
}

func historyJSON(history []knowledge.AnsweredQuestion) string {
	if len(history) > 5 {
		history = history[len(history)-5:]
	}
	out := make([]answeredJSON, len(history))
	for i, h := range history {
		out[i] = answeredJSON{
			Question:           h.Question,
			Timestamp:          h.Timestamp,
			SearchPerformed:    h.SearchPerformed,
			ReasoningPerformed: h.ReasoningPerformed,
		}
	}
	b, _ := json.Marshal(out)
	return string(b)
}
