package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/shariabridge-backend/internal/assistant/llm"
	"github.com/yungbote/shariabridge-backend/internal/platform/logger"
)

type Deps struct {
	Model     llm.Model
	Retriever Retriever
	Catalog   *Catalog
	Log       *logger.Logger
	Now       func() time.Time
}

type Augmenter struct {
	model     llm.Model
	retriever Retriever
	catalog   Catalog
	log       *logger.Logger
	now       func() time.Time
}

func New(deps Deps) (*Augmenter, error) {
	if deps.Model == nil {
		return nil, fmt.Errorf("search: model required")
	}
	a := &Augmenter{model: deps.Model, retriever: deps.Retriever, log: deps.Log, now: deps.Now}
	if a.log == nil {
		a.log = logger.Nop()
	}
	a.log = a.log.With("component", "search")
	if deps.Catalog != nil {
		a.catalog = *deps.Catalog
	} else {
		a.catalog = DefaultCatalog(a.log)
	}
	if a.retriever == nil {
		a.retriever = Noop{}
	}
	if a.now == nil {
		a.now = func() time.Time { return time.Now().UTC() }
	}
	return a, nil
}

// Augment always returns a Result; internal failures yield FailureResult.
func (a *Augmenter) Augment(ctx context.Context, query string, progress ProgressFunc) Result {
	ctx, span := otel.Tracer("shariabridge/search").Start(ctx, "search.augment")
	defer span.End()

	res, err := a.augment(ctx, query, progress)
	if err != nil {
		span.RecordError(err)
		a.log.Warn("search augmentation failed", "query", query, "error", err)
		if progress != nil {
			progress(Progress{Percent: 100, Status: statusFailed, Failed: true})
		}
		return FailureResult(query, a.now())
	}
	span.SetAttributes(attribute.Int("search.sources", res.SourcesCount))
	return res
}

func (a *Augmenter) augment(ctx context.Context, query string, progress ProgressFunc) (Result, error) {
	progress.report(10, statusRewrite)
	raw, err := llm.Ask(ctx, a.model, rewriteSystemPrompt, query, llm.Options{})
	if err != nil {
		return Result{}, fmt.Errorf("rewrite queries: %w", err)
	}
	progress.report(25, statusQuerying)

	subqueries := ParseSubqueries(raw, a.catalog.SubqueryLimit)
	expanded := Expand(subqueries, a.catalog.TrustedDomains, a.catalog.SiteFanout)
	progress.report(40, statusAnalyzing)

	docs, err := a.retriever.Retrieve(ctx, expanded, a.catalog.TrustedDomains)
	if err != nil {
		a.log.Warn("search retrieval failed; continuing without documents", "error", err)
		docs = nil
	}
	progress.report(60, statusProcessing)

	progress.report(80, statusOpinions)
	prompt := buildSynthesisPrompt(a.catalog.SourceNames(), expanded, query, docs)
	body, err := llm.Ask(ctx, a.model, "", prompt, llm.Options{Schema: synthesisSchema})
	if err != nil {
		return Result{}, fmt.Errorf("synthesize: %w", err)
	}
	syn, ok := decodeSynthesis(body)
	if !ok {
		a.log.Warn("search synthesis was not a JSON object; using empty synthesis", "bytes", len(body))
	}
	progress.report(100, statusDone)

	return Result{
		SourcesCount:        len(a.catalog.Sources),
		Sources:             a.catalog.SourceNames(),
		SourceURLs:          a.catalog.SourceURLs(),
		Evidences:           syn.Evidences,
		ScholarlyOpinions:   syn.ScholarlyOpinions,
		Madhabs:             syn.Madhabs,
		ContemporaryViews:   syn.ContemporaryViews,
		Highlights:          syn.Highlights,
		ControversialPoints: syn.ControversialPoints,
		RecommendedView:     syn.RecommendedView,
		Reliability:         SuccessReliability,
		DetailedContext:     syn.DetailedContext,
		Query:               query,
		Timestamp:           a.now(),
	}, nil
}

var enumeration = regexp.MustCompile(`^\d+\.\s+`)

// ParseSubqueries splits the rewrite reply into at most limit queries,
// dropping blank lines and leading "N. " markers.
func ParseSubqueries(raw string, limit int) []string {
	out := []string{}
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		q := strings.TrimSpace(enumeration.ReplaceAllString(line, ""))
		out = append(out, q)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Expand returns each query followed by one site-restricted variant per
// leading domain.
func Expand(queries, domains []string, fanout int) []string {
	fanout = max(0, min(fanout, len(domains)))
	out := make([]string, 0, len(queries)*(fanout+1))
	for _, q := range queries {
		out = append(out, q)
		for _, d := range domains[:fanout] {
			out = append(out, q+" site:"+d)
		}
	}
	return out
}
