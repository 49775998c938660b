// Package llm is the assistant's view of the model service: a single
// request/response call over an ordered message list.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/shariabridge-backend/internal/inference/engine"
	"github.com/yungbote/shariabridge-backend/internal/inference/router"
)

// Options carries the optional structured-output request. A schema is a hint;
// parse failures are the caller's to recover from.
type Options struct {
	Temperature float64
	Schema      *engine.JSONSchema
}

type Model interface {
	Complete(ctx context.Context, messages []engine.Message, opts Options) (string, error)
}

// Streamer is implemented by models that can deliver a completion
// incrementally. onDelta sees the text in order; the returned string is the
// whole completion.
type Streamer interface {
	Stream(ctx context.Context, messages []engine.Message, opts Options, onDelta func(delta string)) (string, error)
}

// Func adapts a function to Model.
type Func func(ctx context.Context, messages []engine.Message, opts Options) (string, error)

func (f Func) Complete(ctx context.Context, messages []engine.Message, opts Options) (string, error) {
	return f(ctx, messages, opts)
}

var ErrEmptyCompletion = errors.New("llm: empty completion")

// Routed sends every call to one configured model of the inference router.
type Routed struct {
	route router.Route
}

func NewRouted(r *router.Router, model string) (*Routed, error) {
	if r == nil {
		return nil, errors.New("llm: router required")
	}
	route, ok := r.RouteForModel(model)
	if !ok {
		return nil, fmt.Errorf("llm: unknown model %q (have %s)", model, strings.Join(r.ListModels(), ", "))
	}
	return &Routed{route: route}, nil
}

func (m *Routed) Model() string { return m.route.PublicModel }

func (m *Routed) Complete(ctx context.Context, messages []engine.Message, opts Options) (string, error) {
	ctx, span := m.start(ctx, "llm.complete", messages, opts)
	defer span.End()
	out, err := m.route.Engine.GenerateText(ctx, m.route.UpstreamModel, messages, m.generateOptions(opts))
	return m.finish(span, out, err)
}

func (m *Routed) Stream(ctx context.Context, messages []engine.Message, opts Options, onDelta func(delta string)) (string, error) {
	ctx, span := m.start(ctx, "llm.stream", messages, opts)
	defer span.End()
	out, err := m.route.Engine.StreamText(ctx, m.route.UpstreamModel, messages, m.generateOptions(opts), onDelta)
	return m.finish(span, out, err)
}

func (m *Routed) start(ctx context.Context, name string, messages []engine.Message, opts Options) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("shariabridge/llm").Start(ctx, name)
	span.SetAttributes(
		attribute.String("llm.model", m.route.PublicModel),
		attribute.Int("llm.messages", len(messages)),
		attribute.Bool("llm.structured", opts.Schema != nil),
	)
	return ctx, span
}

func (m *Routed) generateOptions(opts Options) engine.GenerateOptions {
	return engine.GenerateOptions{Temperature: opts.Temperature, JSONSchema: opts.Schema}
}

func (m *Routed) finish(span trace.Span, out string, err error) (string, error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		span.SetStatus(codes.Error, "empty completion")
		return "", ErrEmptyCompletion
	}
	return out, nil
}

// Ask is the common two-message call shape used by the pipeline stages.
func Ask(ctx context.Context, m Model, system, user string, opts Options) (string, error) {
	msgs := make([]engine.Message, 0, 2)
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, engine.Message{Role: engine.RoleSystem, Content: system})
	}
	msgs = append(msgs, engine.Message{Role: engine.RoleUser, Content: user})
	return m.Complete(ctx, msgs, opts)
}
