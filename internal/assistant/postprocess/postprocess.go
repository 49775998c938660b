// Package postprocess rewrites inline directives in a model reply and
// extracts the follow-up work they request.
package postprocess

import (
	"context"
	"regexp"
)

const ElementImage = "image"

type Element struct {
	Type   string `json:"type"`
	Prompt string `json:"prompt"`
}

type Result struct {
	Text            string    `json:"text"`
	SpecialElements []Element `json:"special_elements"`
}

func (r Result) HasSpecialElements() bool { return len(r.SpecialElements) > 0 }

var (
	imageDirective = regexp.MustCompile(`!\[generate:([^\]]+)\]`)
	sourceCitation = regexp.MustCompile(`\(المصدر: ([^)]+)\)`)
)

// Process replaces image directives with a placeholder and wraps source
// citations in a reference tag. The two rewrites are independent.
func Process(raw string) Result {
	elements := []Element{}
	text := imageDirective.ReplaceAllStringFunc(raw, func(m string) string {
		prompt := imageDirective.FindStringSubmatch(m)[1]
		elements = append(elements, Element{Type: ElementImage, Prompt: prompt})
		return "[سيتم إنشاء صورة: " + prompt + "]"
	})
	text = sourceCitation.ReplaceAllString(text, `<span class="reference-tag" title="المصدر: $1">$1</span>`)
	return Result{Text: text, SpecialElements: elements}
}

// ElementHandler performs the follow-up work for extracted elements after
// the reply has been delivered. Failures are the handler's own to report.
type ElementHandler interface {
	Handle(ctx context.Context, sessionID string, elements []Element)
}

type ElementHandlerFunc func(ctx context.Context, sessionID string, elements []Element)

func (f ElementHandlerFunc) Handle(ctx context.Context, sessionID string, elements []Element) {
	f(ctx, sessionID, elements)
}

type NopHandler struct{}

func (NopHandler) Handle(context.Context, string, []Element) {}
