package termui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/yungbote/shariabridge-backend/internal/assistant/orchestrator"
	"github.com/yungbote/shariabridge-backend/internal/assistant/reasoning"
	"github.com/yungbote/shariabridge-backend/internal/assistant/search"
)

// referenceTag matches the citation markup post-processing emits for the web
// client; terminals show the bare source instead.
var referenceTag = regexp.MustCompile(`<span class="reference-tag" title="[^"]*">([^<]*)</span>`)

const excerptRunes = 240

type Renderer struct {
	styles Styles
	md     *glamour.TermRenderer
}

// NewRenderer wraps markdown at width. Plain selects the no-colour style for
// pipes and tests.
func NewRenderer(width int, plain bool) (*Renderer, error) {
	if width <= 0 {
		width = 80
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if plain {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}
	md, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("termui: markdown renderer: %w", err)
	}
	return &Renderer{styles: NewStyles(), md: md}, nil
}

func (r *Renderer) Styles() Styles { return r.styles }

// Reply renders the search panel, the reasoning panel and the answer, in that
// order, skipping panels the turn did not produce.
func (r *Renderer) Reply(reply orchestrator.Reply) string {
	var parts []string
	if reply.Search != nil {
		parts = append(parts, r.SearchPanel(*reply.Search))
	}
	if len(reply.ReasoningLayers) > 0 {
		parts = append(parts, r.ReasoningPanel(reply.ReasoningLayers))
	}
	parts = append(parts, r.Answer(reply.Text))
	if reply.Degraded {
		parts = append(parts, r.styles.Warning.Render("⚠ degraded reply"))
	}
	return strings.Join(parts, "\n")
}

func (r *Renderer) Answer(text string) string {
	text = TerminalText(text)
	out, err := r.md.Render(text)
	if err != nil {
		return text
	}
	return out
}

func (r *Renderer) SearchPanel(res search.Result) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("نتائج البحث"))
	b.WriteString("\n")
	if res.Failed() {
		b.WriteString(r.styles.Error.Render(res.DetailedContext))
		return r.styles.Panel.Render(b.String())
	}
	fmt.Fprintf(&b, "%s %.0f%%  ·  %s\n",
		r.styles.Muted.Render("الموثوقية:"), res.Reliability*100,
		r.styles.Muted.Render(strings.Join(res.Sources, "، ")))
	if res.RecommendedView != "" {
		fmt.Fprintf(&b, "%s %s\n", r.styles.Muted.Render("الرأي الراجح:"), res.RecommendedView)
	}
	for _, m := range []struct{ name, view string }{
		{"الحنفي", res.Madhabs.Hanafi},
		{"المالكي", res.Madhabs.Maliki},
		{"الشافعي", res.Madhabs.Shafii},
		{"الحنبلي", res.Madhabs.Hanbali},
	} {
		if m.view != "" {
			fmt.Fprintf(&b, "• %s: %s\n", m.name, excerpt(m.view))
		}
	}
	return r.styles.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

func (r *Renderer) ReasoningPanel(layers []reasoning.Layer) string {
	blocks := make([]string, 0, len(layers)+1)
	blocks = append(blocks, r.styles.Title.Render("التحليل المنطقي"))
	for _, l := range layers {
		blocks = append(blocks, r.styles.Layer.Render(r.styles.Title.Render(l.Title)+"\n"+excerpt(l.Content)))
	}
	return r.styles.Panel.Render(strings.Join(blocks, "\n"))
}

func (r *Renderer) Progress(p search.Progress) string {
	if p.Failed {
		return r.styles.Error.Render(fmt.Sprintf("✗ %s", p.Status))
	}
	return r.styles.Progress.Render(fmt.Sprintf("▸ %3d%% %s", p.Percent, p.Status))
}

// TerminalText replaces citation markup with a bracketed source.
func TerminalText(s string) string {
	return referenceTag.ReplaceAllString(s, "〔$1〕")
}

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= excerptRunes {
		return s
	}
	return string(r[:excerptRunes]) + "…"
}
