package oaihttp

import (
	"regexp"
	"strings"
)

const thinkOpen = "<think>"

var thinkBlockRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinkBlocks removes <think>…</think> sections emitted by reasoning
// models. An unterminated block drops everything after its opening tag.
func StripThinkBlocks(s string) string {
	s = thinkBlockRegex.ReplaceAllString(s, "")
	if i := strings.Index(s, thinkOpen); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// thinkFilter turns raw stream deltas into deltas of the visible text. A
// trailing fragment that could still open a think block is held back until the
// next chunk decides it.
type thinkFilter struct {
	emit    func(string)
	raw     strings.Builder
	emitted string
}

func (f *thinkFilter) Write(delta string) {
	if delta == "" {
		return
	}
	f.raw.WriteString(delta)
	raw := f.raw.String()
	visible := StripThinkBlocks(raw[:len(raw)-pendingOpen(raw)])
	if len(visible) <= len(f.emitted) || !strings.HasPrefix(visible, f.emitted) {
		return
	}
	next := visible[len(f.emitted):]
	f.emitted = visible
	if f.emit != nil {
		f.emit(next)
	}
}

// Text is the visible completion once the stream has ended.
func (f *thinkFilter) Text() string {
	return StripThinkBlocks(f.raw.String())
}

// pendingOpen returns the length of the longest suffix of s that is a proper
// prefix of the think opening tag.
func pendingOpen(s string) int {
	for n := len(thinkOpen) - 1; n > 0; n-- {
		if strings.HasSuffix(s, thinkOpen[:n]) {
			return n
		}
	}
	return 0
}
