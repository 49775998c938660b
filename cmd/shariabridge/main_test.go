package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yungbote/shariabridge-backend/internal/assistant/classifier"
	"github.com/yungbote/shariabridge-backend/internal/assistant/knowledge"
	"github.com/yungbote/shariabridge-backend/internal/assistant/orchestrator"
	"github.com/yungbote/shariabridge-backend/internal/assistant/reasoning"
	"github.com/yungbote/shariabridge-backend/internal/realtime"
	"github.com/yungbote/shariabridge-backend/internal/termui"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("SB_CONFIG_PATH", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "shariabridge dev") {
		t.Fatalf("version output = %q", out)
	}
}

func TestAskWithMockModel(t *testing.T) {
	out, err := execute(t, "", "ask", "--plain", "--search=false", "--reasoning=false", "ما", "حكم", "الوضوء؟")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !strings.Contains(out, "mock: ما حكم الوضوء؟") {
		t.Fatalf("ask output = %q", out)
	}
	if strings.Contains(out, "نتائج البحث") {
		t.Fatalf("search panel rendered with --search=false")
	}
}

// scriptedAssistant answers every question with a fixed prefix.
type scriptedAssistant struct {
	asked []orchestrator.Request
	err   error
}

func (a *scriptedAssistant) Ask(_ context.Context, id string, req orchestrator.Request) (orchestrator.Reply, error) {
	a.asked = append(a.asked, req)
	if a.err != nil {
		return orchestrator.Reply{}, a.err
	}
	return orchestrator.Reply{SessionID: id, Text: "جواب " + req.Message}, nil
}

func (a *scriptedAssistant) Knowledge(string) (knowledge.State, error) {
	return knowledge.State{User: knowledge.UserProfile{ExpertiseLevel: classifier.Beginner}}, nil
}

func newTestChat(t *testing.T, a chatAssistant) chatModel {
	t.Helper()
	r, err := termui.NewRenderer(80, true)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return newChatModel(context.Background(), a, "s1", r, orchestrator.Request{})
}

// enter submits line and runs the resulting commands, feeding the chat's own
// messages back into Update.
func enter(t *testing.T, m chatModel, line string) (chatModel, bool) {
	t.Helper()
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(chatModel)
	quit := false
	for pending := []tea.Cmd{cmd}; len(pending) > 0; pending = pending[1:] {
		if pending[0] == nil {
			continue
		}
		switch msg := pending[0]().(type) {
		case tea.BatchMsg:
			pending = append(pending, msg...)
		case tea.QuitMsg:
			quit = true
		case replyMsg:
			next, more := m.Update(msg)
			m = next.(chatModel)
			pending = append(pending, more)
		}
	}
	return m, quit
}

func transcriptContains(m chatModel, s string) bool {
	return strings.Contains(strings.Join(m.transcript, "\n"), s)
}

func TestChatTogglesAndAsks(t *testing.T) {
	a := &scriptedAssistant{}
	m := newTestChat(t, a)

	m, _ = enter(t, m, "/search")
	m, _ = enter(t, m, "/reasoning")
	if !m.toggles.Search || !m.toggles.Reasoning || m.input.Prompt != "أنت 🔍🧠 › " {
		t.Fatalf("toggles=%+v prompt=%q", m.toggles, m.input.Prompt)
	}

	m, _ = enter(t, m, "  سؤال أول  ")
	if len(a.asked) != 1 {
		t.Fatalf("asked=%+v", a.asked)
	}
	if got := a.asked[0]; got.Message != "سؤال أول" || !got.Search || !got.Reasoning {
		t.Fatalf("request=%+v", got)
	}
	if m.busy || m.input.Value() != "" {
		t.Fatalf("busy=%v input=%q after reply", m.busy, m.input.Value())
	}
	if !transcriptContains(m, "سؤال أول") || !transcriptContains(m, "جواب سؤال أول") {
		t.Fatalf("transcript:\n%s", strings.Join(m.transcript, "\n"))
	}
}

func TestChatProfileAndErrors(t *testing.T) {
	a := &scriptedAssistant{err: errors.New("انقطع الاتصال")}
	m := newTestChat(t, a)

	m, _ = enter(t, m, "/profile")
	if !transcriptContains(m, `"expertise_level": "beginner"`) {
		t.Fatalf("profile not shown:\n%s", strings.Join(m.transcript, "\n"))
	}
	m, _ = enter(t, m, "سؤال")
	if !transcriptContains(m, "انقطع الاتصال") || m.busy {
		t.Fatalf("error not shown:\n%s", strings.Join(m.transcript, "\n"))
	}
	m, _ = enter(t, m, "")
	if len(a.asked) != 1 {
		t.Fatalf("blank line reached the assistant")
	}
}

func TestChatProgressAndStreamingView(t *testing.T) {
	m := newTestChat(t, &scriptedAssistant{})
	m.busy = true

	next, _ := m.Update(statusMsg("▸ التحليل الأولي"))
	next, _ = next.(chatModel).Update(deltaMsg("الجواب "))
	next, _ = next.(chatModel).Update(deltaMsg(`<span class="reference-tag" title="المصدر: مسلم">مسلم</span>`))
	m = next.(chatModel)

	view := m.View()
	if !strings.Contains(view, "▸ التحليل الأولي") || !strings.Contains(view, "الجواب 〔مسلم〕") {
		t.Fatalf("view:\n%s", view)
	}

	// Enter is ignored while a turn is in flight.
	m.input.SetValue("سؤال آخر")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || next.(chatModel).input.Value() != "سؤال آخر" {
		t.Fatalf("submitted while busy")
	}

	next, _ = m.Update(replyMsg{reply: orchestrator.Reply{Text: "تم"}})
	if v := next.(chatModel).View(); strings.Contains(v, "التحليل الأولي") || strings.Contains(v, "الجواب") {
		t.Fatalf("in-flight state kept after reply:\n%s", v)
	}
}

func TestChatQuits(t *testing.T) {
	m := newTestChat(t, &scriptedAssistant{})
	m, quit := enter(t, m, "/exit")
	if !quit || !m.quitting || m.View() != "" {
		t.Fatalf("quit=%v quitting=%v", quit, m.quitting)
	}

	m = newTestChat(t, &scriptedAssistant{})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if _, ok := cmd().(tea.QuitMsg); !ok || !next.(chatModel).quitting {
		t.Fatalf("ctrl+c did not quit")
	}
}

func TestProgramEventsWithoutProgram(t *testing.T) {
	r, err := termui.NewRenderer(80, true)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	e := &programEvents{r: r}
	e.Emit(context.Background(), realtime.SSEMessage{Channel: "s", Event: realtime.SSEEventReplyDelta, Data: map[string]any{"delta": "x"}})
}

func TestPromptLabel(t *testing.T) {
	if got := promptLabel(orchestrator.Request{}); got != "أنت › " {
		t.Fatalf("plain label = %q", got)
	}
	if got := promptLabel(orchestrator.Request{Search: true, Reasoning: true}); got != "أنت 🔍🧠 › " {
		t.Fatalf("toggled label = %q", got)
	}
}

func TestProgressLine(t *testing.T) {
	r, err := termui.NewRenderer(80, true)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	msg := realtime.SSEMessage{Event: realtime.SSEEventReasoningLayers, Data: map[string]any{
		"layers": []reasoning.Layer{{Title: "الأول"}, {Title: "الثاني"}},
	}}
	if line, ok := progressLine(r, msg); !ok || !strings.Contains(line, "▸ الثاني") {
		t.Fatalf("line=%q ok=%v", line, ok)
	}
	if _, ok := progressLine(r, realtime.SSEMessage{Event: realtime.SSEEventReplyDelta}); ok {
		t.Fatalf("reply deltas have no progress line")
	}
}

func TestProgressPrinterIgnoresOtherEvents(t *testing.T) {
	r, err := termui.NewRenderer(80, true)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	var buf bytes.Buffer
	p := newProgressPrinter(&buf, r)
	p.Emit(context.Background(), turnDone())
	if buf.Len() != 0 {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func turnDone() realtime.SSEMessage {
	return realtime.SSEMessage{Channel: "s", Event: realtime.SSEEventTurnDone}
}
