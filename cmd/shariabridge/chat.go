package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/yungbote/shariabridge-backend/internal/assistant/knowledge"
	"github.com/yungbote/shariabridge-backend/internal/assistant/orchestrator"
	"github.com/yungbote/shariabridge-backend/internal/platform/shutdown"
	"github.com/yungbote/shariabridge-backend/internal/termui"
)

const chatHelp = `/search     toggle search augmentation
/reasoning  toggle the reasoning pipeline
/profile    show what the assistant has learned
/help       show this list
/exit       leave (also Ctrl+C, Esc)`

func newChatCmd(opts *rootOptions) *cobra.Command {
	flags := &turnFlags{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive conversation in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := shutdown.NotifyContext(cmd.Context())
			defer stop()

			r, err := termui.NewRenderer(flags.width, flags.plain)
			if err != nil {
				return err
			}
			events := &programEvents{r: r}
			a, err := loadApp(ctx, opts, true, events)
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(ctx))

			toggles := flags.request(cmd, "", a.Cfg.Assistant.SearchDefault, a.Cfg.Assistant.ReasoningDefault)
			m := newChatModel(ctx, a.Assistant, a.Assistant.CreateSession(), r, toggles)
			p := tea.NewProgram(m,
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			events.attach(p)
			defer events.attach(nil)

			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// chatAssistant is the part of the orchestrator the chat screen drives.
type chatAssistant interface {
	Ask(ctx context.Context, sessionID string, req orchestrator.Request) (orchestrator.Reply, error)
	Knowledge(sessionID string) (knowledge.State, error)
}

type (
	replyMsg struct {
		reply orchestrator.Reply
		err   error
	}
	// statusMsg replaces the progress line under the transcript.
	statusMsg string
	// deltaMsg appends streamed answer text until the reply lands.
	deltaMsg string
)

// chatModel prints finished output above the input line and keeps only the
// in-flight state (progress, partial answer, prompt) in the live view.
type chatModel struct {
	ctx       context.Context
	assistant chatAssistant
	sessionID string
	r         *termui.Renderer
	input     textinput.Model
	toggles   orchestrator.Request

	transcript []string
	status     string
	partial    string
	busy       bool
	quitting   bool
}

func newChatModel(ctx context.Context, a chatAssistant, sessionID string, r *termui.Renderer, toggles orchestrator.Request) chatModel {
	st := r.Styles()
	ti := textinput.New()
	ti.Placeholder = "اكتب سؤالك… (/help)"
	ti.Prompt = promptLabel(toggles)
	ti.PromptStyle = st.Prompt
	ti.CharLimit = 4096
	ti.Width = 80
	ti.Focus()

	return chatModel{
		ctx:        ctx,
		assistant:  a,
		sessionID:  sessionID,
		r:          r,
		input:      ti,
		toggles:    toggles,
		transcript: []string{r.Answer(orchestrator.Greeting), st.Muted.Render(chatHelp)},
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.Println(strings.Join(m.transcript, "\n")),
	)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			return m.submit()
		}

	case tea.WindowSizeMsg:
		if w := msg.Width - len([]rune(m.input.Prompt)) - 2; w > 10 {
			m.input.Width = w
		}
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case deltaMsg:
		m.partial += string(msg)
		return m, nil

	case replyMsg:
		m.busy, m.status, m.partial = false, "", ""
		if msg.err != nil {
			return m, m.record(m.r.Styles().Error.Render(msg.err.Error()))
		}
		return m, m.record(m.r.Reply(msg.reply))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	st := m.r.Styles()
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()

	switch line {
	case "":
		return m, nil
	case "/exit", "/quit":
		m.quitting = true
		return m, tea.Quit
	case "/help":
		return m, m.record(st.Muted.Render(chatHelp))
	case "/search":
		m.toggles.Search = !m.toggles.Search
		m.input.Prompt = promptLabel(m.toggles)
		return m, nil
	case "/reasoning":
		m.toggles.Reasoning = !m.toggles.Reasoning
		m.input.Prompt = promptLabel(m.toggles)
		return m, nil
	case "/profile":
		snap, err := m.assistant.Knowledge(m.sessionID)
		if err != nil {
			return m, m.record(st.Error.Render(err.Error()))
		}
		data, _ := json.MarshalIndent(snap.User, "", "  ")
		return m, m.record(st.Panel.Render(string(data)))
	}

	req := m.toggles
	req.Message = line
	m.busy = true
	echo := m.record(st.Prompt.Render(promptLabel(m.toggles)) + line)
	return m, tea.Batch(echo, m.ask(req))
}

func (m chatModel) ask(req orchestrator.Request) tea.Cmd {
	ctx, a, id := m.ctx, m.assistant, m.sessionID
	return func() tea.Msg {
		reply, err := a.Ask(ctx, id, req)
		return replyMsg{reply: reply, err: err}
	}
}

// record keeps s in the transcript and prints it above the live view.
func (m *chatModel) record(s string) tea.Cmd {
	m.transcript = append(m.transcript, s)
	return tea.Println(s)
}

func (m chatModel) View() string {
	if m.quitting {
		return ""
	}
	st := m.r.Styles()
	var b strings.Builder
	if m.partial != "" {
		b.WriteString(termui.TerminalText(m.partial))
		b.WriteString("\n")
	}
	switch {
	case m.status != "":
		b.WriteString(m.status)
		b.WriteString("\n")
	case m.busy:
		b.WriteString(st.Progress.Render("…"))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	return b.String()
}

func promptLabel(t orchestrator.Request) string {
	flags := ""
	if t.Search {
		flags += "🔍"
	}
	if t.Reasoning {
		flags += "🧠"
	}
	if flags != "" {
		flags = " " + flags
	}
	return "أنت" + flags + " › "
}
