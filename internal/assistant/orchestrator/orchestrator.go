// Package orchestrator runs one user turn end to end: knowledge update,
// concurrent search and reasoning, context assembly, the final model call,
// post-processing and the closing knowledge update.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/shariabridge-backend/internal/assistant/classifier"
	"github.com/yungbote/shariabridge-backend/internal/assistant/contextplan"
	"github.com/yungbote/shariabridge-backend/internal/assistant/knowledge"
	"github.com/yungbote/shariabridge-backend/internal/assistant/llm"
	"github.com/yungbote/shariabridge-backend/internal/assistant/postprocess"
	"github.com/yungbote/shariabridge-backend/internal/assistant/reasoning"
	"github.com/yungbote/shariabridge-backend/internal/assistant/search"
	"github.com/yungbote/shariabridge-backend/internal/inference/engine"
	"github.com/yungbote/shariabridge-backend/internal/platform/logger"
	"github.com/yungbote/shariabridge-backend/internal/realtime"
)

var (
	ErrEmptyMessage    = errors.New("orchestrator: empty message")
	ErrSessionNotFound = errors.New("orchestrator: session not found")
)

// Greeting seeds every conversation history.
const Greeting = contextplan.ReplyPrefix + "أهلاً بك في خدمة المساعد الشرعي، أنا هنا لمساعدتك في البحث والتحليل الشرعي والإجابة على استفساراتك الفقهية والعلمية بدقة وشمولية. أسعى لتزويدك بإجابات مبنية على أسس علمية راسخة مع مراعاة مختلف وجهات النظر والمذاهب. كيف يمكنني خدمتك اليوم?"

// Apology replaces the answer when the final model call fails.
const Apology = contextplan.ReplyPrefix + "أعتذر، لقد واجهت مشكلة في الاتصال. يرجى المحاولة مرة أخرى لاحقًا."

const DefaultHistoryWindow = 15

type Request struct {
	Message   string
	Search    bool
	Reasoning bool
}

type Reply struct {
	SessionID       string                `json:"session_id"`
	Text            string                `json:"reply"`
	SpecialElements []postprocess.Element `json:"special_elements"`
	ReasoningLayers []reasoning.Layer     `json:"reasoning_layers"`
	Search          *search.Result        `json:"search_result"`
	Degraded        bool                  `json:"degraded"`
}

type Searcher interface {
	Augment(ctx context.Context, query string, progress search.ProgressFunc) search.Result
}

type Reasoner interface {
	Run(ctx context.Context, query string, fut reasoning.SearchFuture, history []knowledge.AnsweredQuestion, obs reasoning.Observer) []reasoning.Layer
}

type Deps struct {
	Model         llm.Model
	Search        Searcher
	Reasoning     Reasoner
	Classifier    classifier.Classifier
	Events        realtime.Emitter
	Elements      postprocess.ElementHandler
	Policy        knowledge.Policy
	HistoryWindow int
	Log           *logger.Logger
	Now           func() time.Time
}

type Orchestrator struct {
	model     llm.Model
	search    Searcher
	reasoning Reasoner
	clf       classifier.Classifier
	notify    notifier
	elements  postprocess.ElementHandler
	policy    knowledge.Policy
	window    int
	log       *logger.Logger
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session

	background sync.WaitGroup
}

type session struct {
	id        string
	turn      sync.Mutex
	knowledge *knowledge.Session
	history   []engine.Message
	createdAt time.Time
}

func New(deps Deps) (*Orchestrator, error) {
	if deps.Model == nil {
		return nil, errors.New("orchestrator: model required")
	}
	if deps.Search == nil || deps.Reasoning == nil {
		return nil, errors.New("orchestrator: search and reasoning required")
	}
	o := &Orchestrator{
		model:     deps.Model,
		search:    deps.Search,
		reasoning: deps.Reasoning,
		clf:       deps.Classifier,
		notify:    notifier{emit: deps.Events},
		elements:  deps.Elements,
		policy:    deps.Policy,
		window:    deps.HistoryWindow,
		log:       deps.Log,
		now:       deps.Now,
		sessions:  map[string]*session{},
	}
	if o.clf == nil {
		o.clf = classifier.Heuristic{}
	}
	if o.notify.emit == nil {
		o.notify.emit = realtime.NopEmitter{}
	}
	if o.elements == nil {
		o.elements = ImageRequests{Events: o.notify.emit}
	}
	if o.policy == nil {
		o.policy = knowledge.Unbounded()
	}
	if o.window <= 0 {
		o.window = DefaultHistoryWindow
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	o.log = o.log.With("component", "orchestrator")
	if o.now == nil {
		o.now = func() time.Time { return time.Now().UTC() }
	}
	return o, nil
}

// CreateSession starts an empty session and returns its id.
func (o *Orchestrator) CreateSession() string {
	return o.OpenSession("")
}

// OpenSession returns id, creating the session if it does not exist. An empty
// id always creates a new session.
func (o *Orchestrator) OpenSession(id string) string {
	id = strings.TrimSpace(id)
	o.mu.Lock()
	defer o.mu.Unlock()
	if id != "" {
		if _, ok := o.sessions[id]; ok {
			return id
		}
	} else {
		id = uuid.New().String()
	}
	o.sessions[id] = &session{
		id:        id,
		knowledge: knowledge.NewSession(knowledge.Options{Classifier: o.clf, Policy: o.policy, Now: o.now}),
		history:   []engine.Message{{Role: engine.RoleAssistant, Content: Greeting}},
		createdAt: o.now(),
	}
	o.log.Debug("session opened", "session_id", id)
	return id
}

func (o *Orchestrator) CloseSession(ctx context.Context, id string) error {
	o.mu.Lock()
	_, ok := o.sessions[id]
	delete(o.sessions, id)
	o.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	o.notify.SessionClosed(ctx, id)
	return nil
}

func (o *Orchestrator) HasSession(id string) bool {
	_, ok := o.lookup(id)
	return ok
}

// Knowledge returns a deep copy of the session's knowledge model.
func (o *Orchestrator) Knowledge(id string) (knowledge.State, error) {
	s, ok := o.lookup(id)
	if !ok {
		return knowledge.State{}, ErrSessionNotFound
	}
	return s.knowledge.Snapshot(), nil
}

func (o *Orchestrator) lookup(id string) (*session, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s, ok := o.sessions[id]
	return s, ok
}

// Close waits for outstanding element handlers.
func (o *Orchestrator) Close() {
	o.background.Wait()
}

// Ask runs one turn. The only errors are ErrEmptyMessage and
// ErrSessionNotFound; a failing final model call yields the apology with
// Reply.Degraded set.
func (o *Orchestrator) Ask(ctx context.Context, sessionID string, req Request) (Reply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}
	s, ok := o.lookup(sessionID)
	if !ok {
		return Reply{}, ErrSessionNotFound
	}

	s.turn.Lock()
	defer s.turn.Unlock()

	ctx, span := otel.Tracer("shariabridge/orchestrator").Start(ctx, "orchestrator.turn")
	defer span.End()
	span.SetAttributes(attribute.Bool("turn.search", req.Search), attribute.Bool("turn.reasoning", req.Reasoning))
	start := time.Now()

	s.knowledge.RecordUserTurn(message)

	sr, layers := o.runStages(ctx, s, message, req)

	s.knowledge.RecordAnswered(message, req.Search, req.Reasoning)
	s.history = append(s.history, engine.Message{Role: engine.RoleUser, Content: message})
	if len(s.history) > o.window {
		s.history = append([]engine.Message(nil), s.history[len(s.history)-o.window:]...)
	}

	snap := s.knowledge.Snapshot()
	ec := contextplan.Assemble(message, snap.User, snap.Conversation, sr, layers, o.clf)
	msgs := make([]engine.Message, 0, len(s.history)+1)
	msgs = append(msgs, engine.Message{Role: engine.RoleSystem, Content: contextplan.RenderSystemPrompt(ec)})
	msgs = append(msgs, s.history...)

	reply := Reply{
		SessionID:       s.id,
		SpecialElements: []postprocess.Element{},
		ReasoningLayers: layers,
		Search:          sr,
	}
	if reply.ReasoningLayers == nil {
		reply.ReasoningLayers = []reasoning.Layer{}
	}

	raw, err := o.complete(ctx, s.id, msgs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "final completion failed")
		o.log.Warn("final completion failed", "session_id", s.id, "error", err)
		reply.Text = Apology
		reply.Degraded = true
		o.notify.TurnDone(ctx, s.id, reply)
		return reply, nil
	}

	pp := postprocess.Process(raw)
	s.history = append(s.history, engine.Message{Role: engine.RoleAssistant, Content: pp.Text})
	s.knowledge.RecordAssistantTurn(message, pp.Text, len(layers))

	reply.Text = pp.Text
	reply.SpecialElements = pp.SpecialElements
	o.notify.TurnDone(ctx, s.id, reply)
	if pp.HasSpecialElements() {
		o.dispatch(context.WithoutCancel(ctx), s.id, pp.SpecialElements)
	}

	o.log.Info("turn complete",
		"session_id", s.id,
		"search", req.Search,
		"reasoning_layers", len(layers),
		"elements", len(pp.SpecialElements),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return reply, nil
}

// complete makes the final call, streaming deltas to the session channel when
// the model supports it.
func (o *Orchestrator) complete(ctx context.Context, sessionID string, msgs []engine.Message) (string, error) {
	st, ok := o.model.(llm.Streamer)
	if !ok {
		return o.model.Complete(ctx, msgs, llm.Options{})
	}
	return st.Stream(ctx, msgs, llm.Options{}, func(delta string) {
		o.notify.ReplyDelta(ctx, sessionID, delta)
	})
}

// runStages launches search and reasoning together. Reasoning reaches the
// search result through a future that resolves when search settles; both
// tasks are joined before returning.
func (o *Orchestrator) runStages(ctx context.Context, s *session, message string, req Request) (*search.Result, []reasoning.Layer) {
	var (
		g          errgroup.Group
		sr         *search.Result
		layers     []reasoning.Layer
		searchDone = make(chan struct{})
	)

	if req.Search {
		g.Go(func() error {
			defer close(searchDone)
			res := o.search.Augment(ctx, message, func(p search.Progress) {
				o.notify.SearchProgress(ctx, s.id, p)
			})
			sr = &res
			o.notify.SearchDone(ctx, s.id, res)
			return nil
		})
	} else {
		close(searchDone)
	}

	if req.Reasoning {
		history := s.knowledge.RecentAnswered(5)
		fut := func(c context.Context) *search.Result {
			select {
			case <-searchDone:
				return sr
			case <-c.Done():
				return nil
			}
		}
		g.Go(func() error {
			layers = o.reasoning.Run(ctx, message, fut, history, reasoning.ObserverFunc(func(l []reasoning.Layer) {
				o.notify.ReasoningLayers(ctx, s.id, l)
			}))
			return nil
		})
	}

	// Both stages recover their own failures.
	_ = g.Wait()
	return sr, layers
}

func (o *Orchestrator) dispatch(ctx context.Context, sessionID string, elements []postprocess.Element) {
	o.background.Add(1)
	go func() {
		defer o.background.Done()
		o.elements.Handle(ctx, sessionID, elements)
	}()
}
