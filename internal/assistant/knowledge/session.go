// Package knowledge holds the per-session model of the user and the
// conversation that later prompts are shaped by.
package knowledge

import (
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/yungbote/shariabridge-backend/internal/assistant/classifier"
)

const (
	complexityKeyRunes  = 30
	answerSummaryRunes  = 100
	promoteIntermediate = 0.7
	promoteAdvanced     = 0.85
)

type Options struct {
	Classifier classifier.Classifier
	Policy     Policy
	Now        func() time.Time
}

type Session struct {
	mu     sync.Mutex
	clf    classifier.Classifier
	policy Policy
	now    func() time.Time
	state  State
}

func NewSession(opts Options) *Session {
	s := &Session{clf: opts.Classifier, policy: opts.Policy, now: opts.Now, state: newState()}
	if s.clf == nil {
		s.clf = classifier.Heuristic{}
	}
	if s.policy == nil {
		s.policy = Unbounded()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// RecordUserTurn folds a new question into the model before any pipeline work.
func (s *Session) RecordUserTurn(question string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &s.state
	now := s.now()

	if st.Conversation.CurrentTopic != "" {
		st.Conversation.PreviousTopics = append(st.Conversation.PreviousTopics, st.Conversation.CurrentTopic)
	}
	st.Conversation.CurrentTopic = s.clf.PrimaryTopic(question)

	topics := s.clf.Topics(question)
	st.InteractionHistory = append(st.InteractionHistory, Interaction{
		Type:           InteractionQuestion,
		Text:           question,
		Timestamp:      now,
		AnalyzedTopics: topics,
	})

	for _, t := range topics {
		if !slices.Contains(st.User.TopicsOfInterest, t) {
			st.User.TopicsOfInterest = append(st.User.TopicsOfInterest, t)
		}
		st.Analytics.TopicFrequency[t]++
	}

	if st.User.PreferredMadhab == "" {
		st.User.PreferredMadhab = s.clf.Madhab(question)
	}

	complexity := s.clf.Complexity(question)
	st.Analytics.ComplexityLevels[prefix(question, complexityKeyRunes)] = complexity

	switch {
	case complexity > promoteIntermediate && st.User.ExpertiseLevel == classifier.Beginner:
		st.User.ExpertiseLevel = classifier.Intermediate
	case complexity > promoteAdvanced && st.User.ExpertiseLevel == classifier.Intermediate:
		st.User.ExpertiseLevel = classifier.Advanced
	}

	s.policy.Apply(st)
}

// RecordAnswered marks the question as handled once the concurrent stages of
// a turn have settled.
func (s *Session) RecordAnswered(question string, searchPerformed, reasoningPerformed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Conversation.AnsweredQuestions = append(s.state.Conversation.AnsweredQuestions, AnsweredQuestion{
		Question:           question,
		Timestamp:          s.now(),
		SearchPerformed:    searchPerformed,
		ReasoningPerformed: reasoningPerformed,
	})
	s.policy.Apply(&s.state)
}

// RecordAssistantTurn folds the delivered answer into the model.
func (s *Session) RecordAssistantTurn(question, answer string, reasoningLayers int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &s.state
	now := s.now()

	st.InteractionHistory = append(st.InteractionHistory, Interaction{
		Type:          InteractionAnswer,
		QuestionText:  question,
		AnswerSummary: prefix(answer, answerSummaryRunes) + "...",
		Timestamp:     now,
		Reasoning:     reasoningLayers,
	})

	topics := s.clf.Topics(answer)
	for _, t := range topics {
		upsert(st.TopicKnowledge, t, question, now)
	}
	for _, ref := range s.clf.ScriptureReferences(answer) {
		upsert(st.ScriptureReferences, ref, question, now)
	}
	for _, name := range s.clf.ScholarReferences(answer) {
		upsert(st.ScholarReferences, name, question, now)
	}

	for _, a := range topics {
		for _, b := range topics {
			if a == b {
				continue
			}
			edges := st.ConceptNetwork[a]
			if edges == nil {
				edges = map[string]int{}
				st.ConceptNetwork[a] = edges
			}
			edges[b]++
		}
	}

	s.policy.Apply(st)
}

// RecentAnswered returns up to n of the most recent answered questions,
// oldest first.
func (s *Session) RecentAnswered(n int) []AnsweredQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	aq := s.state.Conversation.AnsweredQuestions
	if n >= 0 && len(aq) > n {
		aq = aq[len(aq)-n:]
	}
	return append([]AnsweredQuestion{}, aq...)
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func upsert(m map[string]*Entry, key, question string, now time.Time) {
	e, ok := m[key]
	if !ok {
		m[key] = &Entry{RelatedQuestions: []string{question}, Mentions: 1, LastUpdated: now}
		return
	}
	e.Mentions++
	e.LastUpdated = now
	if !slices.Contains(e.RelatedQuestions, question) {
		e.RelatedQuestions = append(e.RelatedQuestions, question)
	}
}

func prefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
