package knowledge

import "sort"

// Policy bounds the growth of a session's state. It runs after every mutation
// with the session lock held.
type Policy interface {
	Apply(s *State)
}

type unbounded struct{}

func (unbounded) Apply(*State) {}

// Unbounded keeps everything for the life of the process.
func Unbounded() Policy { return unbounded{} }

// Bounded keeps the last MaxHistory records of every append-only list and at
// most MaxTopics entries in each reference map, evicting the least recently
// updated. Complexity levels follow the question records that survive the
// history bound. Topic frequency and the concept network are keyed by
// classifier topic labels, so the classifier vocabulary bounds them and they
// are left alone. A zero field disables that bound.
type Bounded struct {
	MaxHistory int
	MaxTopics  int
}

func (b Bounded) Apply(s *State) {
	if b.MaxHistory > 0 {
		s.InteractionHistory = tail(s.InteractionHistory, b.MaxHistory)
		s.Conversation.PreviousTopics = tail(s.Conversation.PreviousTopics, b.MaxHistory)
		s.Conversation.AnsweredQuestions = tail(s.Conversation.AnsweredQuestions, b.MaxHistory)
		pruneComplexity(s)
	}
	if b.MaxTopics > 0 {
		evict(s.TopicKnowledge, b.MaxTopics)
		evict(s.ScriptureReferences, b.MaxTopics)
		evict(s.ScholarReferences, b.MaxTopics)
	}
}

func pruneComplexity(s *State) {
	if len(s.Analytics.ComplexityLevels) == 0 {
		return
	}
	keep := make(map[string]bool, len(s.InteractionHistory))
	for _, in := range s.InteractionHistory {
		if in.Type == InteractionQuestion {
			keep[prefix(in.Text, complexityKeyRunes)] = true
		}
	}
	for k := range s.Analytics.ComplexityLevels {
		if !keep[k] {
			delete(s.Analytics.ComplexityLevels, k)
		}
	}
}

func tail[T any](xs []T, n int) []T {
	if len(xs) <= n {
		return xs
	}
	return append(xs[:0:0], xs[len(xs)-n:]...)
}

func evict(m map[string]*Entry, max int) {
	if len(m) <= max {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := m[keys[i]].LastUpdated, m[keys[j]].LastUpdated
		if a.Equal(b) {
			return keys[i] < keys[j]
		}
		return a.Before(b)
	})
	for _, k := range keys[:len(keys)-max] {
		delete(m, k)
	}
}
