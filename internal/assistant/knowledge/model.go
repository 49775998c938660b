package knowledge

import (
	"time"

	"github.com/yungbote/shariabridge-backend/internal/assistant/classifier"
)

type InteractionType string

const (
	InteractionQuestion InteractionType = "question"
	InteractionAnswer   InteractionType = "answer"
)

type Interaction struct {
	Type      InteractionType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`

	// question records
	Text           string   `json:"text,omitempty"`
	AnalyzedTopics []string `json:"analyzed_topics,omitempty"`

	// answer records
	QuestionText  string `json:"question_text,omitempty"`
	AnswerSummary string `json:"answer_summary,omitempty"`
	Reasoning     int    `json:"reasoning,omitempty"`
}

type UserProfile struct {
	PreferredMadhab    string           `json:"preferred_madhab"`
	TopicsOfInterest   []string         `json:"topics_of_interest"`
	LanguagePreference string           `json:"language_preference"`
	ExpertiseLevel     classifier.Level `json:"expertise_level"`
}

type AnsweredQuestion struct {
	Question           string    `json:"question"`
	Timestamp          time.Time `json:"timestamp"`
	SearchPerformed    bool      `json:"search_performed"`
	ReasoningPerformed bool      `json:"reasoning_performed"`
}

type ConversationContext struct {
	CurrentTopic      string             `json:"current_topic"`
	PreviousTopics    []string           `json:"previous_topics"`
	AnsweredQuestions []AnsweredQuestion `json:"answered_questions"`
}

// Entry is shared by topic, scripture and scholar knowledge.
type Entry struct {
	RelatedQuestions []string  `json:"related_questions"`
	Mentions         int       `json:"mentions"`
	LastUpdated      time.Time `json:"last_updated"`
}

type Analytics struct {
	TopicFrequency   map[string]int     `json:"topic_frequency"`
	ComplexityLevels map[string]float64 `json:"complexity_levels"`
}

// State is the full per-session knowledge model. Snapshot returns a deep copy
// of it; the live value never leaves the Session.
type State struct {
	User                UserProfile               `json:"user"`
	InteractionHistory  []Interaction             `json:"interaction_history"`
	Conversation        ConversationContext       `json:"conversation_context"`
	TopicKnowledge      map[string]*Entry         `json:"topic_knowledge"`
	ScriptureReferences map[string]*Entry         `json:"scripture_references"`
	ScholarReferences   map[string]*Entry         `json:"scholar_references"`
	ConceptNetwork      map[string]map[string]int `json:"concept_network"`
	Analytics           Analytics                 `json:"analytics"`
}

func newState() State {
	return State{
		User: UserProfile{
			TopicsOfInterest:   []string{},
			LanguagePreference: "formal",
			ExpertiseLevel:     classifier.Intermediate,
		},
		InteractionHistory: []Interaction{},
		Conversation: ConversationContext{
			PreviousTopics:    []string{},
			AnsweredQuestions: []AnsweredQuestion{},
		},
		TopicKnowledge:      map[string]*Entry{},
		ScriptureReferences: map[string]*Entry{},
		ScholarReferences:   map[string]*Entry{},
		ConceptNetwork:      map[string]map[string]int{},
		Analytics: Analytics{
			TopicFrequency:   map[string]int{},
			ComplexityLevels: map[string]float64{},
		},
	}
}

func (s State) clone() State {
	out := s
	out.User.TopicsOfInterest = append([]string{}, s.User.TopicsOfInterest...)
	out.InteractionHistory = make([]Interaction, len(s.InteractionHistory))
	for i, it := range s.InteractionHistory {
		it.AnalyzedTopics = append([]string(nil), it.AnalyzedTopics...)
		out.InteractionHistory[i] = it
	}
	out.Conversation.PreviousTopics = append([]string{}, s.Conversation.PreviousTopics...)
	out.Conversation.AnsweredQuestions = append([]AnsweredQuestion{}, s.Conversation.AnsweredQuestions...)
	out.TopicKnowledge = cloneEntries(s.TopicKnowledge)
	out.ScriptureReferences = cloneEntries(s.ScriptureReferences)
	out.ScholarReferences = cloneEntries(s.ScholarReferences)
	out.ConceptNetwork = make(map[string]map[string]int, len(s.ConceptNetwork))
	for from, edges := range s.ConceptNetwork {
		m := make(map[string]int, len(edges))
		for to, w := range edges {
			m[to] = w
		}
		out.ConceptNetwork[from] = m
	}
	out.Analytics.TopicFrequency = make(map[string]int, len(s.Analytics.TopicFrequency))
	for k, v := range s.Analytics.TopicFrequency {
		out.Analytics.TopicFrequency[k] = v
	}
	out.Analytics.ComplexityLevels = make(map[string]float64, len(s.Analytics.ComplexityLevels))
	for k, v := range s.Analytics.ComplexityLevels {
		out.Analytics.ComplexityLevels[k] = v
	}
	return out
}

func cloneEntries(in map[string]*Entry) map[string]*Entry {
	out := make(map[string]*Entry, len(in))
	for k, e := range in {
		cp := *e
		cp.RelatedQuestions = append([]string{}, e.RelatedQuestions...)
		out[k] = &cp
	}
	return out
}
