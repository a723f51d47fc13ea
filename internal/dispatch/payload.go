package dispatch

import (
	"strconv"

	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/services"
)

// EventLeadCaptured is the event field carried by every delivery.
const EventLeadCaptured = "lead.captured"

type PayloadQuiz struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type PayloadAnswer struct {
	ElementID string `json:"element_id"`
	Value     string `json:"value"`
}

type PayloadLead struct {
	Name           string          `json:"name,omitempty"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Score          int             `json:"score"`
	ResultCategory string          `json:"result_category,omitempty"`
	Answers        []PayloadAnswer `json:"answers"`
}

// Payload is the canonical, adapter-agnostic view of one captured lead.
// It is built once per dispatch cycle, shared read-only by every delivery,
// and never persisted.
type Payload struct {
	Event string      `json:"event"`
	Quiz  PayloadQuiz `json:"quiz"`
	Lead  PayloadLead `json:"lead"`
}

// BuildPayload derives the delivery payload from a quiz and its captured
// lead. When the lead carries no result category the quiz's score ranges
// are scanned with inclusive bounds; an unmatched score leaves the
// category empty.
func BuildPayload(quiz *services.Quiz, lead *services.Lead) *Payload {
	category := lead.ResultCategory
	if category == "" {
		category = services.LabelForScore(lead.Score, quiz.ScoreRanges)
	}
	answers := make([]PayloadAnswer, 0, len(lead.Answers))
	for _, a := range lead.Answers {
		answers = append(answers, PayloadAnswer{ElementID: a.ElementID, Value: a.Value})
	}
	return &Payload{
		Event: EventLeadCaptured,
		Quiz:  PayloadQuiz{ID: quiz.ID, Name: quiz.Name, Slug: quiz.Slug},
		Lead: PayloadLead{
			Name:           lead.Name,
			Email:          lead.Email,
			Phone:          lead.Phone,
			Score:          lead.Score,
			ResultCategory: category,
			Answers:        answers,
		},
	}
}

// TemplateValues exposes the fixed set of lead-derived values available to
// {{placeholder}} templates in integration config.
func (p *Payload) TemplateValues() map[string]string {
	return map[string]string{
		"name":           p.Lead.Name,
		"email":          p.Lead.Email,
		"phone":          p.Lead.Phone,
		"score":          strconv.Itoa(p.Lead.Score),
		"result":         p.Lead.ResultCategory,
		"question_count": strconv.Itoa(len(p.Lead.Answers)),
		"quiz_name":      p.Quiz.Name,
	}
}

// TestPayload is the synthetic lead used by the "send test" action. It
// never touches real lead data.
func TestPayload() *Payload {
	return &Payload{
		Event: EventLeadCaptured,
		Quiz:  PayloadQuiz{ID: "test-quiz", Name: "Test Quiz", Slug: "test-quiz"},
		Lead: PayloadLead{
			Name:           "Test Lead",
			Email:          "test@example.com",
			Phone:          "+15550100000",
			Score:          7,
			ResultCategory: "Test Result",
			Answers: []PayloadAnswer{
				{ElementID: "element-1", Value: "Option A"},
				{ElementID: "element-2", Value: "Option B"},
			},
		},
	}
}
