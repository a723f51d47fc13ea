package services

import "time"

// Workspace groups the users and quizzes of one account.
type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	PassHash    []byte    `json:"-"`
	WorkspaceID string    `json:"workspace_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Quiz is the unit the public player renders and leads attach to.
type Quiz struct {
	ID          string       `json:"id"`
	WorkspaceID string       `json:"workspace_id,omitempty"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Published   bool         `json:"published"`
	ScoreRanges []ScoreRange `json:"score_ranges,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ScoreRange maps a numeric score band to a result label.
// Bounds are inclusive on both ends.
type ScoreRange struct {
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Label string `json:"label"`
}

// Answer records one selected or typed value for a quiz element.
type Answer struct {
	ElementID string `json:"element_id"`
	Value     string `json:"value"`
}

// Lead is one quiz completion. Immutable after creation.
type Lead struct {
	ID             string            `json:"id"`
	QuizID         string            `json:"quiz_id"`
	Name           string            `json:"name,omitempty"`
	Email          string            `json:"email,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	Answers        []Answer          `json:"answers"`
	Score          int               `json:"score"`
	ResultCategory string            `json:"result_category,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Integration type tags. Config shape is validated by the matching
// delivery adapter at delivery time, not at save time.
const (
	IntegrationTypeWebhook = "webhook"
	IntegrationTypeCRM     = "crm"
)

// Integration is a configured outbound destination for a quiz.
type Integration struct {
	ID        string            `json:"id"`
	QuizID    string            `json:"quiz_id"`
	Type      string            `json:"type"`
	Name      string            `json:"name"`
	Config    map[string]string `json:"config"`
	Active    bool              `json:"active"`
	CreatedAt time.Time         `json:"created_at"`
}
