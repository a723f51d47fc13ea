package services

import (
	"strings"
	"time"
)

type LeadStore interface {
	GetQuiz(id string) (*Quiz, error)
	GetQuizBySlug(slug string) (*Quiz, error)
	AddLead(l *Lead) (*Lead, error)
	GetLead(id string) (*Lead, error)
	ListLeadsByQuiz(quizID string) ([]*Lead, error)
	DeleteLead(id string) error
}

// LeadDispatcher is the fire-and-forget hook into the outbound pipeline.
// Implementations must return without waiting for deliveries to finish;
// lead capture latency stays independent of integration health.
type LeadDispatcher interface {
	LeadCaptured(quiz *Quiz, lead *Lead)
}

// CaptureLeadRequest transports the sanitized handler input into the
// service layer.
type CaptureLeadRequest struct {
	Slug     string
	Name     string
	Email    string
	Phone    string
	Answers  []Answer
	Score    int
	Metadata map[string]string
}

var errQuizNotFound = NewNotFoundError("quiz not found")

// LeadService hosts the lead capture workflow: persist the completion,
// classify the score, and hand the event to the dispatcher.
type LeadService struct {
	store      LeadStore
	dispatcher LeadDispatcher
	now        func() time.Time
	idGen      func() string
}

func NewLeadService(store LeadStore, dispatcher LeadDispatcher) *LeadService {
	return &LeadService{
		store:      store,
		dispatcher: dispatcher,
		now:        func() time.Time { return time.Now().UTC() },
		idGen:      func() string { return shortID(12) },
	}
}

// CaptureLead records one quiz completion. The lead is durably stored
// before the dispatcher is invoked, and any delivery failure is invisible
// to the respondent.
func (s *LeadService) CaptureLead(req CaptureLeadRequest) (*Lead, error) {
	quiz, err := s.store.GetQuizBySlug(strings.TrimSpace(req.Slug))
	if err != nil {
		return nil, err
	}
	if quiz == nil || !quiz.Published {
		return nil, errQuizNotFound
	}

	answers := make([]Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		if strings.TrimSpace(a.ElementID) == "" {
			continue
		}
		answers = append(answers, a)
	}

	lead := &Lead{
		ID:             s.idGen(),
		QuizID:         quiz.ID,
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Answers:        answers,
		Score:          req.Score,
		ResultCategory: LabelForScore(req.Score, quiz.ScoreRanges),
		Metadata:       req.Metadata,
		CreatedAt:      s.now(),
	}
	stored, err := s.store.AddLead(lead)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		lead = stored
	}

	if s.dispatcher != nil {
		s.dispatcher.LeadCaptured(quiz, lead)
	}
	return lead, nil
}

func (s *LeadService) ownedQuiz(workspaceID, quizID string) (*Quiz, error) {
	q, err := s.store.GetQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, errQuizNotFound
	}
	if q.WorkspaceID != workspaceID {
		return nil, NewForbiddenError("forbidden")
	}
	return q, nil
}

func (s *LeadService) ListLeads(workspaceID, quizID string) ([]*Lead, error) {
	if _, err := s.ownedQuiz(workspaceID, quizID); err != nil {
		return nil, err
	}
	return s.store.ListLeadsByQuiz(quizID)
}

func (s *LeadService) DeleteLead(workspaceID, leadID string) error {
	l, err := s.store.GetLead(leadID)
	if err != nil {
		return err
	}
	if l == nil {
		return NewNotFoundError("lead not found")
	}
	if _, err := s.ownedQuiz(workspaceID, l.QuizID); err != nil {
		return err
	}
	return s.store.DeleteLead(leadID)
}
