package services

import (
	"testing"
	"time"
)

type stubLeadStore struct {
	quiz  *Quiz
	leads map[string]*Lead
}

func newStubLeadStore(quiz *Quiz) *stubLeadStore {
	return &stubLeadStore{quiz: quiz, leads: map[string]*Lead{}}
}

func (s *stubLeadStore) GetQuiz(id string) (*Quiz, error) {
	if s.quiz != nil && s.quiz.ID == id {
		cp := *s.quiz
		return &cp, nil
	}
	return nil, nil
}

func (s *stubLeadStore) GetQuizBySlug(slug string) (*Quiz, error) {
	if s.quiz != nil && s.quiz.Slug == slug {
		cp := *s.quiz
		return &cp, nil
	}
	return nil, nil
}

func (s *stubLeadStore) AddLead(l *Lead) (*Lead, error) {
	cp := *l
	s.leads[l.ID] = &cp
	return &cp, nil
}

func (s *stubLeadStore) GetLead(id string) (*Lead, error) {
	if l, ok := s.leads[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (s *stubLeadStore) ListLeadsByQuiz(quizID string) ([]*Lead, error) {
	out := []*Lead{}
	for _, l := range s.leads {
		if l.QuizID == quizID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *stubLeadStore) DeleteLead(id string) error {
	delete(s.leads, id)
	return nil
}

type recordingDispatcher struct {
	quiz *Quiz
	lead *Lead
	hits int
}

func (d *recordingDispatcher) LeadCaptured(quiz *Quiz, lead *Lead) {
	d.quiz = quiz
	d.lead = lead
	d.hits++
}

func publishedQuiz() *Quiz {
	return &Quiz{
		ID:          "Q1",
		WorkspaceID: "W1",
		Name:        "Fit Check",
		Slug:        "fit-check",
		Published:   true,
		ScoreRanges: []ScoreRange{
			{Min: 0, Max: 10, Label: "Low"},
			{Min: 11, Max: 20, Label: "High"},
		},
	}
}

func TestCaptureLead(t *testing.T) {
	store := newStubLeadStore(publishedQuiz())
	disp := &recordingDispatcher{}
	svc := NewLeadService(store, disp)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	svc.idGen = func() string { return "LEAD00000001" }

	lead, err := svc.CaptureLead(CaptureLeadRequest{
		Slug:  "fit-check",
		Name:  " Ana ",
		Email: "ana@example.com",
		Score: 10,
		Answers: []Answer{
			{ElementID: "e1", Value: "yes"},
			{ElementID: "", Value: "dropped"},
			{ElementID: "e2", Value: "blue"},
		},
	})
	if err != nil {
		t.Fatalf("CaptureLead error: %v", err)
	}
	if lead.ID != "LEAD00000001" || lead.Name != "Ana" {
		t.Fatalf("unexpected lead: %+v", lead)
	}
	if lead.ResultCategory != "Low" {
		t.Fatalf("result category = %q, want Low (inclusive upper bound)", lead.ResultCategory)
	}
	if len(lead.Answers) != 2 {
		t.Fatalf("answers = %d, want blank element dropped", len(lead.Answers))
	}
	if disp.hits != 1 || disp.lead == nil || disp.lead.ID != lead.ID {
		t.Fatalf("dispatcher not invoked with stored lead")
	}
	if len(store.leads) != 1 {
		t.Fatalf("lead not persisted")
	}
}

func TestCaptureLeadUnmatchedScoreHasNoCategory(t *testing.T) {
	svc := NewLeadService(newStubLeadStore(publishedQuiz()), &recordingDispatcher{})
	lead, err := svc.CaptureLead(CaptureLeadRequest{Slug: "fit-check", Score: 999})
	if err != nil {
		t.Fatalf("CaptureLead error: %v", err)
	}
	if lead.ResultCategory != "" {
		t.Fatalf("result category = %q, want empty for unmatched score", lead.ResultCategory)
	}
}

func TestCaptureLeadRejectsUnpublishedQuiz(t *testing.T) {
	q := publishedQuiz()
	q.Published = false
	svc := NewLeadService(newStubLeadStore(q), &recordingDispatcher{})
	if _, err := svc.CaptureLead(CaptureLeadRequest{Slug: "fit-check"}); err == nil {
		t.Fatalf("expected not found for unpublished quiz")
	}
}

func TestCaptureLeadWorksWithoutDispatcher(t *testing.T) {
	svc := NewLeadService(newStubLeadStore(publishedQuiz()), nil)
	if _, err := svc.CaptureLead(CaptureLeadRequest{Slug: "fit-check"}); err != nil {
		t.Fatalf("capture without dispatcher: %v", err)
	}
}

func TestListAndDeleteLeadScope(t *testing.T) {
	store := newStubLeadStore(publishedQuiz())
	svc := NewLeadService(store, nil)
	lead, _ := svc.CaptureLead(CaptureLeadRequest{Slug: "fit-check", Email: "a@b.c"})

	if _, err := svc.ListLeads("W2", "Q1"); err == nil {
		t.Fatalf("foreign workspace must not list leads")
	}
	leads, err := svc.ListLeads("W1", "Q1")
	if err != nil || len(leads) != 1 {
		t.Fatalf("owner list failed: %v (%d leads)", err, len(leads))
	}

	if err := svc.DeleteLead("W2", lead.ID); err == nil {
		t.Fatalf("foreign workspace must not delete lead")
	}
	if err := svc.DeleteLead("W1", lead.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if len(store.leads) != 0 {
		t.Fatalf("lead not deleted")
	}
}
