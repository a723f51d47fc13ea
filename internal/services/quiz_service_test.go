package services

import (
	"testing"
)

type stubQuizStore struct {
	quizzes map[string]*Quiz
	updated *Quiz
}

func newStubQuizStore() *stubQuizStore {
	return &stubQuizStore{quizzes: map[string]*Quiz{}}
}

func (s *stubQuizStore) InsertQuiz(q *Quiz) (*Quiz, error) {
	cp := *q
	s.quizzes[q.ID] = &cp
	return &cp, nil
}

func (s *stubQuizStore) GetQuiz(id string) (*Quiz, error) {
	if q, ok := s.quizzes[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, nil
}

func (s *stubQuizStore) GetQuizBySlug(slug string) (*Quiz, error) {
	for _, q := range s.quizzes {
		if q.Slug == slug {
			cp := *q
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubQuizStore) UpdateQuiz(q *Quiz) error {
	cp := *q
	s.quizzes[q.ID] = &cp
	s.updated = &cp
	return nil
}

func (s *stubQuizStore) DeleteQuiz(id string) error {
	delete(s.quizzes, id)
	return nil
}

func (s *stubQuizStore) ListQuizzesByWorkspace(wid string) ([]*Quiz, error) {
	out := []*Quiz{}
	for _, q := range s.quizzes {
		if q.WorkspaceID == wid {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

func TestCreateQuizGeneratesSlug(t *testing.T) {
	svc := NewQuizService(newStubQuizStore())
	q, err := svc.CreateQuiz("W1", "My First Quiz!", "")
	if err != nil {
		t.Fatalf("CreateQuiz error: %v", err)
	}
	if q.Slug != "my-first-quiz" {
		t.Fatalf("slug = %q, want my-first-quiz", q.Slug)
	}
	if q.ID == "" || q.WorkspaceID != "W1" {
		t.Fatalf("unexpected quiz: %+v", q)
	}
}

func TestCreateQuizRejectsDuplicateSlug(t *testing.T) {
	store := newStubQuizStore()
	svc := NewQuizService(store)
	if _, err := svc.CreateQuiz("W1", "Quiz", "taken"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateQuiz("W1", "Other", "taken")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateQuizRequiresWorkspace(t *testing.T) {
	svc := NewQuizService(newStubQuizStore())
	if _, err := svc.CreateQuiz("", "Quiz", ""); err == nil {
		t.Fatalf("expected forbidden error")
	}
}

func TestGetQuizEnforcesWorkspaceScope(t *testing.T) {
	store := newStubQuizStore()
	svc := NewQuizService(store)
	q, _ := svc.CreateQuiz("W1", "Quiz", "")
	if _, err := svc.GetQuiz("W2", q.ID); err == nil {
		t.Fatalf("expected forbidden for foreign workspace")
	}
	got, err := svc.GetQuiz("W1", q.ID)
	if err != nil || got.ID != q.ID {
		t.Fatalf("owner fetch failed: %v", err)
	}
}

func TestUpdateQuizPartial(t *testing.T) {
	store := newStubQuizStore()
	svc := NewQuizService(store)
	q, _ := svc.CreateQuiz("W1", "Quiz", "")
	updated, err := svc.UpdateQuiz("W1", q.ID, map[string]any{"published": true, "name": "Renamed"})
	if err != nil {
		t.Fatalf("UpdateQuiz error: %v", err)
	}
	if !updated.Published || updated.Name != "Renamed" || updated.Slug != q.Slug {
		t.Fatalf("unexpected update: %+v", updated)
	}
}

func TestSetScoreRangesValidates(t *testing.T) {
	store := newStubQuizStore()
	svc := NewQuizService(store)
	q, _ := svc.CreateQuiz("W1", "Quiz", "")

	if _, err := svc.SetScoreRanges("W1", q.ID, []ScoreRange{{Min: 10, Max: 5, Label: "x"}}); err == nil {
		t.Fatalf("expected inverted band rejection")
	}
	if _, err := svc.SetScoreRanges("W1", q.ID, []ScoreRange{{Min: 0, Max: 5, Label: " "}}); err == nil {
		t.Fatalf("expected empty label rejection")
	}
	updated, err := svc.SetScoreRanges("W1", q.ID, []ScoreRange{{Min: 0, Max: 10, Label: "Low"}})
	if err != nil {
		t.Fatalf("SetScoreRanges error: %v", err)
	}
	if len(updated.ScoreRanges) != 1 || updated.ScoreRanges[0].Label != "Low" {
		t.Fatalf("ranges not stored: %+v", updated.ScoreRanges)
	}
}

func TestPublicQuizRequiresPublished(t *testing.T) {
	store := newStubQuizStore()
	svc := NewQuizService(store)
	q, _ := svc.CreateQuiz("W1", "Quiz", "my-quiz")
	if _, err := svc.PublicQuiz("my-quiz"); err == nil {
		t.Fatalf("unpublished quiz should not resolve")
	}
	if _, err := svc.UpdateQuiz("W1", q.ID, map[string]any{"published": true}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	pub, err := svc.PublicQuiz("my-quiz")
	if err != nil {
		t.Fatalf("PublicQuiz error: %v", err)
	}
	if pub.WorkspaceID != "" {
		t.Fatalf("public view leaks workspace id")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":      "hello-world",
		"  Trim  Me  ":     "trim-me",
		"Quiz #42 (beta)!": "quiz-42-beta",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Fatalf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
	if slugify("!!!") == "" {
		t.Fatalf("slugify of symbol-only name must fall back to an id")
	}
}
