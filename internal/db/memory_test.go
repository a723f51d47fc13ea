package db

import (
	"testing"
	"time"

	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/services"
)

func TestMemoryStoreQuizRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	q := &services.Quiz{ID: "Q1", WorkspaceID: "W1", Name: "Quiz", Slug: "quiz", CreatedAt: time.Now()}
	if _, err := s.InsertQuiz(q); err != nil {
		t.Fatalf("InsertQuiz: %v", err)
	}
	got, err := s.GetQuizBySlug("quiz")
	if err != nil || got == nil || got.ID != "Q1" {
		t.Fatalf("GetQuizBySlug = %+v, %v", got, err)
	}
	// Stored copy must be isolated from caller mutation.
	q.Name = "mutated"
	got, _ = s.GetQuiz("Q1")
	if got.Name != "Quiz" {
		t.Fatalf("store leaked caller pointer")
	}
}

func TestMemoryStoreDeleteQuizCascades(t *testing.T) {
	s := NewMemoryStore()
	_, _ = s.InsertQuiz(&services.Quiz{ID: "Q1", WorkspaceID: "W1", Slug: "a"})
	_, _ = s.AddLead(&services.Lead{ID: "L1", QuizID: "Q1"})
	_, _ = s.AddLead(&services.Lead{ID: "L2", QuizID: "other"})
	_, _ = s.InsertIntegration(&services.Integration{ID: "I1", QuizID: "Q1"})

	if err := s.DeleteQuiz("Q1"); err != nil {
		t.Fatalf("DeleteQuiz: %v", err)
	}
	if l, _ := s.GetLead("L1"); l != nil {
		t.Fatalf("lead of deleted quiz survived")
	}
	if l, _ := s.GetLead("L2"); l == nil {
		t.Fatalf("unrelated lead removed")
	}
	if in, _ := s.GetIntegration("I1"); in != nil {
		t.Fatalf("integration of deleted quiz survived")
	}
}

func TestMemoryStoreListActiveIntegrations(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, _ = s.InsertIntegration(&services.Integration{ID: "I1", QuizID: "Q1", Active: true, CreatedAt: base})
	_, _ = s.InsertIntegration(&services.Integration{ID: "I2", QuizID: "Q1", Active: false, CreatedAt: base.Add(time.Minute)})
	_, _ = s.InsertIntegration(&services.Integration{ID: "I3", QuizID: "Q1", Active: true, CreatedAt: base.Add(2 * time.Minute)})
	_, _ = s.InsertIntegration(&services.Integration{ID: "I4", QuizID: "Q2", Active: true, CreatedAt: base})

	active, err := s.ListActiveIntegrations("Q1")
	if err != nil {
		t.Fatalf("ListActiveIntegrations: %v", err)
	}
	if len(active) != 2 || active[0].ID != "I3" || active[1].ID != "I1" {
		ids := []string{}
		for _, in := range active {
			ids = append(ids, in.ID)
		}
		t.Fatalf("active = %v, want [I3 I1] newest first", ids)
	}

	all, _ := s.ListIntegrations("Q1")
	if len(all) != 3 {
		t.Fatalf("all integrations = %d, want 3", len(all))
	}
}

func TestMemoryStoreUserEmailCaseInsensitive(t *testing.T) {
	s := NewMemoryStore()
	_ = s.AddUser(&services.User{ID: "U1", Email: "User@Example.com"})
	u, err := s.FindUserByEmail("user@example.COM")
	if err != nil || u == nil || u.ID != "U1" {
		t.Fatalf("FindUserByEmail = %+v, %v", u, err)
	}
}

func TestMemoryStoreUpdateMissingRows(t *testing.T) {
	s := NewMemoryStore()
	if err := s.UpdateQuiz(&services.Quiz{ID: "nope"}); err == nil {
		t.Fatalf("expected not found updating missing quiz")
	}
	if err := s.UpdateIntegration(&services.Integration{ID: "nope"}); err == nil {
		t.Fatalf("expected not found updating missing integration")
	}
}
