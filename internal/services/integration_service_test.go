package services

import "testing"

type stubIntegrationStore struct {
	quiz         *Quiz
	integrations map[string]*Integration
}

func newStubIntegrationStore(quiz *Quiz) *stubIntegrationStore {
	return &stubIntegrationStore{quiz: quiz, integrations: map[string]*Integration{}}
}

func (s *stubIntegrationStore) GetQuiz(id string) (*Quiz, error) {
	if s.quiz != nil && s.quiz.ID == id {
		cp := *s.quiz
		return &cp, nil
	}
	return nil, nil
}

func (s *stubIntegrationStore) InsertIntegration(in *Integration) (*Integration, error) {
	cp := *in
	s.integrations[in.ID] = &cp
	return &cp, nil
}

func (s *stubIntegrationStore) GetIntegration(id string) (*Integration, error) {
	if in, ok := s.integrations[id]; ok {
		cp := *in
		return &cp, nil
	}
	return nil, nil
}

func (s *stubIntegrationStore) UpdateIntegration(in *Integration) error {
	cp := *in
	s.integrations[in.ID] = &cp
	return nil
}

func (s *stubIntegrationStore) DeleteIntegration(id string) error {
	delete(s.integrations, id)
	return nil
}

func (s *stubIntegrationStore) ListIntegrations(quizID string) ([]*Integration, error) {
	out := []*Integration{}
	for _, in := range s.integrations {
		if in.QuizID == quizID {
			cp := *in
			out = append(out, &cp)
		}
	}
	return out, nil
}

func TestCreateIntegration(t *testing.T) {
	store := newStubIntegrationStore(&Quiz{ID: "Q1", WorkspaceID: "W1"})
	svc := NewIntegrationService(store)

	in, err := svc.CreateIntegration("W1", "Q1", IntegrationTypeWebhook, "", map[string]string{"url": "https://example.com/hook"})
	if err != nil {
		t.Fatalf("CreateIntegration error: %v", err)
	}
	if !in.Active {
		t.Fatalf("new integration should default to active")
	}
	if in.Name != "webhook" {
		t.Fatalf("name = %q, want type fallback", in.Name)
	}
}

func TestCreateIntegrationRejectsUnknownType(t *testing.T) {
	store := newStubIntegrationStore(&Quiz{ID: "Q1", WorkspaceID: "W1"})
	svc := NewIntegrationService(store)
	_, err := svc.CreateIntegration("W1", "Q1", "carrier-pigeon", "n", nil)
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorInvalid {
		t.Fatalf("expected invalid type error, got %v", err)
	}
}

func TestCreateIntegrationAllowsIncompleteConfig(t *testing.T) {
	// Required keys are checked by the adapter at delivery time, so an
	// integration missing them must still save.
	store := newStubIntegrationStore(&Quiz{ID: "Q1", WorkspaceID: "W1"})
	svc := NewIntegrationService(store)
	if _, err := svc.CreateIntegration("W1", "Q1", IntegrationTypeCRM, "crm", map[string]string{}); err != nil {
		t.Fatalf("incomplete config must save: %v", err)
	}
}

func TestIntegrationWorkspaceScope(t *testing.T) {
	store := newStubIntegrationStore(&Quiz{ID: "Q1", WorkspaceID: "W1"})
	svc := NewIntegrationService(store)
	in, _ := svc.CreateIntegration("W1", "Q1", IntegrationTypeWebhook, "hook", map[string]string{"url": "u"})

	if _, err := svc.GetIntegration("W2", in.ID); err == nil {
		t.Fatalf("foreign workspace must not read integration")
	}
	if _, err := svc.CreateIntegration("W2", "Q1", IntegrationTypeWebhook, "hook", nil); err == nil {
		t.Fatalf("foreign workspace must not create integration")
	}
	if err := svc.DeleteIntegration("W2", in.ID); err == nil {
		t.Fatalf("foreign workspace must not delete integration")
	}
}

func TestUpdateIntegration(t *testing.T) {
	store := newStubIntegrationStore(&Quiz{ID: "Q1", WorkspaceID: "W1"})
	svc := NewIntegrationService(store)
	in, _ := svc.CreateIntegration("W1", "Q1", IntegrationTypeWebhook, "hook", map[string]string{"url": "old"})

	updated, err := svc.UpdateIntegration("W1", in.ID, map[string]any{
		"active": false,
		"config": map[string]any{"url": "new", "secret": "s3c"},
	})
	if err != nil {
		t.Fatalf("UpdateIntegration error: %v", err)
	}
	if updated.Active {
		t.Fatalf("active not updated")
	}
	if updated.Config["url"] != "new" || updated.Config["secret"] != "s3c" {
		t.Fatalf("config not replaced: %v", updated.Config)
	}
}
