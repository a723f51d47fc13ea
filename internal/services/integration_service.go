package services

import (
	"strings"
	"time"
)

type IntegrationStore interface {
	GetQuiz(id string) (*Quiz, error)
	InsertIntegration(in *Integration) (*Integration, error)
	GetIntegration(id string) (*Integration, error)
	UpdateIntegration(in *Integration) error
	DeleteIntegration(id string) error
	ListIntegrations(quizID string) ([]*Integration, error)
}

// IntegrationService manages the configured outbound destinations of a
// quiz. It validates the type tag at save time; the config map contents are
// deliberately not validated here — the matching delivery adapter owns the
// required-key check and fails that single delivery when keys are missing.
type IntegrationService struct {
	store IntegrationStore
	now   func() time.Time
}

func NewIntegrationService(store IntegrationStore) *IntegrationService {
	return &IntegrationService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func knownIntegrationType(t string) bool {
	return t == IntegrationTypeWebhook || t == IntegrationTypeCRM
}

func (s *IntegrationService) ownedQuiz(workspaceID, quizID string) (*Quiz, error) {
	q, err := s.store.GetQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, NewNotFoundError("quiz not found")
	}
	if q.WorkspaceID != workspaceID {
		return nil, NewForbiddenError("forbidden")
	}
	return q, nil
}

func (s *IntegrationService) CreateIntegration(workspaceID, quizID, typ, name string, config map[string]string) (*Integration, error) {
	if workspaceID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	if _, err := s.ownedQuiz(workspaceID, quizID); err != nil {
		return nil, err
	}
	typ = strings.TrimSpace(typ)
	if !knownIntegrationType(typ) {
		return nil, NewInvalidError("unknown integration type: " + typ)
	}
	if strings.TrimSpace(name) == "" {
		name = typ
	}
	if config == nil {
		config = map[string]string{}
	}
	in := &Integration{
		ID:        shortID(8),
		QuizID:    quizID,
		Type:      typ,
		Name:      strings.TrimSpace(name),
		Config:    config,
		Active:    true,
		CreatedAt: s.now(),
	}
	created, err := s.store.InsertIntegration(in)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return in, nil
	}
	return created, nil
}

func (s *IntegrationService) ListIntegrations(workspaceID, quizID string) ([]*Integration, error) {
	if _, err := s.ownedQuiz(workspaceID, quizID); err != nil {
		return nil, err
	}
	return s.store.ListIntegrations(quizID)
}

// GetIntegration returns an integration after checking that its quiz
// belongs to the caller's workspace.
func (s *IntegrationService) GetIntegration(workspaceID, id string) (*Integration, error) {
	in, err := s.store.GetIntegration(id)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, NewNotFoundError("integration not found")
	}
	if _, err := s.ownedQuiz(workspaceID, in.QuizID); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *IntegrationService) UpdateIntegration(workspaceID, id string, raw map[string]any) (*Integration, error) {
	in, err := s.GetIntegration(workspaceID, id)
	if err != nil {
		return nil, err
	}
	updated := *in
	if v, ok := raw["name"].(string); ok && strings.TrimSpace(v) != "" {
		updated.Name = strings.TrimSpace(v)
	}
	if v, ok := raw["active"].(bool); ok {
		updated.Active = v
	}
	if v, ok := raw["config"].(map[string]any); ok {
		cfg := make(map[string]string, len(v))
		for k, val := range v {
			if sv, ok := val.(string); ok {
				cfg[k] = sv
			}
		}
		updated.Config = cfg
	}
	if err := s.store.UpdateIntegration(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *IntegrationService) DeleteIntegration(workspaceID, id string) error {
	if _, err := s.GetIntegration(workspaceID, id); err != nil {
		return err
	}
	return s.store.DeleteIntegration(id)
}
