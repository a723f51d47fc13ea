package db

import (
	"sort"
	"strings"
	"sync"

	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/services"
)

// MemoryStore keeps everything in process memory. It backs tests and
// zero-config development runs; the SQL store is the production path.
type MemoryStore struct {
	mu           sync.RWMutex
	workspaces   map[string]*services.Workspace
	usersByEmail map[string]*services.User
	quizzes      map[string]*services.Quiz
	leads        map[string]*services.Lead
	integrations map[string]*services.Integration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		workspaces:   map[string]*services.Workspace{},
		usersByEmail: map[string]*services.User{},
		quizzes:      map[string]*services.Quiz{},
		leads:        map[string]*services.Lead{},
		integrations: map[string]*services.Integration{},
	}
}

func (s *MemoryStore) AddWorkspace(w *services.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	s.workspaces[w.ID] = &cp
	return nil
}

func (s *MemoryStore) AddUser(u *services.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.usersByEmail[strings.ToLower(u.Email)] = &cp
	return nil
}

func (s *MemoryStore) FindUserByEmail(email string) (*services.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.usersByEmail[strings.ToLower(email)]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryStore) InsertQuiz(q *services.Quiz) (*services.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *q
	s.quizzes[q.ID] = &cp
	out := cp
	return &out, nil
}

func (s *MemoryStore) GetQuiz(id string) (*services.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if q, ok := s.quizzes[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryStore) GetQuizBySlug(slug string) (*services.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.quizzes {
		if q.Slug == slug {
			cp := *q
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) UpdateQuiz(q *services.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[q.ID]; !ok {
		return services.NewNotFoundError("quiz not found")
	}
	cp := *q
	s.quizzes[q.ID] = &cp
	return nil
}

// DeleteQuiz removes the quiz and cascades to its leads and integrations.
func (s *MemoryStore) DeleteQuiz(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.quizzes, id)
	for lid, l := range s.leads {
		if l.QuizID == id {
			delete(s.leads, lid)
		}
	}
	for iid, in := range s.integrations {
		if in.QuizID == id {
			delete(s.integrations, iid)
		}
	}
	return nil
}

func (s *MemoryStore) ListQuizzesByWorkspace(workspaceID string) ([]*services.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*services.Quiz{}
	for _, q := range s.quizzes {
		if q.WorkspaceID == workspaceID {
			cp := *q
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out, func(q *services.Quiz) (string, int64) { return q.ID, q.CreatedAt.UnixNano() })
	return out, nil
}

func (s *MemoryStore) AddLead(l *services.Lead) (*services.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.leads[l.ID] = &cp
	out := cp
	return &out, nil
}

func (s *MemoryStore) GetLead(id string) (*services.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.leads[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryStore) ListLeadsByQuiz(quizID string) ([]*services.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*services.Lead{}
	for _, l := range s.leads {
		if l.QuizID == quizID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out, func(l *services.Lead) (string, int64) { return l.ID, l.CreatedAt.UnixNano() })
	return out, nil
}

func (s *MemoryStore) DeleteLead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.leads, id)
	return nil
}

func (s *MemoryStore) InsertIntegration(in *services.Integration) (*services.Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *in
	s.integrations[in.ID] = &cp
	out := cp
	return &out, nil
}

func (s *MemoryStore) GetIntegration(id string) (*services.Integration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if in, ok := s.integrations[id]; ok {
		cp := *in
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryStore) UpdateIntegration(in *services.Integration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.integrations[in.ID]; !ok {
		return services.NewNotFoundError("integration not found")
	}
	cp := *in
	s.integrations[in.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteIntegration(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.integrations, id)
	return nil
}

func (s *MemoryStore) ListIntegrations(quizID string) ([]*services.Integration, error) {
	return s.listIntegrations(quizID, false)
}

func (s *MemoryStore) ListActiveIntegrations(quizID string) ([]*services.Integration, error) {
	return s.listIntegrations(quizID, true)
}

func (s *MemoryStore) listIntegrations(quizID string, activeOnly bool) ([]*services.Integration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*services.Integration{}
	for _, in := range s.integrations {
		if in.QuizID != quizID {
			continue
		}
		if activeOnly && !in.Active {
			continue
		}
		cp := *in
		out = append(out, &cp)
	}
	sortNewestFirst(out, func(in *services.Integration) (string, int64) { return in.ID, in.CreatedAt.UnixNano() })
	return out, nil
}

// sortNewestFirst orders by creation time descending with ID as the
// tie-breaker for stable output.
func sortNewestFirst[T any](items []T, key func(T) (string, int64)) {
	sort.SliceStable(items, func(i, j int) bool {
		idI, tI := key(items[i])
		idJ, tJ := key(items[j])
		if tI == tJ {
			return idI > idJ
		}
		return tI > tJ
	})
}
