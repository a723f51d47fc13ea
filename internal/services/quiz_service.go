package services

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type QuizStore interface {
	InsertQuiz(q *Quiz) (*Quiz, error)
	GetQuiz(id string) (*Quiz, error)
	GetQuizBySlug(slug string) (*Quiz, error)
	UpdateQuiz(q *Quiz) error
	DeleteQuiz(id string) error
	ListQuizzesByWorkspace(workspaceID string) ([]*Quiz, error)
}

type QuizService struct {
	store QuizStore
	now   func() time.Time
}

func NewQuizService(store QuizStore) *QuizService {
	return &QuizService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func (s *QuizService) CreateQuiz(workspaceID, name, slug string) (*Quiz, error) {
	if workspaceID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewInvalidError("name required")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = slugify(name)
	}
	if !slugRe.MatchString(slug) {
		return nil, NewInvalidError("slug must be lowercase letters, digits and hyphens")
	}
	if existing, err := s.store.GetQuizBySlug(slug); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, NewConflictError("slug already in use")
	}
	q := &Quiz{
		ID:          shortID(8),
		WorkspaceID: workspaceID,
		Name:        name,
		Slug:        slug,
		CreatedAt:   s.now(),
	}
	created, err := s.store.InsertQuiz(q)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return q, nil
	}
	return created, nil
}

func (s *QuizService) ListQuizzes(workspaceID string) ([]*Quiz, error) {
	if workspaceID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	return s.store.ListQuizzesByWorkspace(workspaceID)
}

// GetQuiz returns a quiz only when it belongs to the caller's workspace.
func (s *QuizService) GetQuiz(workspaceID, id string) (*Quiz, error) {
	q, err := s.store.GetQuiz(id)
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

// UpdateQuiz applies a partial update from a decoded JSON object.
func (s *QuizService) UpdateQuiz(workspaceID, id string, raw map[string]any) (*Quiz, error) {
	q, err := s.GetQuiz(workspaceID, id)
	if err != nil {
		return nil, err
	}
	updated := *q
	if v, ok := raw["name"].(string); ok {
		if strings.TrimSpace(v) == "" {
			return nil, NewInvalidError("name required")
		}
		updated.Name = strings.TrimSpace(v)
	}
	if v, ok := raw["slug"].(string); ok && v != q.Slug {
		if !slugRe.MatchString(v) {
			return nil, NewInvalidError("slug must be lowercase letters, digits and hyphens")
		}
		other, err := s.store.GetQuizBySlug(v)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != q.ID {
			return nil, NewConflictError("slug already in use")
		}
		updated.Slug = v
	}
	if v, ok := raw["published"].(bool); ok {
		updated.Published = v
	}
	if err := s.store.UpdateQuiz(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *QuizService) DeleteQuiz(workspaceID, id string) error {
	if _, err := s.GetQuiz(workspaceID, id); err != nil {
		return err
	}
	return s.store.DeleteQuiz(id)
}

// SetScoreRanges replaces a quiz's result bands. Bands may not be inverted;
// overlap is allowed and resolved first-match-wins at lookup time.
func (s *QuizService) SetScoreRanges(workspaceID, quizID string, ranges []ScoreRange) (*Quiz, error) {
	q, err := s.GetQuiz(workspaceID, quizID)
	if err != nil {
		return nil, err
	}
	for _, r := range ranges {
		if r.Min > r.Max {
			return nil, NewInvalidError("score range min exceeds max")
		}
		if strings.TrimSpace(r.Label) == "" {
			return nil, NewInvalidError("score range label required")
		}
	}
	updated := *q
	updated.ScoreRanges = ranges
	if err := s.store.UpdateQuiz(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// PublicQuiz resolves a published quiz by slug for the player, with the
// owning workspace stripped.
func (s *QuizService) PublicQuiz(slug string) (*Quiz, error) {
	q, err := s.store.GetQuizBySlug(slug)
	if err != nil {
		return nil, err
	}
	if q == nil || !q.Published {
		return nil, NewNotFoundError("quiz not found")
	}
	out := *q
	out.WorkspaceID = ""
	return &out, nil
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

func slugify(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastHyphen := true
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		s = shortID(8)
	}
	return s
}
