package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/services"
)

// SQLStore persists the domain in a relational database. It speaks the
// dialect subset shared by SQLite (mattn/go-sqlite3) and Postgres
// (lib/pq); queries are written with ? placeholders and rebound to $n for
// Postgres.
type SQLStore struct {
	db       *sql.DB
	postgres bool
}

// NewSQLStore wraps an opened connection. driverName selects placeholder
// rebinding ("postgres" vs anything else).
func NewSQLStore(db *sql.DB, driverName string) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	s := &SQLStore{db: db, postgres: driverName == "postgres"}
	if !s.postgres {
		pragmas := []string{
			"PRAGMA foreign_keys = ON",
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
		}
		for _, stmt := range pragmas {
			if _, err := db.Exec(stmt); err != nil {
				return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
			}
		}
	}
	return s, nil
}

// rebind converts ? placeholders to $1..$n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) exec(query string, args ...any) (sql.Result, error) {
	return s.db.Exec(s.rebind(query), args...)
}

func (s *SQLStore) queryRow(query string, args ...any) *sql.Row {
	return s.db.QueryRow(s.rebind(query), args...)
}

func (s *SQLStore) query(query string, args ...any) (*sql.Rows, error) {
	return s.db.Query(s.rebind(query), args...)
}

func encodeJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeJSON[T any](ns sql.NullString) T {
	var out T
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return out
	}
	_ = json.Unmarshal([]byte(ns.String), &out)
	return out
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

// --- workspaces & users ---

func (s *SQLStore) AddWorkspace(w *services.Workspace) error {
	_, err := s.exec(`INSERT INTO workspaces (id, name) VALUES (?, ?)`, w.ID, w.Name)
	return err
}

func (s *SQLStore) AddUser(u *services.User) error {
	_, err := s.exec(
		`INSERT INTO users (id, email, pass_hash, workspace_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, strings.ToLower(u.Email), string(u.PassHash), u.WorkspaceID, u.CreatedAt,
	)
	return err
}

func (s *SQLStore) FindUserByEmail(email string) (*services.User, error) {
	row := s.queryRow(
		`SELECT id, email, pass_hash, workspace_id, created_at FROM users WHERE email = ?`,
		strings.ToLower(email),
	)
	var u services.User
	var hash string
	err := row.Scan(&u.ID, &u.Email, &hash, &u.WorkspaceID, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.PassHash = []byte(hash)
	return &u, nil
}

// --- quizzes ---

func (s *SQLStore) InsertQuiz(q *services.Quiz) (*services.Quiz, error) {
	ranges, err := encodeJSON(q.ScoreRanges)
	if err != nil {
		return nil, err
	}
	_, err = s.exec(
		`INSERT INTO quizzes (id, workspace_id, name, slug, published, score_ranges, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.WorkspaceID, q.Name, q.Slug, boolToInt64(q.Published), ranges, q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s.GetQuiz(q.ID)
}

func (s *SQLStore) scanQuiz(row interface{ Scan(...any) error }) (*services.Quiz, error) {
	var q services.Quiz
	var published int64
	var ranges sql.NullString
	err := row.Scan(&q.ID, &q.WorkspaceID, &q.Name, &q.Slug, &published, &ranges, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	q.Published = published != 0
	q.ScoreRanges = decodeJSON[[]services.ScoreRange](ranges)
	return &q, nil
}

const quizColumns = `id, workspace_id, name, slug, published, score_ranges, created_at`

func (s *SQLStore) GetQuiz(id string) (*services.Quiz, error) {
	return s.scanQuiz(s.queryRow(`SELECT `+quizColumns+` FROM quizzes WHERE id = ?`, id))
}

func (s *SQLStore) GetQuizBySlug(slug string) (*services.Quiz, error) {
	return s.scanQuiz(s.queryRow(`SELECT `+quizColumns+` FROM quizzes WHERE slug = ?`, slug))
}

func (s *SQLStore) UpdateQuiz(q *services.Quiz) error {
	ranges, err := encodeJSON(q.ScoreRanges)
	if err != nil {
		return err
	}
	res, err := s.exec(
		`UPDATE quizzes SET name = ?, slug = ?, published = ?, score_ranges = ? WHERE id = ?`,
		q.Name, q.Slug, boolToInt64(q.Published), ranges, q.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.NewNotFoundError("quiz not found")
	}
	return nil
}

// DeleteQuiz cascades to leads and integrations. The explicit deletes keep
// behavior identical on SQLite connections without foreign_keys enabled.
func (s *SQLStore) DeleteQuiz(id string) error {
	if _, err := s.exec(`DELETE FROM leads WHERE quiz_id = ?`, id); err != nil {
		return err
	}
	if _, err := s.exec(`DELETE FROM integrations WHERE quiz_id = ?`, id); err != nil {
		return err
	}
	_, err := s.exec(`DELETE FROM quizzes WHERE id = ?`, id)
	return err
}

func (s *SQLStore) ListQuizzesByWorkspace(workspaceID string) ([]*services.Quiz, error) {
	rows, err := s.query(`SELECT `+quizColumns+` FROM quizzes WHERE workspace_id = ? ORDER BY created_at DESC, id DESC`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := []*services.Quiz{}
	for rows.Next() {
		q, err := s.scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// --- leads ---

func (s *SQLStore) AddLead(l *services.Lead) (*services.Lead, error) {
	answers, err := encodeJSON(l.Answers)
	if err != nil {
		return nil, err
	}
	metadata, err := encodeJSON(l.Metadata)
	if err != nil {
		return nil, err
	}
	_, err = s.exec(
		`INSERT INTO leads (id, quiz_id, name, email, phone, answers, score, result_category, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.QuizID, nullString(l.Name), nullString(l.Email), nullString(l.Phone),
		answers, l.Score, nullString(l.ResultCategory), metadata, l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s.GetLead(l.ID)
}

const leadColumns = `id, quiz_id, name, email, phone, answers, score, result_category, metadata, created_at`

func (s *SQLStore) scanLead(row interface{ Scan(...any) error }) (*services.Lead, error) {
	var l services.Lead
	var name, email, phone, answers, category, metadata sql.NullString
	err := row.Scan(&l.ID, &l.QuizID, &name, &email, &phone, &answers, &l.Score, &category, &metadata, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l.Name = name.String
	l.Email = email.String
	l.Phone = phone.String
	l.ResultCategory = category.String
	l.Answers = decodeJSON[[]services.Answer](answers)
	l.Metadata = decodeJSON[map[string]string](metadata)
	return &l, nil
}

func (s *SQLStore) GetLead(id string) (*services.Lead, error) {
	return s.scanLead(s.queryRow(`SELECT `+leadColumns+` FROM leads WHERE id = ?`, id))
}

func (s *SQLStore) ListLeadsByQuiz(quizID string) ([]*services.Lead, error) {
	rows, err := s.query(`SELECT `+leadColumns+` FROM leads WHERE quiz_id = ? ORDER BY created_at DESC, id DESC`, quizID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := []*services.Lead{}
	for rows.Next() {
		l, err := s.scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteLead(id string) error {
	_, err := s.exec(`DELETE FROM leads WHERE id = ?`, id)
	return err
}

// --- integrations ---

func (s *SQLStore) InsertIntegration(in *services.Integration) (*services.Integration, error) {
	config, err := encodeJSON(in.Config)
	if err != nil {
		return nil, err
	}
	_, err = s.exec(
		`INSERT INTO integrations (id, quiz_id, type, name, config, active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.QuizID, in.Type, in.Name, config, boolToInt64(in.Active), in.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s.GetIntegration(in.ID)
}

const integrationColumns = `id, quiz_id, type, name, config, active, created_at`

func (s *SQLStore) scanIntegration(row interface{ Scan(...any) error }) (*services.Integration, error) {
	var in services.Integration
	var config sql.NullString
	var active int64
	err := row.Scan(&in.ID, &in.QuizID, &in.Type, &in.Name, &config, &active, &in.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	in.Active = active != 0
	in.Config = decodeJSON[map[string]string](config)
	return &in, nil
}

func (s *SQLStore) GetIntegration(id string) (*services.Integration, error) {
	return s.scanIntegration(s.queryRow(`SELECT `+integrationColumns+` FROM integrations WHERE id = ?`, id))
}

func (s *SQLStore) UpdateIntegration(in *services.Integration) error {
	config, err := encodeJSON(in.Config)
	if err != nil {
		return err
	}
	res, err := s.exec(
		`UPDATE integrations SET name = ?, config = ?, active = ? WHERE id = ?`,
		in.Name, config, boolToInt64(in.Active), in.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.NewNotFoundError("integration not found")
	}
	return nil
}

func (s *SQLStore) DeleteIntegration(id string) error {
	_, err := s.exec(`DELETE FROM integrations WHERE id = ?`, id)
	return err
}

func (s *SQLStore) listIntegrations(query, quizID string) ([]*services.Integration, error) {
	rows, err := s.query(query, quizID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := []*services.Integration{}
	for rows.Next() {
		in, err := s.scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListIntegrations(quizID string) ([]*services.Integration, error) {
	return s.listIntegrations(`SELECT `+integrationColumns+` FROM integrations WHERE quiz_id = ? ORDER BY created_at DESC, id DESC`, quizID)
}

// ListActiveIntegrations feeds the dispatcher; most recent first, though
// delivery order is unobservable.
func (s *SQLStore) ListActiveIntegrations(quizID string) ([]*services.Integration, error) {
	return s.listIntegrations(`SELECT `+integrationColumns+` FROM integrations WHERE quiz_id = ? AND active = 1 ORDER BY created_at DESC, id DESC`, quizID)
}
