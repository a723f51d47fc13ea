package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/middleware"
	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/services"
)

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return services.NewInvalidError("invalid JSON body")
	}
	return nil
}

func workspaceID(r *http.Request) string {
	wid, _ := middleware.WorkspaceIDFromContext(r.Context())
	return wid
}

// --- auth ---

type registerRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	WorkspaceName string `json:"workspace_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token       string `json:"token"`
	UserID      string `json:"user_id"`
	WorkspaceID string `json:"workspace_id"`
}

func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := rt.auth.Register(req.Email, req.Password, req.WorkspaceName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: res.Token, UserID: res.UserID, WorkspaceID: res.WorkspaceID})
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: res.Token, UserID: res.UserID, WorkspaceID: res.WorkspaceID})
}

// --- public quiz + lead capture ---

func (rt *Router) handlePublicQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := rt.quizzes.PublicQuiz(chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

type captureLeadRequest struct {
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	Phone    string            `json:"phone"`
	Answers  []services.Answer `json:"answers"`
	Score    int               `json:"score"`
	Metadata map[string]string `json:"metadata"`
}

func (rt *Router) handleCaptureLead(w http.ResponseWriter, r *http.Request) {
	var req captureLeadRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	lead, err := rt.leads.CaptureLead(services.CaptureLeadRequest{
		Slug:     chi.URLParam(r, "slug"),
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Answers:  req.Answers,
		Score:    req.Score,
		Metadata: req.Metadata,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

// --- quizzes ---

type createQuizRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (rt *Router) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	quiz, err := rt.quizzes.CreateQuiz(workspaceID(r), req.Name, req.Slug)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (rt *Router) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := rt.quizzes.ListQuizzes(workspaceID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (rt *Router) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := rt.quizzes.GetQuiz(workspaceID(r), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (rt *Router) handleUpdateQuiz(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := decodeBody(r, &raw); err != nil {
		writeError(w, err)
		return
	}
	quiz, err := rt.quizzes.UpdateQuiz(workspaceID(r), chi.URLParam(r, "quizID"), raw)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (rt *Router) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := rt.quizzes.DeleteQuiz(workspaceID(r), chi.URLParam(r, "quizID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type scoreRangesRequest struct {
	Ranges []services.ScoreRange `json:"ranges"`
}

func (rt *Router) handleSetScoreRanges(w http.ResponseWriter, r *http.Request) {
	var req scoreRangesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	quiz, err := rt.quizzes.SetScoreRanges(workspaceID(r), chi.URLParam(r, "quizID"), req.Ranges)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

// --- leads ---

func (rt *Router) handleListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := rt.leads.ListLeads(workspaceID(r), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (rt *Router) handleExportLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := rt.leads.ListLeads(workspaceID(r), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := services.ExportLeadsCSV(leads)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=leads-%s.csv", time.Now().Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	if err := rt.leads.DeleteLead(workspaceID(r), chi.URLParam(r, "leadID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- integrations ---

type createIntegrationRequest struct {
	Type   string            `json:"type"`
	Name   string            `json:"name"`
	Config map[string]string `json:"config"`
}

func (rt *Router) handleCreateIntegration(w http.ResponseWriter, r *http.Request) {
	var req createIntegrationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	in, err := rt.integrations.CreateIntegration(workspaceID(r), chi.URLParam(r, "quizID"), req.Type, req.Name, req.Config)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (rt *Router) handleListIntegrations(w http.ResponseWriter, r *http.Request) {
	list, err := rt.integrations.ListIntegrations(workspaceID(r), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (rt *Router) handleUpdateIntegration(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := decodeBody(r, &raw); err != nil {
		writeError(w, err)
		return
	}
	in, err := rt.integrations.UpdateIntegration(workspaceID(r), chi.URLParam(r, "integrationID"), raw)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (rt *Router) handleDeleteIntegration(w http.ResponseWriter, r *http.Request) {
	if err := rt.integrations.DeleteIntegration(workspaceID(r), chi.URLParam(r, "integrationID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTestIntegration delivers a synthetic payload through the real
// adapter and reports the outcome to the caller. Unlike live dispatch
// this is synchronous so the dashboard can show success or failure.
func (rt *Router) handleTestIntegration(w http.ResponseWriter, r *http.Request) {
	in, err := rt.integrations.GetIntegration(workspaceID(r), chi.URLParam(r, "integrationID"))
	if err != nil {
		writeError(w, err)
		return
	}
	res := rt.tester.SendTest(r.Context(), in)
	writeJSON(w, http.StatusOK, res)
}

// --- templates ---

type templateSegmentsRequest struct {
	Template string `json:"template"`
}

type templateSegmentsResponse struct {
	Segments []services.TemplateSegment `json:"segments"`
}

// handleTemplateSegments splits a message template into literal and
// variable parts so editors can render placeholder chips.
func (rt *Router) handleTemplateSegments(w http.ResponseWriter, r *http.Request) {
	var req templateSegmentsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templateSegmentsResponse{Segments: services.TemplateSegments(req.Template)})
}
