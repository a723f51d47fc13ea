package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/dispatch"
	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/middleware"
	"github.com/marcobahe/quiz-maker-fullfunnel-sub002/internal/services"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// IntegrationTester runs the synchronous "send test payload" action.
// Satisfied by *dispatch.Dispatcher.
type IntegrationTester interface {
	SendTest(ctx context.Context, in *services.Integration) dispatch.Result
}

type Router struct {
	auth         *services.AuthService
	quizzes      *services.QuizService
	leads        *services.LeadService
	integrations *services.IntegrationService
	tester       IntegrationTester
}

func NewRouter(
	auth *services.AuthService,
	quizzes *services.QuizService,
	leads *services.LeadService,
	integrations *services.IntegrationService,
	tester IntegrationTester,
) *Router {
	return &Router{
		auth:         auth,
		quizzes:      quizzes,
		leads:        leads,
		integrations: integrations,
		tester:       tester,
	}
}

// Handler assembles the full middleware chain and route table.
func (rt *Router) Handler(logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.WithAuth)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": Version})
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", rt.handleRegister)
		r.Post("/auth/login", rt.handleLogin)
		r.Get("/p/{slug}", rt.handlePublicQuiz)
		r.Post("/p/{slug}/leads", rt.handleCaptureLead)

		// Workspace-scoped routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/quizzes", rt.handleCreateQuiz)
			r.Get("/quizzes", rt.handleListQuizzes)
			r.Get("/quizzes/{quizID}", rt.handleGetQuiz)
			r.Patch("/quizzes/{quizID}", rt.handleUpdateQuiz)
			r.Delete("/quizzes/{quizID}", rt.handleDeleteQuiz)
			r.Put("/quizzes/{quizID}/score-ranges", rt.handleSetScoreRanges)

			r.Get("/quizzes/{quizID}/leads", rt.handleListLeads)
			r.Get("/quizzes/{quizID}/leads/export", rt.handleExportLeads)
			r.Delete("/leads/{leadID}", rt.handleDeleteLead)

			r.Post("/quizzes/{quizID}/integrations", rt.handleCreateIntegration)
			r.Get("/quizzes/{quizID}/integrations", rt.handleListIntegrations)
			r.Patch("/integrations/{integrationID}", rt.handleUpdateIntegration)
			r.Delete("/integrations/{integrationID}", rt.handleDeleteIntegration)
			r.Post("/integrations/{integrationID}/test", rt.handleTestIntegration)

			r.Post("/templates/segments", rt.handleTemplateSegments)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the service error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	if se, ok := services.AsServiceError(err); ok {
		msg = se.Message
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		case services.ErrorTooManyRequests:
			status = http.StatusTooManyRequests
		case services.ErrorBadGateway:
			status = http.StatusBadGateway
		}
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
