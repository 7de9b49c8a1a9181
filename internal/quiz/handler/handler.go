// Package handler exposes the quiz engine over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"agora/internal/quiz/models"
	"agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
	"agora/pkg/platform/httputil"
	"agora/pkg/requestcontext"
)

type Service interface {
	BindAuthority(ctx context.Context, p domain.Principal) error
	CreateQuiz(ctx context.Context, caller domain.Principal, title, description string, questions []models.Question, threshold int) (domain.QuizID, error)
	Submit(ctx context.Context, user domain.Principal, id domain.QuizID, answers []int) (models.Result, error)
	UpdateThreshold(ctx context.Context, caller domain.Principal, id domain.QuizID, threshold int) error
	DeleteQuiz(ctx context.Context, caller domain.Principal, id domain.QuizID) error
	SetMaxQuizzes(ctx context.Context, caller domain.Principal, max int64) error
	GetQuiz(ctx context.Context, id domain.QuizID) (*models.Quiz, bool)
	GetCompletion(ctx context.Context, id domain.QuizID, user domain.Principal) (models.Completion, bool)
	HasPassed(ctx context.Context, id domain.QuizID, user domain.Principal) bool
	Attempts(ctx context.Context, id domain.QuizID, user domain.Principal) uint64
	Count(ctx context.Context) uint64
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/quizzes/authority", h.handleBindAuthority)
	r.Post("/quizzes", h.handleCreate)
	r.Get("/quizzes/count", h.handleCount)
	r.Get("/quizzes/{id}", h.handleGet)
	r.Post("/quizzes/{id}/submissions", h.handleSubmit)
	r.Put("/quizzes/{id}/threshold", h.handleUpdateThreshold)
	r.Delete("/quizzes/{id}", h.handleDelete)
	r.Get("/quizzes/{id}/completions/{principal}", h.handleGetCompletion)
	r.Get("/quizzes/{id}/completions/{principal}/passed", h.handleHasPassed)
	r.Get("/quizzes/{id}/completions/{principal}/attempts", h.handleAttempts)
	r.Put("/quizzes/max-quizzes", h.handleSetMaxQuizzes)
}

func quizID(w http.ResponseWriter, r *http.Request) (domain.QuizID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "quiz id must be an integer"))
		return 0, false
	}
	return domain.QuizID(id), true
}

type bindAuthorityRequest struct {
	Principal string `json:"principal"`
}

func (h *Handler) handleBindAuthority(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[bindAuthorityRequest](w, r)
	if !ok {
		return
	}
	if req.Principal == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "principal is required"))
		return
	}
	if err := h.service.BindAuthority(r.Context(), domain.Principal(req.Principal)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type questionPayload struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

type createQuizRequest struct {
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Questions      []questionPayload `json:"questions"`
	ScoreThreshold int               `json:"score_threshold"`
}

type createQuizResponse struct {
	ID uint64 `json:"id"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[createQuizRequest](w, r)
	if !ok {
		return
	}
	caller := requestcontext.Principal(r.Context())

	questions := make([]models.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		if len(q.Options) != models.OptionsPerQuestion {
			httputil.WriteError(w, models.ErrInvalidQuestionSet)
			return
		}
		questions = append(questions, models.Question{
			Text:         q.Text,
			Options:      [models.OptionsPerQuestion]string(q.Options),
			CorrectIndex: q.CorrectIndex,
		})
	}

	id, err := h.service.CreateQuiz(r.Context(), caller, req.Title, req.Description, questions, req.ScoreThreshold)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createQuizResponse{ID: uint64(id)})
}

type submitRequest struct {
	Answers []int `json:"answers"`
}

type submitResponse struct {
	Score  int  `json:"score"`
	Passed bool `json:"passed"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[submitRequest](w, r)
	if !ok {
		return
	}
	user := requestcontext.Principal(r.Context())

	result, err := h.service.Submit(r.Context(), user, id, req.Answers)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, submitResponse{Score: result.Score, Passed: result.Passed})
}

type updateThresholdRequest struct {
	ScoreThreshold int `json:"score_threshold"`
}

func (h *Handler) handleUpdateThreshold(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[updateThresholdRequest](w, r)
	if !ok {
		return
	}
	caller := requestcontext.Principal(r.Context())

	if err := h.service.UpdateThreshold(r.Context(), caller, id, req.ScoreThreshold); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}
	caller := requestcontext.Principal(r.Context())

	if err := h.service.DeleteQuiz(r.Context(), caller, id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setMaxQuizzesRequest struct {
	Max int64 `json:"max"`
}

func (h *Handler) handleSetMaxQuizzes(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[setMaxQuizzesRequest](w, r)
	if !ok {
		return
	}
	caller := requestcontext.Principal(r.Context())

	if err := h.service.SetMaxQuizzes(r.Context(), caller, req.Max); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// quizResponse is the read model. Correct answers are not exposed.
type quizResponse struct {
	ID             uint64             `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Questions      []questionResponse `json:"questions"`
	ScoreThreshold int                `json:"score_threshold"`
	Creator        string             `json:"creator"`
	CreatedAt      uint64             `json:"created_at"`
}

type questionResponse struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}
	quiz, ok := h.service.GetQuiz(r.Context(), id)
	if !ok {
		httputil.WriteError(w, models.ErrQuizNotFound)
		return
	}

	resp := quizResponse{
		ID:             uint64(quiz.ID),
		Title:          quiz.Title,
		Description:    quiz.Description,
		ScoreThreshold: quiz.ScoreThreshold,
		Creator:        quiz.Creator.String(),
		CreatedAt:      uint64(quiz.CreatedAt),
	}
	for _, q := range quiz.Questions {
		resp.Questions = append(resp.Questions, questionResponse{Text: q.Text, Options: q.Options[:]})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

type completionResponse struct {
	SubmittedAt uint64 `json:"submitted_at"`
	Score       int    `json:"score"`
	Passed      bool   `json:"passed"`
}

func (h *Handler) handleGetCompletion(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}
	user := domain.Principal(chi.URLParam(r, "principal"))

	c, ok := h.service.GetCompletion(r.Context(), id, user)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no completion recorded"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, completionResponse{
		SubmittedAt: uint64(c.SubmittedAt),
		Score:       c.Score,
		Passed:      c.Passed,
	})
}

func (h *Handler) handleHasPassed(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}
	user := domain.Principal(chi.URLParam(r, "principal"))
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"passed": h.service.HasPassed(r.Context(), id, user)})
}

func (h *Handler) handleAttempts(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}
	user := domain.Principal(chi.URLParam(r, "principal"))
	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"attempts": h.service.Attempts(r.Context(), id, user)})
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"count": h.service.Count(r.Context())})
}
