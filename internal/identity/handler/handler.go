// Package handler exposes the identity registry over HTTP. Handlers stay
// thin: decode, delegate, translate.
package handler

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"agora/internal/identity/models"
	"agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
	"agora/pkg/platform/httputil"
	"agora/pkg/requestcontext"
)

// Service is the registry surface the handler needs.
type Service interface {
	BindAuthority(ctx context.Context, p domain.Principal) error
	Register(ctx context.Context, caller domain.Principal, name string, age int, email string) (domain.UserID, error)
	Verify(ctx context.Context, user domain.Principal, proof []byte) error
	UpdateProfile(ctx context.Context, caller domain.Principal, name string, age int, email string) error
	IncrementContributions(ctx context.Context, user domain.Principal) (uint64, error)
	Get(ctx context.Context, user domain.Principal) (*models.User, bool)
	GetByID(ctx context.Context, id domain.UserID) (*models.User, bool)
	IsVerified(ctx context.Context, user domain.Principal) bool
	Count(ctx context.Context) uint64
	SetMaxUsers(ctx context.Context, caller domain.Principal, max int64) error
	ResetUser(ctx context.Context, caller, user domain.Principal) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the identity endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/identity/authority", h.handleBindAuthority)
	r.Post("/identity/register", h.handleRegister)
	r.Post("/identity/verify", h.handleVerify)
	r.Put("/identity/profile", h.handleUpdateProfile)
	r.Post("/identity/contributions", h.handleIncrementContributions)
	r.Get("/identity/count", h.handleCount)
	r.Get("/identity/users/by-id/{id}", h.handleGetByID)
	r.Get("/identity/users/{principal}", h.handleGet)
	r.Get("/identity/users/{principal}/verified", h.handleIsVerified)
	r.Delete("/identity/users/{principal}", h.handleReset)
	r.Put("/identity/max-users", h.handleSetMaxUsers)
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

type registerRequest struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Email string `json:"email"`
}

type registerResponse struct {
	ID uint64 `json:"id"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[registerRequest](w, r)
	if !ok {
		return
	}
	caller := requestcontext.Principal(r.Context())

	id, err := h.service.Register(r.Context(), caller, req.Name, req.Age, req.Email)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, registerResponse{ID: uint64(id)})
}

type verifyRequest struct {
	User string `json:"user"`
	// Proof is the hex-encoded digest of the registered email.
	Proof string `json:"proof"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[verifyRequest](w, r)
	if !ok {
		return
	}
	proof, err := hex.DecodeString(req.Proof)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "proof must be hex encoded"))
		return
	}
	if err := h.service.Verify(r.Context(), domain.Principal(req.User), proof); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[registerRequest](w, r)
	if !ok {
		return
	}
	caller := requestcontext.Principal(r.Context())

	if err := h.service.UpdateProfile(r.Context(), caller, req.Name, req.Age, req.Email); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type contributionsRequest struct {
	User string `json:"user"`
}

func (h *Handler) handleIncrementContributions(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[contributionsRequest](w, r)
	if !ok {
		return
	}
	count, err := h.service.IncrementContributions(r.Context(), domain.Principal(req.User))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"contributions": count})
}

// userResponse is the read model; the fingerprint stays internal.
type userResponse struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	Age           int    `json:"age"`
	Email         string `json:"email"`
	RegisteredAt  uint64 `json:"registered_at"`
	Verified      bool   `json:"verified"`
	LastUpdate    uint64 `json:"last_update"`
	Contributions uint64 `json:"contributions"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:            uint64(u.ID),
		Name:          u.Name,
		Age:           u.Age,
		Email:         u.Email,
		RegisteredAt:  uint64(u.RegisteredAt),
		Verified:      u.Verified,
		LastUpdate:    uint64(u.LastUpdate),
		Contributions: u.Contributions,
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	principal := domain.Principal(chi.URLParam(r, "principal"))
	u, ok := h.service.Get(r.Context(), principal)
	if !ok {
		httputil.WriteError(w, models.ErrNotFound)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "id must be an integer"))
		return
	}
	u, ok := h.service.GetByID(r.Context(), domain.UserID(id))
	if !ok {
		httputil.WriteError(w, models.ErrNotFound)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) handleIsVerified(w http.ResponseWriter, r *http.Request) {
	principal := domain.Principal(chi.URLParam(r, "principal"))
	verified := h.service.IsVerified(r.Context(), principal)
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"verified": verified})
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"count": h.service.Count(r.Context())})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	caller := requestcontext.Principal(r.Context())
	user := domain.Principal(chi.URLParam(r, "principal"))

	if err := h.service.ResetUser(r.Context(), caller, user); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setMaxUsersRequest struct {
	Max int64 `json:"max"`
}

func (h *Handler) handleSetMaxUsers(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[setMaxUsersRequest](w, r)
	if !ok {
		return
	}
	caller := requestcontext.Principal(r.Context())

	if err := h.service.SetMaxUsers(r.Context(), caller, req.Max); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
