// Package handler exposes the reward ledger over HTTP.
package handler

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"agora/internal/rewards/models"
	"agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
	"agora/pkg/platform/httputil"
	"agora/pkg/requestcontext"
)

type Service interface {
	BindAuthority(ctx context.Context, p domain.Principal) error
	RegisterParticipant(ctx context.Context, user domain.Principal) error
	ClaimEducationReward(ctx context.Context, user domain.Principal, source uint64, score int) (uint64, error)
	ClaimVotingBonus(ctx context.Context, user domain.Principal, election domain.ElectionID, proof []byte) (uint64, error)
	AttestElection(ctx context.Context, caller domain.Principal, election domain.ElectionID, digest []byte) error
	SetBaseReward(ctx context.Context, caller domain.Principal, amount int64) error
	SetCooldown(ctx context.Context, caller domain.Principal, blocks int64) error
	ResetUser(ctx context.Context, caller, user domain.Principal) error
	GetRewards(ctx context.Context, user domain.Principal) (models.UserRewards, bool)
	IsRegistered(ctx context.Context, user domain.Principal) bool
	HasClaimed(ctx context.Context, user domain.Principal, source uint64) bool
	HasVoted(ctx context.Context, user domain.Principal, election domain.ElectionID) bool
	Count(ctx context.Context) uint64
	TotalMinted(ctx context.Context) uint64
	Parameters() models.Parameters
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/rewards/authority", h.handleBindAuthority)
	r.Post("/rewards/participants", h.handleRegisterParticipant)
	r.Post("/rewards/claims/education", h.handleClaimEducation)
	r.Post("/rewards/claims/voting", h.handleClaimVoting)
	r.Post("/rewards/elections/{id}/attestation", h.handleAttestElection)
	r.Put("/rewards/parameters/base-reward", h.handleSetBaseReward)
	r.Put("/rewards/parameters/cooldown", h.handleSetCooldown)
	r.Get("/rewards/parameters", h.handleParameters)
	r.Get("/rewards/count", h.handleCount)
	r.Get("/rewards/minted", h.handleTotalMinted)
	r.Get("/rewards/participants/{principal}", h.handleGetRewards)
	r.Delete("/rewards/participants/{principal}", h.handleReset)
	r.Get("/rewards/participants/{principal}/claims/{source}", h.handleHasClaimed)
	r.Get("/rewards/participants/{principal}/votes/{election}", h.handleHasVoted)
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

func (h *Handler) handleRegisterParticipant(w http.ResponseWriter, r *http.Request) {
	user := requestcontext.Principal(r.Context())
	if err := h.service.RegisterParticipant(r.Context(), user); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type claimEducationRequest struct {
	SourceID uint64 `json:"source_id"`
	Score    int    `json:"score"`
}

type claimResponse struct {
	Amount uint64 `json:"amount"`
}

func (h *Handler) handleClaimEducation(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[claimEducationRequest](w, r)
	if !ok {
		return
	}
	user := requestcontext.Principal(r.Context())

	amount, err := h.service.ClaimEducationReward(r.Context(), user, req.SourceID, req.Score)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claimResponse{Amount: amount})
}

type claimVotingRequest struct {
	ElectionID uint64 `json:"election_id"`
	// Proof is the hex-encoded participation digest.
	Proof string `json:"proof"`
}

func (h *Handler) handleClaimVoting(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[claimVotingRequest](w, r)
	if !ok {
		return
	}
	proof, err := hex.DecodeString(req.Proof)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "proof must be hex encoded"))
		return
	}
	user := requestcontext.Principal(r.Context())

	amount, err := h.service.ClaimVotingBonus(r.Context(), user, domain.ElectionID(req.ElectionID), proof)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claimResponse{Amount: amount})
}

type attestElectionRequest struct {
	Digest string `json:"digest"`
}

func (h *Handler) handleAttestElection(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "election id must be an integer"))
		return
	}
	req, ok := httputil.Decode[attestElectionRequest](w, r)
	if !ok {
		return
	}
	digest, err := hex.DecodeString(req.Digest)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "digest must be hex encoded"))
		return
	}
	caller := requestcontext.Principal(r.Context())

	if err := h.service.AttestElection(r.Context(), caller, domain.ElectionID(id), digest); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setParameterRequest struct {
	Value int64 `json:"value"`
}

func (h *Handler) handleSetBaseReward(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[setParameterRequest](w, r)
	if !ok {
		return
	}
	caller := requestcontext.Principal(r.Context())

	if err := h.service.SetBaseReward(r.Context(), caller, req.Value); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetCooldown(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[setParameterRequest](w, r)
	if !ok {
		return
	}
	caller := requestcontext.Principal(r.Context())

	if err := h.service.SetCooldown(r.Context(), caller, req.Value); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type parametersResponse struct {
	BaseReward     uint64 `json:"base_reward"`
	Multiplier     uint64 `json:"multiplier"`
	CooldownBlocks uint64 `json:"cooldown_blocks"`
	MaxPerUser     uint64 `json:"max_per_user"`
}

func (h *Handler) handleParameters(w http.ResponseWriter, r *http.Request) {
	p := h.service.Parameters()
	httputil.WriteJSON(w, http.StatusOK, parametersResponse{
		BaseReward:     p.BaseReward,
		Multiplier:     p.Multiplier,
		CooldownBlocks: p.CooldownBlocks,
		MaxPerUser:     p.MaxPerUser,
	})
}

type rewardsResponse struct {
	User               string `json:"user"`
	RegisteredAt       uint64 `json:"registered_at"`
	TokensEarned       uint64 `json:"tokens_earned"`
	TotalClaimed       uint64 `json:"total_claimed"`
	LastEducationClaim uint64 `json:"last_education_claim"`
	LastVotingClaim    uint64 `json:"last_voting_claim"`
	EducationClaims    uint64 `json:"education_claims"`
	VotesVerified      uint64 `json:"votes_verified"`
}

func (h *Handler) handleGetRewards(w http.ResponseWriter, r *http.Request) {
	user := domain.Principal(chi.URLParam(r, "principal"))
	rec, ok := h.service.GetRewards(r.Context(), user)
	if !ok {
		httputil.WriteError(w, models.ErrNotRegistered)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rewardsResponse{
		User:               rec.User.String(),
		RegisteredAt:       uint64(rec.RegisteredAt),
		TokensEarned:       rec.TokensEarned,
		TotalClaimed:       rec.TotalClaimed,
		LastEducationClaim: uint64(rec.LastEducationClaim),
		LastVotingClaim:    uint64(rec.LastVotingClaim),
		EducationClaims:    rec.EducationClaims,
		VotesVerified:      rec.VotesVerified,
	})
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

func (h *Handler) handleHasClaimed(w http.ResponseWriter, r *http.Request) {
	user := domain.Principal(chi.URLParam(r, "principal"))
	source, err := strconv.ParseUint(chi.URLParam(r, "source"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "source id must be an integer"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"claimed": h.service.HasClaimed(r.Context(), user, source)})
}

func (h *Handler) handleHasVoted(w http.ResponseWriter, r *http.Request) {
	user := domain.Principal(chi.URLParam(r, "principal"))
	election, err := strconv.ParseUint(chi.URLParam(r, "election"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "election id must be an integer"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"voted": h.service.HasVoted(r.Context(), user, domain.ElectionID(election))})
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"count": h.service.Count(r.Context())})
}

func (h *Handler) handleTotalMinted(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"minted": h.service.TotalMinted(r.Context())})
}
