package handler

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"agora/internal/platform/chain"
	"agora/internal/rewards/models"
	"agora/internal/rewards/service"
	"agora/internal/rewards/store"
	"agora/pkg/domain"
	"agora/pkg/fingerprint"
	"agora/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	clock  *chain.ManualClock
	router chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.clock = chain.NewManualClock(models.DefaultCooldownBlocks)

	svc, err := service.New(store.NewInMemory(), s.clock,
		service.WithLogger(slog.New(slog.DiscardHandler)))
	s.Require().NoError(err)

	s.router = chi.NewRouter()
	New(svc, slog.New(slog.DiscardHandler)).Register(s.router)
}

func (s *HandlerSuite) do(method, path string, body any, principal domain.Principal) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if principal != "" {
		req = req.WithContext(requestcontext.WithPrincipal(req.Context(), principal))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) register(principal domain.Principal) {
	rec := s.do(http.MethodPost, "/rewards/participants", nil, principal)
	s.Require().Equal(http.StatusNoContent, rec.Code)
}

func (s *HandlerSuite) TestClaimEducation() {
	s.register("ST1ADA")

	s.Run("grants and reports the amount", func() {
		rec := s.do(http.MethodPost, "/rewards/claims/education",
			claimEducationRequest{SourceID: 1, Score: 85}, "ST1ADA")
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"amount":85}`, rec.Body.String())
	})

	s.Run("double claim is a conflict", func() {
		rec := s.do(http.MethodPost, "/rewards/claims/education",
			claimEducationRequest{SourceID: 1, Score: 85}, "ST1ADA")
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("cooldown maps to 429", func() {
		rec := s.do(http.MethodPost, "/rewards/claims/education",
			claimEducationRequest{SourceID: 2, Score: 85}, "ST1ADA")
		s.Equal(http.StatusTooManyRequests, rec.Code)
	})

	s.Run("unregistered caller is 404", func() {
		rec := s.do(http.MethodPost, "/rewards/claims/education",
			claimEducationRequest{SourceID: 1, Score: 85}, "ST1GHOST")
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("accrual record is readable", func() {
		rec := s.do(http.MethodGet, "/rewards/participants/ST1ADA", nil, "")
		s.Equal(http.StatusOK, rec.Code)

		var resp rewardsResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(uint64(85), resp.TokensEarned)
		s.Equal(uint64(85), resp.TotalClaimed)
		s.Equal(uint64(1), resp.EducationClaims)
		s.Equal(uint64(models.DefaultCooldownBlocks), resp.LastEducationClaim)
	})

	s.Run("minted total is readable", func() {
		rec := s.do(http.MethodGet, "/rewards/minted", nil, "")
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"minted":85}`, rec.Body.String())
	})
}

func (s *HandlerSuite) TestClaimVoting() {
	s.Require().Equal(http.StatusNoContent,
		s.do(http.MethodPost, "/rewards/authority", bindAuthorityRequest{Principal: "ST1GOV"}, "").Code)
	s.register("ST1ADA")

	ballot := fingerprint.Sum([]byte("ballot"))

	s.Run("attestation requires the authority", func() {
		rec := s.do(http.MethodPost, "/rewards/elections/7/attestation",
			attestElectionRequest{Digest: hex.EncodeToString(ballot[:])}, "ST1ADA")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("claim against the attested digest", func() {
		rec := s.do(http.MethodPost, "/rewards/elections/7/attestation",
			attestElectionRequest{Digest: hex.EncodeToString(ballot[:])}, "ST1GOV")
		s.Require().Equal(http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodPost, "/rewards/claims/voting",
			claimVotingRequest{ElectionID: 7, Proof: hex.EncodeToString(ballot[:])}, "ST1ADA")
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"amount":50}`, rec.Body.String())

		rec = s.do(http.MethodGet, "/rewards/participants/ST1ADA/votes/7", nil, "")
		s.JSONEq(`{"voted":true}`, rec.Body.String())
	})

	s.Run("malformed proof encoding is 400", func() {
		rec := s.do(http.MethodPost, "/rewards/claims/voting",
			claimVotingRequest{ElectionID: 7, Proof: "zz"}, "ST1ADA")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestParameters() {
	s.Require().Equal(http.StatusNoContent,
		s.do(http.MethodPost, "/rewards/authority", bindAuthorityRequest{Principal: "ST1GOV"}, "").Code)

	s.Run("defaults are readable", func() {
		rec := s.do(http.MethodGet, "/rewards/parameters", nil, "")
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"base_reward":100,"multiplier":50,"cooldown_blocks":100,"max_per_user":1000}`,
			rec.Body.String())
	})

	s.Run("authority updates the base reward", func() {
		rec := s.do(http.MethodPut, "/rewards/parameters/base-reward",
			setParameterRequest{Value: 200}, "ST1GOV")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("outsider cannot update", func() {
		rec := s.do(http.MethodPut, "/rewards/parameters/cooldown",
			setParameterRequest{Value: 10}, "ST1ADA")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *HandlerSuite) TestReset() {
	s.Require().Equal(http.StatusNoContent,
		s.do(http.MethodPost, "/rewards/authority", bindAuthorityRequest{Principal: "ST1GOV"}, "").Code)
	s.register("ST1ADA")

	rec := s.do(http.MethodDelete, "/rewards/participants/ST1ADA", nil, "ST1GOV")
	s.Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/rewards/participants/ST1ADA", nil, "")
	s.Equal(http.StatusNotFound, rec.Code)
}
