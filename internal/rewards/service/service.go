// Package service implements the reward ledger: participant accrual
// records, education claims, voting bonuses and settlement.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"agora/internal/authority"
	"agora/internal/platform/chain"
	"agora/internal/rewards/metrics"
	"agora/internal/rewards/models"
	"agora/internal/rewards/sink"
	"agora/pkg/domain"
	"agora/pkg/fingerprint"
	"agora/pkg/platform/audit"
	"agora/pkg/platform/sentinel"
)

// Store is the persistence surface the ledger needs.
type Store interface {
	Register(ctx context.Context, user domain.Principal, at domain.BlockHeight) bool
	Find(ctx context.Context, user domain.Principal) (models.UserRewards, bool)
	HasEducationClaim(ctx context.Context, user domain.Principal, source uint64) bool
	HasVoteClaim(ctx context.Context, user domain.Principal, election domain.ElectionID) bool
	ClaimEducation(ctx context.Context, user domain.Principal, source uint64, apply func(r *models.UserRewards) (uint64, error)) (uint64, error)
	ClaimVote(ctx context.Context, user domain.Principal, election domain.ElectionID, apply func(r *models.UserRewards) (uint64, error)) (uint64, error)
	Attest(ctx context.Context, election domain.ElectionID, digest fingerprint.Digest)
	Attestation(ctx context.Context, election domain.ElectionID) (fingerprint.Digest, bool)
	Reset(ctx context.Context, user domain.Principal)
	Count(ctx context.Context) uint64
	TotalMinted(ctx context.Context) uint64
}

type Service struct {
	store    Store
	clock    chain.Clock
	gate     *authority.Gate
	sink     sink.Sink
	logger   *slog.Logger
	recorder *audit.Recorder
	metrics  *metrics.Metrics

	paramMu sync.RWMutex
	params  models.Parameters
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditRecorder(recorder *audit.Recorder) Option {
	return func(s *Service) { s.recorder = recorder }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithSink routes settled payouts to an external system. Without it the
// ledger still tracks accrual but nothing leaves the process.
func WithSink(k sink.Sink) Option {
	return func(s *Service) { s.sink = k }
}

// WithParameters overrides the default tunables at construction.
func WithParameters(p models.Parameters) Option {
	return func(s *Service) { s.params = p }
}

func New(store Store, clock chain.Clock, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("rewards service: store is required")
	}
	if clock == nil {
		return nil, errors.New("rewards service: clock is required")
	}
	s := &Service{
		store:  store,
		clock:  clock,
		gate:   authority.NewGate(),
		sink:   sink.NewMemory(),
		logger: slog.Default(),
		params: models.DefaultParameters(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BindAuthority fixes the administrative principal. It can be done once.
func (s *Service) BindAuthority(ctx context.Context, p domain.Principal) error {
	if err := s.gate.Bind(p); err != nil {
		return err
	}
	s.record(ctx, audit.Event{Action: audit.ActionAuthorityBound, Principal: p})
	return nil
}

// RegisterParticipant opens an accrual record. Registering an existing
// participant is a no-op, not an error.
func (s *Service) RegisterParticipant(ctx context.Context, user domain.Principal) error {
	if user.IsNil() {
		return models.ErrNotRegistered
	}
	if !s.store.Register(ctx, user, s.clock.Height()) {
		return nil
	}
	if s.metrics != nil {
		s.metrics.Registrations.Inc()
	}
	s.record(ctx, audit.Event{Action: audit.ActionParticipantRegistered, Principal: user})
	return nil
}

// ClaimEducationReward pays out for a passed quiz. The caller supplies
// the score; the ledger does not reach into the quiz engine. Checks run
// in a fixed order: registration, double claim, score, source id,
// cooldown, lifetime cap.
func (s *Service) ClaimEducationReward(ctx context.Context, user domain.Principal, source uint64, score int) (uint64, error) {
	p := s.parameters()
	height := s.clock.Height()

	amount, err := s.store.ClaimEducation(ctx, user, source, func(r *models.UserRewards) (uint64, error) {
		if score < models.MinScore {
			return 0, models.ErrScoreTooLow
		}
		if source < models.MinSourceID || source > models.MaxSourceID {
			return 0, models.ErrInvalidSourceID
		}
		if uint64(height-r.LastEducationClaim) < p.CooldownBlocks {
			return 0, models.ErrCooldownActive
		}
		// The cap gates on the total already claimed, not the prospective
		// one. A participant below the cap always gets one more claim
		// through; only a total already past the cap blocks.
		if r.TotalClaimed > p.MaxPerUser {
			return 0, models.ErrCapExceeded
		}
		reward := models.EducationReward(p.BaseReward, score)
		r.TokensEarned += reward
		r.TotalClaimed += reward
		r.LastEducationClaim = height
		r.EducationClaims++
		return reward, nil
	})
	if err != nil {
		return 0, s.rejectClaim(translateClaim(err))
	}

	s.settle(ctx, user, amount)
	if s.metrics != nil {
		s.metrics.ClaimsGranted.WithLabelValues("education").Inc()
	}
	s.logger.InfoContext(ctx, "education reward claimed",
		slog.String("user", user.String()),
		slog.Uint64("source", source),
		slog.Int("score", score),
		slog.Uint64("amount", amount))
	s.record(ctx, audit.Event{
		Action:    audit.ActionEducationRewardClaimed,
		Principal: user,
		Amount:    amount,
		Block:     height,
	})
	return amount, nil
}

// ClaimVotingBonus pays out for verified election participation. The
// proof must match the digest attested for the election; each verified
// vote raises the next bonus.
func (s *Service) ClaimVotingBonus(ctx context.Context, user domain.Principal, election domain.ElectionID, proof []byte) (uint64, error) {
	p := s.parameters()
	height := s.clock.Height()

	expected, attested := s.store.Attestation(ctx, election)

	amount, err := s.store.ClaimVote(ctx, user, election, func(r *models.UserRewards) (uint64, error) {
		if !attested || !fingerprint.Equal(expected, proof) {
			return 0, models.ErrInvalidProof
		}
		if uint64(height-r.LastVotingClaim) < p.CooldownBlocks {
			return 0, models.ErrCooldownActive
		}
		if r.TotalClaimed > p.MaxPerUser {
			return 0, models.ErrCapExceeded
		}
		bonus := models.VotingBonus(p.Multiplier, r.VotesVerified)
		r.TokensEarned += bonus
		r.TotalClaimed += bonus
		r.LastVotingClaim = height
		r.VotesVerified++
		return bonus, nil
	})
	if err != nil {
		return 0, s.rejectClaim(translateClaim(err))
	}

	s.settle(ctx, user, amount)
	if s.metrics != nil {
		s.metrics.ClaimsGranted.WithLabelValues("voting").Inc()
	}
	s.logger.InfoContext(ctx, "voting bonus claimed",
		slog.String("user", user.String()),
		slog.Uint64("election", uint64(election)),
		slog.Uint64("amount", amount))
	s.record(ctx, audit.Event{
		Action:    audit.ActionVotingBonusClaimed,
		Principal: user,
		Subject:   election.String(),
		Amount:    amount,
		Block:     height,
	})
	return amount, nil
}

// AttestElection records the expected voting-proof digest. Authority
// only; re-attesting an election replaces the digest.
func (s *Service) AttestElection(ctx context.Context, caller domain.Principal, election domain.ElectionID, digest []byte) error {
	if err := s.gate.Require(caller); err != nil {
		return err
	}
	if len(digest) != len(fingerprint.Digest{}) {
		return models.ErrInvalidProof
	}
	s.store.Attest(ctx, election, fingerprint.Digest(digest))
	s.record(ctx, audit.Event{Action: audit.ActionElectionAttested, Principal: caller, Subject: election.String()})
	return nil
}

// SetBaseReward adjusts the full-score payout. Authority only.
func (s *Service) SetBaseReward(ctx context.Context, caller domain.Principal, amount int64) error {
	if err := s.gate.Require(caller); err != nil {
		return err
	}
	if amount < 0 {
		return models.ErrInvalidUpdate
	}
	s.paramMu.Lock()
	s.params.BaseReward = uint64(amount)
	s.paramMu.Unlock()

	s.record(ctx, audit.Event{Action: audit.ActionParameterUpdated, Principal: caller, Subject: "base_reward", Amount: uint64(amount)})
	return nil
}

// SetCooldown adjusts the inter-claim window. Authority only.
func (s *Service) SetCooldown(ctx context.Context, caller domain.Principal, blocks int64) error {
	if err := s.gate.Require(caller); err != nil {
		return err
	}
	if blocks <= 0 {
		return models.ErrInvalidUpdate
	}
	s.paramMu.Lock()
	s.params.CooldownBlocks = uint64(blocks)
	s.paramMu.Unlock()

	s.record(ctx, audit.Event{Action: audit.ActionParameterUpdated, Principal: caller, Subject: "cooldown_blocks", Amount: uint64(blocks)})
	return nil
}

// ResetUser wipes a participant's accrual record. Authority only,
// idempotent.
func (s *Service) ResetUser(ctx context.Context, caller, user domain.Principal) error {
	if err := s.gate.Require(caller); err != nil {
		return err
	}
	s.store.Reset(ctx, user)
	s.record(ctx, audit.Event{Action: audit.ActionRewardsReset, Principal: caller, Subject: user.String()})
	return nil
}

func (s *Service) GetRewards(ctx context.Context, user domain.Principal) (models.UserRewards, bool) {
	return s.store.Find(ctx, user)
}

func (s *Service) IsRegistered(ctx context.Context, user domain.Principal) bool {
	_, ok := s.store.Find(ctx, user)
	return ok
}

func (s *Service) HasClaimed(ctx context.Context, user domain.Principal, source uint64) bool {
	return s.store.HasEducationClaim(ctx, user, source)
}

func (s *Service) HasVoted(ctx context.Context, user domain.Principal, election domain.ElectionID) bool {
	return s.store.HasVoteClaim(ctx, user, election)
}

func (s *Service) Count(ctx context.Context) uint64 {
	return s.store.Count(ctx)
}

// TotalMinted reports the sum of every payout ever granted.
func (s *Service) TotalMinted(ctx context.Context) uint64 {
	return s.store.TotalMinted(ctx)
}

// Parameters returns a snapshot of the current tunables.
func (s *Service) Parameters() models.Parameters {
	return s.parameters()
}

func (s *Service) parameters() models.Parameters {
	s.paramMu.RLock()
	defer s.paramMu.RUnlock()
	return s.params
}

// settle delivers the payout. Settlement is best effort; the accrual
// record is the source of truth and a failed delivery is retried by the
// downstream settler, not by rolling the claim back.
func (s *Service) settle(ctx context.Context, user domain.Principal, amount uint64) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Mint(ctx, user, amount); err != nil {
		if s.metrics != nil {
			s.metrics.SettlementFails.Inc()
		}
		s.logger.WarnContext(ctx, "settlement delivery failed",
			slog.String("user", user.String()),
			slog.Uint64("amount", amount),
			slog.String("error", err.Error()))
		return
	}
	if s.metrics != nil {
		s.metrics.TokensMinted.Add(float64(amount))
	}
}

func (s *Service) rejectClaim(err error) error {
	if s.metrics != nil {
		s.metrics.ClaimsRejected.WithLabelValues(rejectReason(err)).Inc()
	}
	return err
}

func translateClaim(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return models.ErrNotRegistered
	case errors.Is(err, sentinel.ErrAlreadyExists):
		return models.ErrAlreadyClaimed
	default:
		return err
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, models.ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, models.ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, models.ErrScoreTooLow):
		return "score_too_low"
	case errors.Is(err, models.ErrInvalidSourceID):
		return "invalid_source"
	case errors.Is(err, models.ErrCooldownActive):
		return "cooldown"
	case errors.Is(err, models.ErrCapExceeded):
		return "cap_exceeded"
	case errors.Is(err, models.ErrInvalidProof):
		return "invalid_proof"
	default:
		return "other"
	}
}

func (s *Service) record(ctx context.Context, event audit.Event) {
	if s.recorder == nil {
		return
	}
	if event.Block == 0 {
		event.Block = s.clock.Height()
	}
	s.recorder.Record(ctx, event)
}
