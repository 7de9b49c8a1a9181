// Package models holds the reward ledger domain types and tunables.
package models

import (
	"agora/pkg/domain"
)

const (
	// DefaultBaseReward is the full-score education payout.
	DefaultBaseReward = 100

	// DefaultMultiplier scales the voting bonus per verified vote.
	DefaultMultiplier = 50

	// DefaultCooldownBlocks must elapse between education claims. The
	// cooldown is measured from a zero last-claim mark, so a fresh
	// participant also waits for the first claim window.
	DefaultCooldownBlocks = 100

	// DefaultMaxRewardsPerUser caps lifetime accrual.
	DefaultMaxRewardsPerUser = 1000

	MinSourceID = 1
	MaxSourceID = 100

	// MinScore is the lowest quiz score that earns a payout.
	MinScore = 50
)

// Parameters are the ledger tunables. The authority can adjust them at
// runtime.
type Parameters struct {
	BaseReward     uint64
	Multiplier     uint64
	CooldownBlocks uint64
	MaxPerUser     uint64
}

func DefaultParameters() Parameters {
	return Parameters{
		BaseReward:     DefaultBaseReward,
		Multiplier:     DefaultMultiplier,
		CooldownBlocks: DefaultCooldownBlocks,
		MaxPerUser:     DefaultMaxRewardsPerUser,
	}
}

// UserRewards is a participant's accrual record. Education and voting
// claims run on separate cooldown tracks.
type UserRewards struct {
	User               domain.Principal
	RegisteredAt       domain.BlockHeight
	TokensEarned       uint64
	TotalClaimed       uint64
	LastEducationClaim domain.BlockHeight
	LastVotingClaim    domain.BlockHeight
	EducationClaims    uint64
	VotesVerified      uint64
}

// EducationReward computes the payout for a quiz score: the base reward
// scaled by the score percentage, truncated.
func EducationReward(base uint64, score int) uint64 {
	return base * uint64(score) / 100
}

// VotingBonus computes the payout for the n-th verified vote, where
// votesVerified counts the votes already banked.
func VotingBonus(multiplier, votesVerified uint64) uint64 {
	return (votesVerified + 1) * multiplier
}
