// Package audit defines the engine's audit trail: every state transition a
// component performs is described as an Event and handed to a Publisher.
// Storage and brokering fan out behind the Store and Publisher interfaces so
// domain services stay transport-agnostic.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agora/pkg/domain"
)

// Action names the state transition an event records.
type Action string

const (
	// Identity events
	ActionAuthorityBound       Action = "authority_bound"
	ActionUserRegistered       Action = "user_registered"
	ActionUserVerified         Action = "user_verified"
	ActionUserUpdated          Action = "user_updated"
	ActionContributionRecorded Action = "contribution_recorded"
	ActionUserReset            Action = "user_reset"

	// Quiz events
	ActionQuizCreated      Action = "quiz_created"
	ActionQuizSubmitted    Action = "quiz_submitted"
	ActionThresholdUpdated Action = "threshold_updated"
	ActionQuizDeleted      Action = "quiz_deleted"

	// Reward events
	ActionParticipantRegistered  Action = "participant_registered"
	ActionElectionAttested       Action = "election_attested"
	ActionEducationRewardClaimed Action = "education_reward_claimed"
	ActionVotingBonusClaimed     Action = "voting_bonus_claimed"
	ActionRewardsReset           Action = "rewards_reset"
	ActionParameterUpdated       Action = "parameter_updated"
)

// Event captures a single state transition. Keep it transport-agnostic so
// stores and broker sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Action    Action
	Principal domain.Principal
	// Subject identifies the record acted upon when it differs from the
	// principal, e.g. "quiz/3" or "election/1".
	Subject string
	// Amount carries minted token amounts for reward events; zero otherwise.
	Amount uint64
	// Block is the chain height at which the transition happened.
	Block     domain.BlockHeight
	At        time.Time
	RequestID string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByPrincipal(ctx context.Context, p domain.Principal) ([]Event, error)
}

// Publisher delivers audit events to the trail. Implementations must be safe
// for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
