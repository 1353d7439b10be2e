package gov

import "errors"

// Engine error taxonomy. Handlers map these onto HTTP statuses; every
// precondition failure aborts the call before any state is written.
var (
	// Authorization
	ErrUnauthorized = errors.New("not authorized")
	ErrNotAMember   = errors.New("not a DAO member")
	ErrEnginePaused = errors.New("DAO is paused")

	// Lookups
	ErrProposalNotFound     = errors.New("proposal not found")
	ErrMemberNotFound       = errors.New("member not found")
	ErrContributionNotFound = errors.New("contribution not found")
	ErrVoteNotFound         = errors.New("vote not found")

	// Proposal state machine
	ErrProposalNotActive    = errors.New("proposal not active")
	ErrAlreadyReviewed      = errors.New("contribution already reviewed")
	ErrProposalNotSucceeded = errors.New("proposal not succeeded")
	ErrProposalNotQueued    = errors.New("proposal not queued")

	// Timing windows
	ErrVotingClosed         = errors.New("not in voting period")
	ErrVotingPeriodNotEnded = errors.New("voting period not ended")
	ErrExecutionDelayNotMet = errors.New("execution delay not met")

	// Funds
	ErrInsufficientDeposit = errors.New("insufficient deposit")
	ErrInsufficientFunds   = errors.New("insufficient treasury funds")

	// Validation
	ErrTooManyActiveProposals = errors.New("too many active proposals")
	ErrNoVotingPower          = errors.New("no voting power")
	ErrAlreadyMember          = errors.New("already a member")
	ErrSelfDelegation         = errors.New("cannot delegate to self")
	ErrInvalidPayload         = errors.New("invalid proposal payload")
	ErrUnsupportedPayload     = errors.New("proposal type not supported for execution")
	ErrInvalidVote            = errors.New("invalid vote choice")
)
