package types

import "time"

// Proposal lifecycle statuses. Draft, Cancelled and Expired are declared for
// the indexer-facing enum surface but no transition currently produces them.
const (
	ProposalStatusDraft     = "draft"
	ProposalStatusActive    = "active"
	ProposalStatusSucceeded = "succeeded"
	ProposalStatusDefeated  = "defeated"
	ProposalStatusQueued    = "queued"
	ProposalStatusExecuted  = "executed"
	ProposalStatusCancelled = "cancelled"
	ProposalStatusExpired   = "expired"
)

// Vote choices.
const (
	VoteFor     = "for"
	VoteAgainst = "against"
	VoteAbstain = "abstain"
)

// Contribution review statuses.
const (
	ContributionSubmitted   = "submitted"
	ContributionUnderReview = "under_review"
	ContributionApproved    = "approved"
	ContributionRejected    = "rejected"
	ContributionRewarded    = "rewarded"
)

// Settings
type Setting struct {
	ID    uint8  `gorm:"primaryKey"`
	Name  string `gorm:"size:32;not null"`
	Value string `gorm:"size:256;not null"`
}

// Governance proposals. PayloadKind/Payload hold the typed action as a tagged
// JSON union; timestamps are unix seconds from the engine clock.
type Proposal struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Title        string `gorm:"size:255;not null"`
	Description  string `gorm:"type:text"`
	Proposer     string `gorm:"size:128;index;not null"`
	PayloadKind  string `gorm:"size:32;not null"`
	Payload      string `gorm:"type:text;not null"`
	Status       string `gorm:"size:16;index;not null"`
	VotesFor     uint64 `gorm:"default:0"`
	VotesAgainst uint64 `gorm:"default:0"`
	VotesAbstain uint64 `gorm:"default:0"`
	TotalVotes   uint64 `gorm:"default:0"`
	CreatedAtSec uint64 `gorm:"default:0"`
	VotingStarts uint64 `gorm:"default:0"`
	VotingEnds   uint64 `gorm:"default:0"`
	ExecutionETA uint64 `gorm:"default:0"`
	Deposit      uint64 `gorm:"default:0"`
	Tags         string `gorm:"size:512"`  // JSON array
	Attachments  string `gorm:"size:2048"` // JSON array of content references
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// One live vote per (proposal, voter); re-votes overwrite in place.
type Vote struct {
	ProposalID uint64 `gorm:"primaryKey"`
	Voter      string `gorm:"primaryKey;size:128"`
	Support    string `gorm:"size:8;not null"`
	Power      uint64 `gorm:"not null"`
	Reason     string `gorm:"size:1024"`
	CastAt     uint64 `gorm:"default:0"`
}

// DAO members
type Member struct {
	Address        string `gorm:"primaryKey;size:128"`
	Roles          string `gorm:"size:256"` // JSON array of role names
	VotingPower    uint64 `gorm:"default:0"`
	Contributions  uint64 `gorm:"default:0"`
	Reputation     uint32 `gorm:"default:0"`
	JoinedAt       uint64 `gorm:"default:0"`
	LastActive     uint64 `gorm:"default:0"`
	DelegatedTo    string `gorm:"size:128"`
	DelegatedPower uint64 `gorm:"default:0"`
}

// Council membership (executors and reviewers)
type CouncilMember struct {
	Address string `gorm:"primaryKey;size:128"`
}

// Work submitted for review and reward
type Contribution struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Contributor  string `gorm:"size:128;index;not null"`
	Kind         string `gorm:"size:32;not null"`
	Title        string `gorm:"size:255;not null"`
	Description  string `gorm:"type:text"`
	ContentRef   string `gorm:"size:256"`
	RewardAmount uint64 `gorm:"default:0"`
	Status       string `gorm:"size:16;index;not null"`
	SubmittedAt  uint64 `gorm:"default:0"`
	ReviewedAt   *uint64
	Reviewer     string `gorm:"size:128"`
}

// Treasury is a single-row ledger (ID always 1).
type Treasury struct {
	ID             uint8  `gorm:"primaryKey"`
	VoiceBalance   uint64 `gorm:"default:0"`
	NativeBalance  uint64 `gorm:"default:0"`
	AllocatedFunds uint64 `gorm:"default:0"`
	AvailableFunds uint64 `gorm:"default:0"`
	TotalSpent     uint64 `gorm:"default:0"`
}

// Cumulative treasury spend per category
type SpendCategory struct {
	Name  string `gorm:"primaryKey;size:64"`
	Total uint64 `gorm:"default:0"`
}

// Governance process parameters, one row (ID always 1). Thresholds are in
// basis points.
type GovernanceConfig struct {
	ID                 uint8  `gorm:"primaryKey"`
	MinProposalDeposit uint64 `gorm:"default:0"`
	VotingPeriod       uint64 `gorm:"default:0"` // seconds
	ExecutionDelay     uint64 `gorm:"default:0"` // seconds
	QuorumThreshold    uint32 `gorm:"default:0"`
	ApprovalThreshold  uint32 `gorm:"default:0"`
	MaxActiveProposals uint32 `gorm:"default:5"`
	ProposalFee        uint64 `gorm:"default:0"`
}

// Aggregate snapshot served by the stats endpoint
type DAOStats struct {
	TotalProposals     uint64  `json:"totalProposals"`
	ActiveProposals    uint64  `json:"activeProposals"`
	TotalMembers       uint64  `json:"totalMembers"`
	TotalVotingPower   uint64  `json:"totalVotingPower"`
	TreasuryValue      uint64  `json:"treasuryValue"`
	TotalContributions uint64  `json:"totalContributions"`
	Participation      float64 `json:"participation"`
	LastUpdated        uint64  `json:"lastUpdated"`
}
