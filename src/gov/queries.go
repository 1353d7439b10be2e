package gov

import (
	"github.com/web3voice/voice-dao/src/types"
	"gorm.io/gorm"
)

// ProposalView is a proposal row with its JSON columns decoded.
type ProposalView struct {
	types.Proposal
	DecodedPayload Payload  `json:"payload"`
	TagList        []string `json:"tags"`
	AttachmentList []string `json:"attachments"`
}

func newProposalView(p types.Proposal) ProposalView {
	payload, _ := DecodePayload(p.Payload)
	return ProposalView{
		Proposal:       p,
		DecodedPayload: payload,
		TagList:        decodeStrings(p.Tags),
		AttachmentList: decodeStrings(p.Attachments),
	}
}

// MemberView is a member row with its role set decoded.
type MemberView struct {
	types.Member
	RoleList []string `json:"roles"`
}

func newMemberView(m types.Member) MemberView {
	return MemberView{Member: m, RoleList: decodeRoles(m.Roles)}
}

// GetProposal fetches one proposal.
func (e *Engine) GetProposal(id uint64) (ProposalView, error) {
	var p types.Proposal
	if err := e.db.First(&p, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ProposalView{}, ErrProposalNotFound
		}
		return ProposalView{}, err
	}
	return newProposalView(p), nil
}

// ListProposals pages through proposals by id.
func (e *Engine) ListProposals(offset, limit int) ([]ProposalView, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	var rows []types.Proposal
	if err := e.db.Order("id").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ProposalView, 0, len(rows))
	for _, p := range rows {
		out = append(out, newProposalView(p))
	}
	return out, nil
}

// ActiveProposals returns every proposal currently open for voting.
func (e *Engine) ActiveProposals() ([]ProposalView, error) {
	var rows []types.Proposal
	if err := e.db.Where("status = ?", types.ProposalStatusActive).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ProposalView, 0, len(rows))
	for _, p := range rows {
		out = append(out, newProposalView(p))
	}
	return out, nil
}

// GetVote returns one member's live vote on a proposal.
func (e *Engine) GetVote(proposalID uint64, voter string) (types.Vote, error) {
	var v types.Vote
	err := e.db.First(&v, "proposal_id = ? AND voter = ?", proposalID, voter).Error
	if err == gorm.ErrRecordNotFound {
		return v, ErrVoteNotFound
	}
	return v, err
}

// GetMember fetches one member.
func (e *Engine) GetMember(addr string) (MemberView, error) {
	var m types.Member
	if err := e.db.First(&m, "address = ?", addr).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return MemberView{}, ErrMemberNotFound
		}
		return MemberView{}, err
	}
	return newMemberView(m), nil
}

// ListMembers pages through members by address.
func (e *Engine) ListMembers(offset, limit int) ([]MemberView, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	var rows []types.Member
	if err := e.db.Order("address").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]MemberView, 0, len(rows))
	for _, m := range rows {
		out = append(out, newMemberView(m))
	}
	return out, nil
}

// GetContribution fetches one contribution.
func (e *Engine) GetContribution(id uint64) (types.Contribution, error) {
	var c types.Contribution
	if err := e.db.First(&c, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c, ErrContributionNotFound
		}
		return c, err
	}
	return c, nil
}

// ContributionsByMember lists a contributor's submissions.
func (e *Engine) ContributionsByMember(addr string) ([]types.Contribution, error) {
	var rows []types.Contribution
	err := e.db.Where("contributor = ?", addr).Order("id").Find(&rows).Error
	return rows, err
}

// GetConfig returns the governance parameters.
func (e *Engine) GetConfig() (types.GovernanceConfig, error) {
	return e.config(e.db)
}

// CouncilMembers lists council addresses.
func (e *Engine) CouncilMembers() ([]string, error) {
	var rows []types.CouncilMember
	if err := e.db.Order("address").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Address)
	}
	return out, nil
}

// IsMember reports membership.
func (e *Engine) IsMember(addr string) (bool, error) {
	var m types.Member
	err := e.db.First(&m, "address = ?", addr).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsCouncilMember reports council membership.
func (e *Engine) IsCouncilMember(addr string) (bool, error) {
	return e.isCouncil(e.db, addr)
}

// IsPaused reports the pause flag.
func (e *Engine) IsPaused() (bool, error) {
	return e.paused(e.db)
}

// Stats builds the aggregate snapshot. Participation is the share of total
// voting power cast on proposals finalized so far.
func (e *Engine) Stats() (types.DAOStats, error) {
	var stats types.DAOStats

	var totalProposals int64
	if err := e.db.Model(&types.Proposal{}).Count(&totalProposals).Error; err != nil {
		return stats, err
	}
	var activeProposals int64
	if err := e.db.Model(&types.Proposal{}).
		Where("status = ?", types.ProposalStatusActive).Count(&activeProposals).Error; err != nil {
		return stats, err
	}
	var totalMembers int64
	if err := e.db.Model(&types.Member{}).Count(&totalMembers).Error; err != nil {
		return stats, err
	}
	var totalContributions int64
	if err := e.db.Model(&types.Contribution{}).Count(&totalContributions).Error; err != nil {
		return stats, err
	}
	totalPower, err := e.power.TotalPower(e.db)
	if err != nil {
		return stats, err
	}
	treasury, err := e.treasuryRow(e.db)
	if err != nil {
		return stats, err
	}

	var votesCast *uint64
	finalized := []string{
		types.ProposalStatusSucceeded, types.ProposalStatusDefeated,
		types.ProposalStatusQueued, types.ProposalStatusExecuted,
	}
	var finalizedCount int64
	if err := e.db.Model(&types.Proposal{}).
		Where("status IN ?", finalized).Count(&finalizedCount).Error; err != nil {
		return stats, err
	}
	if err := e.db.Model(&types.Proposal{}).
		Select("SUM(total_votes)").Where("status IN ?", finalized).Scan(&votesCast).Error; err != nil {
		return stats, err
	}
	participation := 0.0
	if finalizedCount > 0 && totalPower > 0 && votesCast != nil {
		participation = float64(*votesCast) / float64(totalPower*uint64(finalizedCount))
	}

	stats = types.DAOStats{
		TotalProposals:     uint64(totalProposals),
		ActiveProposals:    uint64(activeProposals),
		TotalMembers:       uint64(totalMembers),
		TotalVotingPower:   totalPower,
		TreasuryValue:      treasury.VoiceBalance + treasury.NativeBalance,
		TotalContributions: uint64(totalContributions),
		Participation:      participation,
		LastUpdated:        e.nowSec(),
	}
	return stats, nil
}
