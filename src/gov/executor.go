package gov

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/web3voice/voice-dao/src/types"
	"gorm.io/gorm"
)

// ExecResult reports the outcome of a proposal execution. A failed execution
// leaves the proposal Queued; only success reaches the Executed state.
type ExecResult struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
}

// ExecuteProposal dispatches a queued proposal's payload. Callable by council
// members and the owner only.
func (e *Engine) ExecuteProposal(ctx context.Context, caller string, proposalID uint64) (ExecResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var res ExecResult
	var outbox []transferReq
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var proposal types.Proposal
		if err := tx.First(&proposal, proposalID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrProposalNotFound
			}
			return err
		}
		if proposal.Status != types.ProposalStatusQueued {
			return ErrProposalNotQueued
		}
		council, err := e.isCouncil(tx, caller)
		if err != nil {
			return err
		}
		if !council && caller != e.owner {
			return ErrUnauthorized
		}

		payload, err := DecodePayload(proposal.Payload)
		if err != nil {
			return err
		}

		var execErr error
		outbox, execErr = e.dispatch(tx, payload, proposal.ID)
		if execErr != nil {
			if !isExecutionFailure(execErr) {
				return execErr
			}
			res = ExecResult{Success: false, Result: execErr.Error()}
			outbox = nil
			// The failure is part of the call's result, not a revert: the
			// proposal stays Queued and the execution event still fires.
			return nil
		}

		proposal.Status = types.ProposalStatusExecuted
		if err := tx.Save(&proposal).Error; err != nil {
			return err
		}
		res = ExecResult{Success: true, Result: "executed"}
		return nil
	})
	if err != nil {
		return ExecResult{}, err
	}

	if res.Success {
		log.Printf("Proposal %d executed successfully", proposalID)
	} else {
		log.Printf("Proposal %d execution failed: %s", proposalID, res.Result)
	}
	e.flushTransfers(ctx, outbox)
	e.events.ProposalExecuted(ctx, ProposalExecutedEvent{
		ProposalID: proposalID,
		Executor:   caller,
		Success:    res.Success,
		Result:     res.Result,
	})
	return res, nil
}

// dispatch applies a payload inside the execution transaction and returns the
// transfers to enqueue after commit.
func (e *Engine) dispatch(tx *gorm.DB, p Payload, proposalID uint64) ([]transferReq, error) {
	switch p.Kind {
	case PayloadTreasury:
		return e.execTreasury(tx, *p.Treasury, proposalID)
	case PayloadGovernance:
		return nil, e.execGovernance(tx, *p.Governance)
	case PayloadMembership:
		return nil, e.execMembership(tx, *p.Membership)
	case PayloadContent:
		// Content actions only notify off-engine moderation tooling.
		log.Printf("Content proposal executed: %s for content %s", p.Content.Action, p.Content.ContentID)
		return nil, nil
	case PayloadGrant:
		return e.execGrant(tx, *p.Grant, proposalID)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPayload, p.Kind)
	}
}

func (e *Engine) execTreasury(tx *gorm.DB, spend TreasurySpend, proposalID uint64) ([]transferReq, error) {
	treasury, err := e.treasuryRow(tx)
	if err != nil {
		return nil, err
	}
	switch spend.Token {
	case FundVoice:
		if treasury.VoiceBalance < spend.Amount {
			return nil, ErrInsufficientFunds
		}
		treasury.VoiceBalance -= spend.Amount
	case FundNative:
		if treasury.NativeBalance < spend.Amount {
			return nil, ErrInsufficientFunds
		}
		treasury.NativeBalance -= spend.Amount
	default:
		return nil, fmt.Errorf("%w: unknown fund kind %q", ErrInvalidPayload, spend.Token)
	}
	treasury.TotalSpent += spend.Amount
	if err := tx.Save(&treasury).Error; err != nil {
		return nil, err
	}
	if err := e.recordSpend(tx, spend.Purpose, spend.Amount); err != nil {
		return nil, err
	}
	log.Printf("Treasury proposal executed: %d %s sent to %s for %s", spend.Amount, spend.Token, spend.Recipient, spend.Purpose)
	return []transferReq{{
		recipient: spend.Recipient,
		amount:    spend.Amount,
		kind:      TransferTreasurySpend,
		ref:       proposalRef(proposalID),
	}}, nil
}

func (e *Engine) execGovernance(tx *gorm.DB, change GovernanceChange) error {
	cfg, err := e.config(tx)
	if err != nil {
		return err
	}
	switch change.Parameter {
	case "voting_period":
		v, err := strconv.ParseUint(change.NewValue, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: voting_period %q", ErrInvalidPayload, change.NewValue)
		}
		cfg.VotingPeriod = v
	case "quorum_threshold":
		v, err := strconv.ParseUint(change.NewValue, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: quorum_threshold %q", ErrInvalidPayload, change.NewValue)
		}
		cfg.QuorumThreshold = uint32(v)
	default:
		return fmt.Errorf("%w: parameter %q", ErrUnsupportedPayload, change.Parameter)
	}
	return tx.Save(&cfg).Error
}

func (e *Engine) execMembership(tx *gorm.DB, change MembershipChange) error {
	switch change.Action {
	case "add":
		if err := validateRole(change.Role); err != nil {
			return err
		}
		var existing types.Member
		err := tx.First(&existing, "address = ?", change.Member).Error
		if err == nil {
			return ErrAlreadyMember
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		now := e.nowSec()
		return tx.Create(&types.Member{
			Address:    change.Member,
			Roles:      encodeRoles([]string{change.Role}),
			JoinedAt:   now,
			LastActive: now,
		}).Error
	case "remove":
		var existing types.Member
		if err := tx.First(&existing, "address = ?", change.Member).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrMemberNotFound
			}
			return err
		}
		return tx.Delete(&types.Member{}, "address = ?", change.Member).Error
	default:
		return fmt.Errorf("%w: membership action %q", ErrUnsupportedPayload, change.Action)
	}
}

func (e *Engine) execGrant(tx *gorm.DB, grant Grant, proposalID uint64) ([]transferReq, error) {
	treasury, err := e.treasuryRow(tx)
	if err != nil {
		return nil, err
	}
	if treasury.VoiceBalance < grant.Amount {
		return nil, ErrInsufficientFunds
	}
	// Milestones are recorded on the proposal; payout is the full amount up
	// front until milestone gating lands.
	treasury.VoiceBalance -= grant.Amount
	treasury.TotalSpent += grant.Amount
	if err := tx.Save(&treasury).Error; err != nil {
		return nil, err
	}
	if err := e.recordSpend(tx, grant.Category, grant.Amount); err != nil {
		return nil, err
	}
	log.Printf("Grant proposal executed: %d voice granted to %s for %s", grant.Amount, grant.Recipient, grant.Category)
	return []transferReq{{
		recipient: grant.Recipient,
		amount:    grant.Amount,
		kind:      TransferGrant,
		ref:       proposalRef(proposalID),
	}}, nil
}

func (e *Engine) recordSpend(tx *gorm.DB, category string, amount uint64) error {
	if category == "" {
		category = "uncategorized"
	}
	var row types.SpendCategory
	err := tx.First(&row, "name = ?", category).Error
	if err == gorm.ErrRecordNotFound {
		return tx.Create(&types.SpendCategory{Name: category, Total: amount}).Error
	}
	if err != nil {
		return err
	}
	row.Total += amount
	return tx.Save(&row).Error
}

// isExecutionFailure separates payload-level outcomes (reported via the
// execution event, proposal stays Queued) from infrastructure errors that
// must roll the transaction back.
func isExecutionFailure(err error) bool {
	for _, sentinel := range []error{
		ErrInsufficientFunds,
		ErrUnsupportedPayload,
		ErrInvalidPayload,
		ErrAlreadyMember,
		ErrMemberNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func proposalRef(id uint64) string {
	return fmt.Sprintf("proposal-%d", id)
}
