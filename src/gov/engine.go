package gov

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/web3voice/voice-dao/src/types"
	"gorm.io/gorm"
)

// Engine is the governance aggregate root. Every mutating call locks the
// engine (the standalone analog of the host runtime's single-writer
// execution) and runs inside one DB transaction, so a precondition failure
// reverts the whole call. Outbound effects (events, transfers) are dispatched
// only after the transaction commits and are never rolled back.
type Engine struct {
	db       *gorm.DB
	power    PowerSource
	events   EventSink
	transfer TransferService
	owner    string
	now      func() time.Time

	mu sync.Mutex
}

// Options wires the engine's collaborators and bootstrap parameters.
type Options struct {
	Owner    string
	Power    PowerSource
	Events   EventSink
	Transfer TransferService
	Clock    func() time.Time

	// Defaults used when the governance config row does not exist yet.
	Defaults types.GovernanceConfig
}

// NewEngine attaches an engine to db and seeds the config row, the treasury
// ledger and the owner (founder member + council) when absent.
func NewEngine(db *gorm.DB, opts Options) (*Engine, error) {
	e := &Engine{
		db:       db,
		power:    opts.Power,
		events:   opts.Events,
		transfer: opts.Transfer,
		owner:    opts.Owner,
		now:      opts.Clock,
	}
	if e.power == nil {
		e.power = MemberPowerSource{}
	}
	if e.events == nil {
		e.events = NopEventSink{}
	}
	if e.transfer == nil {
		e.transfer = NopTransferService{}
	}
	if e.now == nil {
		e.now = time.Now
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var cfg types.GovernanceConfig
		if err := tx.First(&cfg, 1).Error; err == gorm.ErrRecordNotFound {
			cfg = opts.Defaults
			cfg.ID = 1
			if cfg.MaxActiveProposals == 0 {
				cfg.MaxActiveProposals = 5
			}
			if err := tx.Create(&cfg).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		var treasury types.Treasury
		if err := tx.First(&treasury, 1).Error; err == gorm.ErrRecordNotFound {
			treasury = types.Treasury{ID: 1}
			if err := tx.Create(&treasury).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if e.owner != "" {
			var m types.Member
			if err := tx.First(&m, "address = ?", e.owner).Error; err == gorm.ErrRecordNotFound {
				now := e.nowSec()
				owner := types.Member{
					Address:    e.owner,
					Roles:      encodeRoles([]string{RoleFounder}),
					JoinedAt:   now,
					LastActive: now,
				}
				if err := tx.Create(&owner).Error; err != nil {
					return err
				}
				if err := tx.Create(&types.CouncilMember{Address: e.owner}).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DB exposes the handle for the read-only query surface.
func (e *Engine) DB() *gorm.DB { return e.db }

// Owner returns the bootstrap owner account.
func (e *Engine) Owner() string { return e.owner }

func (e *Engine) nowSec() uint64 {
	return uint64(e.now().Unix())
}

func (e *Engine) config(tx *gorm.DB) (types.GovernanceConfig, error) {
	var cfg types.GovernanceConfig
	if err := tx.First(&cfg, 1).Error; err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (e *Engine) treasuryRow(tx *gorm.DB) (types.Treasury, error) {
	var t types.Treasury
	if err := tx.First(&t, 1).Error; err != nil {
		return t, err
	}
	return t, nil
}

func (e *Engine) memberRow(tx *gorm.DB, addr string) (types.Member, error) {
	var m types.Member
	if err := tx.First(&m, "address = ?", addr).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return m, ErrNotAMember
		}
		return m, err
	}
	return m, nil
}

func (e *Engine) isCouncil(tx *gorm.DB, addr string) (bool, error) {
	var c types.CouncilMember
	err := tx.First(&c, "address = ?", addr).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) paused(tx *gorm.DB) (bool, error) {
	var s types.Setting
	err := tx.First(&s, "name = ?", "paused").Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.Value == "1", nil
}

func (e *Engine) setPaused(tx *gorm.DB, v bool) error {
	val := "0"
	if v {
		val = "1"
	}
	var s types.Setting
	err := tx.First(&s, "name = ?", "paused").Error
	if err == gorm.ErrRecordNotFound {
		return tx.Create(&types.Setting{Name: "paused", Value: val}).Error
	}
	if err != nil {
		return err
	}
	s.Value = val
	return tx.Save(&s).Error
}

// transferReq is an outbound effect held until the call's transaction commits.
type transferReq struct {
	recipient string
	amount    uint64
	kind      string
	ref       string
}

func (e *Engine) flushTransfers(ctx context.Context, reqs []transferReq) {
	for _, r := range reqs {
		e.transfer.Transfer(ctx, r.recipient, r.amount, r.kind, r.ref)
	}
}

// CreateProposalInput carries create_proposal parameters. Deposit is the
// value attached to the call.
type CreateProposalInput struct {
	Title       string
	Description string
	Payload     Payload
	Tags        []string
	Attachments []string
	Deposit     uint64
}

// CreateProposal opens a new proposal in the Active state and returns its id.
func (e *Engine) CreateProposal(ctx context.Context, caller string, in CreateProposalInput) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	encoded, err := EncodePayload(in.Payload)
	if err != nil {
		return 0, err
	}

	var proposal types.Proposal
	err = e.db.Transaction(func(tx *gorm.DB) error {
		if p, err := e.paused(tx); err != nil {
			return err
		} else if p {
			return ErrEnginePaused
		}
		if _, err := e.memberRow(tx, caller); err != nil {
			return err
		}
		cfg, err := e.config(tx)
		if err != nil {
			return err
		}
		if in.Deposit < cfg.MinProposalDeposit {
			return ErrInsufficientDeposit
		}
		var active int64
		err = tx.Model(&types.Proposal{}).
			Where("proposer = ? AND status = ?", caller, types.ProposalStatusActive).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active >= int64(cfg.MaxActiveProposals) {
			return ErrTooManyActiveProposals
		}

		now := e.nowSec()
		proposal = types.Proposal{
			Title:        in.Title,
			Description:  in.Description,
			Proposer:     caller,
			PayloadKind:  in.Payload.Kind,
			Payload:      encoded,
			Status:       types.ProposalStatusActive,
			CreatedAtSec: now,
			VotingStarts: now,
			VotingEnds:   now + cfg.VotingPeriod,
			ExecutionETA: 0,
			Deposit:      in.Deposit,
			Tags:         encodeStrings(in.Tags),
			Attachments:  encodeStrings(in.Attachments),
		}
		return tx.Create(&proposal).Error
	})
	if err != nil {
		return 0, err
	}

	log.Printf("Created proposal %d", proposal.ID)
	e.events.ProposalCreated(ctx, ProposalCreatedEvent{
		ProposalID: proposal.ID,
		Proposer:   caller,
		Title:      in.Title,
		Kind:       in.Payload.Kind,
	})
	return proposal.ID, nil
}

// VoteOnProposal records or replaces the caller's vote. A replaced vote's
// power is removed from its old bucket before the new vote is counted, so
// tallies never double-count a voter.
func (e *Engine) VoteOnProposal(ctx context.Context, caller string, proposalID uint64, support, reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch support {
	case types.VoteFor, types.VoteAgainst, types.VoteAbstain:
	default:
		return ErrInvalidVote
	}

	var cast VoteCastEvent
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if p, err := e.paused(tx); err != nil {
			return err
		} else if p {
			return ErrEnginePaused
		}

		var proposal types.Proposal
		if err := tx.First(&proposal, proposalID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrProposalNotFound
			}
			return err
		}
		if proposal.Status != types.ProposalStatusActive {
			return ErrProposalNotActive
		}
		now := e.nowSec()
		if now < proposal.VotingStarts || now > proposal.VotingEnds {
			return ErrVotingClosed
		}

		member, err := e.memberRow(tx, caller)
		if err != nil {
			return err
		}
		power, err := e.power.PowerOf(tx, caller)
		if err != nil {
			return err
		}
		if power == 0 {
			return ErrNoVotingPower
		}

		var prev types.Vote
		err = tx.First(&prev, "proposal_id = ? AND voter = ?", proposalID, caller).Error
		switch err {
		case nil:
			switch prev.Support {
			case types.VoteFor:
				proposal.VotesFor -= prev.Power
			case types.VoteAgainst:
				proposal.VotesAgainst -= prev.Power
			case types.VoteAbstain:
				proposal.VotesAbstain -= prev.Power
			}
			proposal.TotalVotes -= prev.Power
		case gorm.ErrRecordNotFound:
		default:
			return err
		}

		switch support {
		case types.VoteFor:
			proposal.VotesFor += power
		case types.VoteAgainst:
			proposal.VotesAgainst += power
		case types.VoteAbstain:
			proposal.VotesAbstain += power
		}
		proposal.TotalVotes += power

		vote := types.Vote{
			ProposalID: proposalID,
			Voter:      caller,
			Support:    support,
			Power:      power,
			Reason:     reason,
			CastAt:     now,
		}
		if err == nil {
			if err := tx.Model(&types.Vote{}).
				Where("proposal_id = ? AND voter = ?", proposalID, caller).
				Updates(map[string]interface{}{
					"support": vote.Support,
					"power":   vote.Power,
					"reason":  vote.Reason,
					"cast_at": vote.CastAt,
				}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
		}
		if err := tx.Save(&proposal).Error; err != nil {
			return err
		}

		member.LastActive = now
		if err := tx.Save(&member).Error; err != nil {
			return err
		}

		cast = VoteCastEvent{
			ProposalID: proposalID,
			Voter:      caller,
			Support:    support,
			Power:      power,
			Reason:     reason,
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("Vote cast on proposal %d by %s", proposalID, caller)
	e.events.VoteCast(ctx, cast)
	return nil
}

// FinalizeProposal closes voting exactly once. Quorum counts all cast votes
// against total power; approval counts only for/against. On success the
// deposit is refunded and an execution window opens; on defeat the deposit is
// forfeited to the treasury's native balance.
func (e *Engine) FinalizeProposal(ctx context.Context, proposalID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var outbox []transferReq
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var proposal types.Proposal
		if err := tx.First(&proposal, proposalID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrProposalNotFound
			}
			return err
		}
		if proposal.Status != types.ProposalStatusActive {
			return ErrProposalNotActive
		}
		if e.nowSec() <= proposal.VotingEnds {
			return ErrVotingPeriodNotEnded
		}

		cfg, err := e.config(tx)
		if err != nil {
			return err
		}
		totalPower, err := e.power.TotalPower(tx)
		if err != nil {
			return err
		}

		quorumMet := totalPower > 0 &&
			proposal.TotalVotes*10000/totalPower >= uint64(cfg.QuorumThreshold)
		decided := proposal.VotesFor + proposal.VotesAgainst
		approvalMet := proposal.TotalVotes > 0 && decided > 0 &&
			proposal.VotesFor*10000/decided >= uint64(cfg.ApprovalThreshold)

		if quorumMet && approvalMet {
			proposal.Status = types.ProposalStatusSucceeded
			proposal.ExecutionETA = e.nowSec() + cfg.ExecutionDelay
			if proposal.Deposit > 0 {
				outbox = append(outbox, transferReq{
					recipient: proposal.Proposer,
					amount:    proposal.Deposit,
					kind:      TransferDepositRefund,
					ref:       proposalRef(proposal.ID),
				})
			}
		} else {
			proposal.Status = types.ProposalStatusDefeated
			treasury, err := e.treasuryRow(tx)
			if err != nil {
				return err
			}
			treasury.NativeBalance += proposal.Deposit
			if err := tx.Save(&treasury).Error; err != nil {
				return err
			}
		}
		if err := tx.Save(&proposal).Error; err != nil {
			return err
		}
		log.Printf("Proposal %d finalized with status %s", proposal.ID, proposal.Status)
		return nil
	})
	if err != nil {
		return err
	}

	e.flushTransfers(ctx, outbox)
	return nil
}

// QueueProposal moves a succeeded proposal into the execution queue once its
// timelock has elapsed.
func (e *Engine) QueueProposal(ctx context.Context, proposalID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.db.Transaction(func(tx *gorm.DB) error {
		var proposal types.Proposal
		if err := tx.First(&proposal, proposalID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrProposalNotFound
			}
			return err
		}
		if proposal.Status != types.ProposalStatusSucceeded {
			return ErrProposalNotSucceeded
		}
		if e.nowSec() < proposal.ExecutionETA {
			return ErrExecutionDelayNotMet
		}
		proposal.Status = types.ProposalStatusQueued
		if err := tx.Save(&proposal).Error; err != nil {
			return err
		}
		log.Printf("Proposal %d queued for execution", proposal.ID)
		return nil
	})
}

func encodeStrings(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	raw, _ := json.Marshal(v)
	return string(raw)
}

func decodeStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var v []string
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil
	}
	return v
}
