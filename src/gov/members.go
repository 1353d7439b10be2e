package gov

import (
	"context"
	"log"

	"github.com/web3voice/voice-dao/src/types"
	"gorm.io/gorm"
)

// JoinDAO registers the caller as a regular member.
func (e *Engine) JoinDAO(ctx context.Context, caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var existing types.Member
		err := tx.First(&existing, "address = ?", caller).Error
		if err == nil {
			return ErrAlreadyMember
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		now := e.nowSec()
		return tx.Create(&types.Member{
			Address:    caller,
			Roles:      encodeRoles([]string{RoleMember}),
			JoinedAt:   now,
			LastActive: now,
		}).Error
	})
	if err != nil {
		return err
	}
	log.Printf("Member %s joined DAO", caller)
	return nil
}

// DelegateVotingPower records a single outgoing delegation edge. Push model:
// the caller's base power is added to the target's delegated pool at
// delegation time; while the edge exists the caller casts with delegated-in
// power only. Re-delegating unwinds the previous edge first.
func (e *Engine) DelegateVotingPower(ctx context.Context, caller, target string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller == target {
		return ErrSelfDelegation
	}
	err := e.db.Transaction(func(tx *gorm.DB) error {
		delegator, err := e.memberRow(tx, caller)
		if err != nil {
			return err
		}
		delegate, err := e.memberRow(tx, target)
		if err != nil {
			if err == ErrNotAMember {
				return ErrMemberNotFound
			}
			return err
		}
		if prev := delegator.DelegatedTo; prev != "" {
			if err := e.unwindDelegation(tx, &delegator); err != nil {
				return err
			}
			if prev == target {
				// Refresh the target so the decrement is visible before
				// re-adding to it.
				if err := tx.First(&delegate, "address = ?", target).Error; err != nil {
					return err
				}
			}
		}
		delegate.DelegatedPower += delegator.VotingPower
		delegator.DelegatedTo = target
		if err := tx.Save(&delegate).Error; err != nil {
			return err
		}
		return tx.Save(&delegator).Error
	})
	if err != nil {
		return err
	}
	log.Printf("Voting power delegated from %s to %s", caller, target)
	return nil
}

// UndelegateVotingPower clears the caller's delegation edge, returning the
// delegated base power to the caller. A caller with no edge is a no-op.
func (e *Engine) UndelegateVotingPower(ctx context.Context, caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.db.Transaction(func(tx *gorm.DB) error {
		delegator, err := e.memberRow(tx, caller)
		if err != nil {
			return err
		}
		if delegator.DelegatedTo == "" {
			return nil
		}
		if err := e.unwindDelegation(tx, &delegator); err != nil {
			return err
		}
		return tx.Save(&delegator).Error
	})
	if err != nil {
		return err
	}
	log.Printf("Voting power undelegated by %s", caller)
	return nil
}

// unwindDelegation removes the delegator's base power from its current target
// and clears the edge on the in-memory record (caller saves it).
func (e *Engine) unwindDelegation(tx *gorm.DB, delegator *types.Member) error {
	var target types.Member
	err := tx.First(&target, "address = ?", delegator.DelegatedTo).Error
	if err == nil {
		if target.DelegatedPower >= delegator.VotingPower {
			target.DelegatedPower -= delegator.VotingPower
		} else {
			target.DelegatedPower = 0
		}
		if err := tx.Save(&target).Error; err != nil {
			return err
		}
	} else if err != gorm.ErrRecordNotFound {
		return err
	}
	// A missing target was removed via membership proposal; nothing to
	// decrement there.
	delegator.DelegatedTo = ""
	return nil
}

// AddCouncilMember grants execute/review authority. Owner only.
func (e *Engine) AddCouncilMember(ctx context.Context, caller, member string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrUnauthorized
	}
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var existing types.CouncilMember
		err := tx.First(&existing, "address = ?", member).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		return tx.Create(&types.CouncilMember{Address: member}).Error
	})
	if err != nil {
		return err
	}
	log.Printf("Added %s to council", member)
	return nil
}

// RemoveCouncilMember revokes council authority. Owner only.
func (e *Engine) RemoveCouncilMember(ctx context.Context, caller, member string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrUnauthorized
	}
	if err := e.db.Delete(&types.CouncilMember{}, "address = ?", member).Error; err != nil {
		return err
	}
	log.Printf("Removed %s from council", member)
	return nil
}

// UpdateGovernanceConfig replaces the process parameters wholesale. Owner
// only; proposal-driven changes go through the governance payload instead.
func (e *Engine) UpdateGovernanceConfig(ctx context.Context, caller string, cfg types.GovernanceConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrUnauthorized
	}
	cfg.ID = 1
	if err := e.db.Save(&cfg).Error; err != nil {
		return err
	}
	log.Printf("Updated governance configuration")
	return nil
}

// Pause stops all mutating governance calls. Owner only.
func (e *Engine) Pause(ctx context.Context, caller string) error {
	return e.setPauseState(caller, true)
}

// Unpause resumes governance. Owner only.
func (e *Engine) Unpause(ctx context.Context, caller string) error {
	return e.setPauseState(caller, false)
}

func (e *Engine) setPauseState(caller string, paused bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrUnauthorized
	}
	err := e.db.Transaction(func(tx *gorm.DB) error {
		return e.setPaused(tx, paused)
	})
	if err != nil {
		return err
	}
	if paused {
		log.Printf("DAO paused")
	} else {
		log.Printf("DAO unpaused")
	}
	return nil
}
