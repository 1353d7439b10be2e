package gov

import (
	"context"
	"fmt"
	"log"

	"github.com/web3voice/voice-dao/src/types"
	"gorm.io/gorm"
)

// Contribution kinds accepted for review.
const (
	ContributionVoiceContent   = "voice_content"
	ContributionCodeCommit     = "code_commit"
	ContributionDocumentation  = "documentation"
	ContributionDesign         = "design"
	ContributionMarketing      = "marketing"
	ContributionCommunity      = "community"
	ContributionBugReport      = "bug_report"
	ContributionFeatureRequest = "feature_request"
)

// KnownContributionKind reports whether kind is part of the closed set.
func KnownContributionKind(kind string) bool {
	switch kind {
	case ContributionVoiceContent, ContributionCodeCommit, ContributionDocumentation,
		ContributionDesign, ContributionMarketing, ContributionCommunity,
		ContributionBugReport, ContributionFeatureRequest:
		return true
	}
	return false
}

// SubmitContribution records a unit of work for review and returns its id.
func (e *Engine) SubmitContribution(ctx context.Context, caller, kind, title, description, contentRef string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !KnownContributionKind(kind) {
		return 0, ErrInvalidPayload
	}

	var contribution types.Contribution
	err := e.db.Transaction(func(tx *gorm.DB) error {
		contribution = types.Contribution{
			Contributor: caller,
			Kind:        kind,
			Title:       title,
			Description: description,
			ContentRef:  contentRef,
			Status:      types.ContributionSubmitted,
			SubmittedAt: e.nowSec(),
		}
		if err := tx.Create(&contribution).Error; err != nil {
			return err
		}

		var member types.Member
		err := tx.First(&member, "address = ?", caller).Error
		if err == nil {
			member.Contributions++
			return tx.Save(&member).Error
		}
		if err == gorm.ErrRecordNotFound {
			// Non-members may submit; only member counters are skipped.
			return nil
		}
		return err
	})
	if err != nil {
		return 0, err
	}
	log.Printf("Contribution %d submitted by %s", contribution.ID, caller)
	return contribution.ID, nil
}

// ReviewContribution advances a submitted contribution exactly once. Council
// only. Approval grants reputation and disburses the reward from the voice
// treasury when the balance covers it; the reward amount is recorded either
// way.
func (e *Engine) ReviewContribution(ctx context.Context, caller string, contributionID uint64, approved bool, reward uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var outbox []transferReq
	err := e.db.Transaction(func(tx *gorm.DB) error {
		council, err := e.isCouncil(tx, caller)
		if err != nil {
			return err
		}
		if !council {
			return ErrUnauthorized
		}

		var contribution types.Contribution
		if err := tx.First(&contribution, contributionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrContributionNotFound
			}
			return err
		}
		if contribution.Status != types.ContributionSubmitted &&
			contribution.Status != types.ContributionUnderReview {
			return ErrAlreadyReviewed
		}

		if approved {
			contribution.Status = types.ContributionApproved
		} else {
			contribution.Status = types.ContributionRejected
		}
		now := e.nowSec()
		contribution.RewardAmount = reward
		contribution.ReviewedAt = &now
		contribution.Reviewer = caller
		if err := tx.Save(&contribution).Error; err != nil {
			return err
		}

		if approved {
			var member types.Member
			err := tx.First(&member, "address = ?", contribution.Contributor).Error
			if err == nil {
				member.Reputation += 10
				if err := tx.Save(&member).Error; err != nil {
					return err
				}
			} else if err != gorm.ErrRecordNotFound {
				return err
			}

			if reward > 0 {
				treasury, err := e.treasuryRow(tx)
				if err != nil {
					return err
				}
				if treasury.VoiceBalance >= reward {
					treasury.VoiceBalance -= reward
					treasury.TotalSpent += reward
					if err := tx.Save(&treasury).Error; err != nil {
						return err
					}
					outbox = append(outbox, transferReq{
						recipient: contribution.Contributor,
						amount:    reward,
						kind:      TransferReward,
						ref:       contributionRef(contribution.ID),
					})
				}
				// Insufficient balance skips disbursement; the recorded
				// reward stays for later settlement.
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("Contribution %d reviewed by %s, approved: %v", contributionID, caller, approved)
	e.flushTransfers(ctx, outbox)
	return nil
}

func contributionRef(id uint64) string {
	return fmt.Sprintf("contribution-%d", id)
}
