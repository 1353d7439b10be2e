package gov

import (
	"context"
	"log"

	"github.com/web3voice/voice-dao/src/types"
	"gorm.io/gorm"
)

// ContributeToTreasury credits attached native funds to the ledger.
func (e *Engine) ContributeToTreasury(ctx context.Context, caller string, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.db.Transaction(func(tx *gorm.DB) error {
		treasury, err := e.treasuryRow(tx)
		if err != nil {
			return err
		}
		treasury.NativeBalance += amount
		treasury.AvailableFunds += amount
		return tx.Save(&treasury).Error
	})
	if err != nil {
		return err
	}
	log.Printf("Contributor %s added %d native to treasury", caller, amount)
	return nil
}

// FundVoiceTreasury credits voice-token funds, used when the token
// collaborator settles an inbound transfer.
func (e *Engine) FundVoiceTreasury(ctx context.Context, caller string, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.db.Transaction(func(tx *gorm.DB) error {
		treasury, err := e.treasuryRow(tx)
		if err != nil {
			return err
		}
		treasury.VoiceBalance += amount
		treasury.AvailableFunds += amount
		return tx.Save(&treasury).Error
	})
	if err != nil {
		return err
	}
	log.Printf("Contributor %s added %d voice to treasury", caller, amount)
	return nil
}

// TreasurySnapshot is the treasury ledger plus its per-category spend rows.
type TreasurySnapshot struct {
	types.Treasury
	SpendingCategories map[string]uint64 `json:"spendingCategories"`
}

// GetTreasury returns the current ledger state.
func (e *Engine) GetTreasury() (TreasurySnapshot, error) {
	treasury, err := e.treasuryRow(e.db)
	if err != nil {
		return TreasurySnapshot{}, err
	}
	var rows []types.SpendCategory
	if err := e.db.Find(&rows).Error; err != nil {
		return TreasurySnapshot{}, err
	}
	snap := TreasurySnapshot{Treasury: treasury, SpendingCategories: map[string]uint64{}}
	for _, r := range rows {
		snap.SpendingCategories[r.Name] = r.Total
	}
	return snap, nil
}
