package gov

import (
	"github.com/web3voice/voice-dao/src/types"
	"gorm.io/gorm"
)

// PowerSource resolves voting power. Production deployments back this with the
// member table here; a token-balance service can replace it at the boundary.
type PowerSource interface {
	// PowerOf returns the effective casting power of one account.
	PowerOf(db *gorm.DB, addr string) (uint64, error)
	// TotalPower returns the total voting power in the system.
	TotalPower(db *gorm.DB) (uint64, error)
}

// MemberPowerSource reads power from member records. Delegation follows the
// push model: a delegating member casts with delegated-in power only, since
// their own base power travels with the delegation edge.
type MemberPowerSource struct {
	// Floor is a lower bound on total power for deployments where part of the
	// token supply is held outside the member table.
	Floor uint64
}

func (s MemberPowerSource) PowerOf(db *gorm.DB, addr string) (uint64, error) {
	var m types.Member
	if err := db.First(&m, "address = ?", addr).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	if m.DelegatedTo != "" {
		return m.DelegatedPower, nil
	}
	return m.VotingPower + m.DelegatedPower, nil
}

func (s MemberPowerSource) TotalPower(db *gorm.DB) (uint64, error) {
	var total *uint64
	if err := db.Model(&types.Member{}).Select("SUM(voting_power)").Scan(&total).Error; err != nil {
		return 0, err
	}
	sum := uint64(0)
	if total != nil {
		sum = *total
	}
	if sum < s.Floor {
		sum = s.Floor
	}
	return sum, nil
}

// StaticPowerSource serves fixed powers; used in tests and as the stand-in
// when no token collaborator is wired.
type StaticPowerSource struct {
	Powers map[string]uint64
	Total  uint64
}

func (s StaticPowerSource) PowerOf(_ *gorm.DB, addr string) (uint64, error) {
	return s.Powers[addr], nil
}

func (s StaticPowerSource) TotalPower(_ *gorm.DB) (uint64, error) {
	return s.Total, nil
}
