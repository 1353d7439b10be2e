package data

import (
	"log"

	"github.com/web3voice/voice-dao/src/types"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func MustMySQL(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	return db
}

// Migrate creates or updates the engine schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Setting{},
		&types.Proposal{},
		&types.Vote{},
		&types.Member{},
		&types.CouncilMember{},
		&types.Contribution{},
		&types.Treasury{},
		&types.SpendCategory{},
		&types.GovernanceConfig{},
	)
}
