package config

import (
	"log"
	"os"
	"strconv"

	"github.com/web3voice/voice-dao/src/data"
	"gorm.io/gorm"
)

type Config struct {
	Port      string
	MySQLDSN  string
	RedisURL  string
	JWTSecret string

	// DAO bootstrap
	Owner string

	// Governance parameter defaults, used when the config row is missing
	MinProposalDeposit uint64
	VotingPeriod       uint64 // seconds
	ExecutionDelay     uint64 // seconds
	QuorumThreshold    uint32 // bps
	ApprovalThreshold  uint32 // bps
	MaxActiveProposals uint32

	// Notifier
	DiscordToken   string
	DiscordChannel string
}

// Load reads config from the settings table, falling back to the environment
// for secrets and DSNs that should not live in the database.
func Load(db *gorm.DB) Config {
	if err := data.LoadSettings(db); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}

	owner := data.GetSetting("dao_owner")
	if owner == "" {
		owner = os.Getenv("DAO_OWNER")
	}

	discordToken := data.GetSetting("discord_token")
	if discordToken == "" {
		discordToken = os.Getenv("DISCORD_TOKEN")
	}

	discordChannel := data.GetSetting("discord_channel_id")
	if discordChannel == "" {
		discordChannel = os.Getenv("DISCORD_CHANNEL_ID")
	}

	return Config{
		Port:               getenv("PORT", "8080"),
		MySQLDSN:           getenv("MYSQL_DSN", "dao:dao@tcp(127.0.0.1:3306)/voicedao"),
		RedisURL:           getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		JWTSecret:          getenv("JWT_SECRET", ""),
		Owner:              owner,
		MinProposalDeposit: getuint64("MIN_PROPOSAL_DEPOSIT", 100),
		VotingPeriod:       getuint64("VOTING_PERIOD", 7*24*60*60),
		ExecutionDelay:     getuint64("EXECUTION_DELAY", 24*60*60),
		QuorumThreshold:    uint32(getuint64("QUORUM_THRESHOLD", 1000)),
		ApprovalThreshold:  uint32(getuint64("APPROVAL_THRESHOLD", 5000)),
		MaxActiveProposals: uint32(getuint64("MAX_ACTIVE_PROPOSALS", 5)),
		DiscordToken:       discordToken,
		DiscordChannel:     discordChannel,
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getuint64(key string, def uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		log.Printf("bad %s value %q, using default %d", key, v, def)
		return def
	}
	return n
}
