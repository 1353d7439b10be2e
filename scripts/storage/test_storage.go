package main

import (
	"context"
	"log"
	"os"

	"github.com/web3voice/voice-dao/src/data"
	"github.com/web3voice/voice-dao/src/types"
)

func main() {
	// Connect to MySQL and apply the schema
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "dao:dao@tcp(127.0.0.1:3306)/voicedao"
	}
	db := data.MustMySQL(dsn)

	if err := data.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Schema migrated")

	var proposals, members, contributions int64
	db.Model(&types.Proposal{}).Count(&proposals)
	db.Model(&types.Member{}).Count(&members)
	db.Model(&types.Contribution{}).Count(&contributions)
	log.Printf("Rows: %d proposals, %d members, %d contributions", proposals, members, contributions)

	var treasury types.Treasury
	if err := db.First(&treasury, 1).Error; err != nil {
		log.Printf("Treasury row missing (engine not bootstrapped yet): %v", err)
	} else {
		log.Printf("Treasury: voice=%d native=%d spent=%d",
			treasury.VoiceBalance, treasury.NativeBalance, treasury.TotalSpent)
	}

	// Connect to Redis and check the stream plumbing
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://127.0.0.1:6379/0"
	}
	rdb := data.MustRedis(redisURL)
	defer rdb.Close()

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Redis ping failed: %v", err)
	}

	events, err := rdb.XLen(ctx, data.EventStream()).Result()
	if err != nil {
		log.Fatalf("Event stream: %v", err)
	}
	transfers, err := rdb.XLen(ctx, "dao.transfers").Result()
	if err != nil {
		log.Fatalf("Transfer stream: %v", err)
	}
	log.Printf("Streams: %d events, %d transfers", events, transfers)
}
