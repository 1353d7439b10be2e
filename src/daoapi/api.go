package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/web3voice/voice-dao/src/config"
	"github.com/web3voice/voice-dao/src/data"
	"github.com/web3voice/voice-dao/src/gov"
	"github.com/web3voice/voice-dao/src/types"
	"github.com/web3voice/voice-dao/src/webserver"
)

func main() {
	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "dao:dao@tcp(localhost:3306)/voicedao"
	}
	db := data.MustMySQL(mysqlDSN)

	if err := data.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cfg := config.Load(db)
	if cfg.JWTSecret == "" {
		log.Fatalf("JWT_SECRET is not set")
	}
	if cfg.Owner == "" {
		log.Fatalf("DAO_OWNER is not set")
	}
	rdb := data.MustRedis(cfg.RedisURL)

	engine, err := gov.NewEngine(db, gov.Options{
		Owner:    cfg.Owner,
		Power:    gov.MemberPowerSource{},
		Events:   gov.RedisEventSink{Rdb: rdb},
		Transfer: gov.RedisTransferQueue{Rdb: rdb},
		Defaults: types.GovernanceConfig{
			MinProposalDeposit: cfg.MinProposalDeposit,
			VotingPeriod:       cfg.VotingPeriod,
			ExecutionDelay:     cfg.ExecutionDelay,
			QuorumThreshold:    cfg.QuorumThreshold,
			ApprovalThreshold:  cfg.ApprovalThreshold,
			MaxActiveProposals: cfg.MaxActiveProposals,
		},
	})
	if err != nil {
		log.Fatalf("engine: %v", err)
	}

	router := webserver.New(cfg, engine, rdb)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	log.Printf("VoiceDAO API listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
