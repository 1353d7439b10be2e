package gov

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/web3voice/voice-dao/src/data"
)

// Event types on the dao.events stream.
const (
	EventProposalCreated  = "proposal_created"
	EventVoteCast         = "vote_cast"
	EventProposalExecuted = "proposal_executed"
)

type ProposalCreatedEvent struct {
	ProposalID uint64
	Proposer   string
	Title      string
	Kind       string
}

type VoteCastEvent struct {
	ProposalID uint64
	Voter      string
	Support    string
	Power      uint64
	Reason     string
}

type ProposalExecutedEvent struct {
	ProposalID uint64
	Executor   string
	Success    bool
	Result     string
}

// EventSink receives governance notifications after state is committed.
// Dispatch is fire-and-forget: sink failures are logged, never rolled back.
type EventSink interface {
	ProposalCreated(ctx context.Context, ev ProposalCreatedEvent)
	VoteCast(ctx context.Context, ev VoteCastEvent)
	ProposalExecuted(ctx context.Context, ev ProposalExecutedEvent)
}

// RedisEventSink publishes events onto the dao.events stream for off-engine
// indexers and the notifier bot.
type RedisEventSink struct {
	Rdb *redis.Client
}

func (s RedisEventSink) ProposalCreated(ctx context.Context, ev ProposalCreatedEvent) {
	err := data.PublishEvent(ctx, s.Rdb, map[string]interface{}{
		"type":        EventProposalCreated,
		"proposal_id": ev.ProposalID,
		"proposer":    ev.Proposer,
		"title":       ev.Title,
		"kind":        ev.Kind,
	})
	if err != nil {
		log.Printf("publish %s: %v", EventProposalCreated, err)
	}
}

func (s RedisEventSink) VoteCast(ctx context.Context, ev VoteCastEvent) {
	err := data.PublishEvent(ctx, s.Rdb, map[string]interface{}{
		"type":        EventVoteCast,
		"proposal_id": ev.ProposalID,
		"voter":       ev.Voter,
		"support":     ev.Support,
		"power":       ev.Power,
		"reason":      ev.Reason,
	})
	if err != nil {
		log.Printf("publish %s: %v", EventVoteCast, err)
	}
}

func (s RedisEventSink) ProposalExecuted(ctx context.Context, ev ProposalExecutedEvent) {
	err := data.PublishEvent(ctx, s.Rdb, map[string]interface{}{
		"type":        EventProposalExecuted,
		"proposal_id": ev.ProposalID,
		"executor":    ev.Executor,
		"success":     ev.Success,
		"result":      ev.Result,
	})
	if err != nil {
		log.Printf("publish %s: %v", EventProposalExecuted, err)
	}
}

// NopEventSink drops events; used when no stream is configured.
type NopEventSink struct{}

func (NopEventSink) ProposalCreated(context.Context, ProposalCreatedEvent)   {}
func (NopEventSink) VoteCast(context.Context, VoteCastEvent)                 {}
func (NopEventSink) ProposalExecuted(context.Context, ProposalExecutedEvent) {}
