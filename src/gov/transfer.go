package gov

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/web3voice/voice-dao/src/data"
)

// Transfer kinds on the dao.transfers stream.
const (
	TransferDepositRefund = "deposit_refund"
	TransferTreasurySpend = "treasury_spend"
	TransferGrant         = "grant"
	TransferReward        = "reward"
)

// TransferService moves value to an external recipient. Requests are
// dispatched after the engine's bookkeeping commits and are not awaited;
// settlement failures are a downstream reconciliation concern.
type TransferService interface {
	Transfer(ctx context.Context, recipient string, amount uint64, kind, ref string)
}

// RedisTransferQueue enqueues transfer requests on the dao.transfers stream,
// delivered at-least-once to the settlement worker.
type RedisTransferQueue struct {
	Rdb *redis.Client
}

func (q RedisTransferQueue) Transfer(ctx context.Context, recipient string, amount uint64, kind, ref string) {
	if err := data.PublishTransfer(ctx, q.Rdb, recipient, amount, kind, ref); err != nil {
		log.Printf("enqueue transfer %s %d to %s (%s): %v", kind, amount, recipient, ref, err)
	}
}

// NopTransferService drops transfer requests.
type NopTransferService struct{}

func (NopTransferService) Transfer(context.Context, string, uint64, string, string) {}
