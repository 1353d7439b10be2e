package data

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/redis/go-redis/v9"
)

const (
	noncePrefix     = "nonce:"
	streamEvents    = "dao.events"
	streamTransfers = "dao.transfers"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

func SetNonce(ctx context.Context, rdb *redis.Client, addr, nonce string) error {
	return rdb.Set(ctx, noncePrefix+addr, nonce, 5*time.Minute).Err()
}

func GetNonce(ctx context.Context, rdb *redis.Client, addr string) (string, error) {
	return rdb.Get(ctx, noncePrefix+addr).Result()
}

func DelNonce(ctx context.Context, rdb *redis.Client, addr string) {
	rdb.Del(ctx, noncePrefix+addr)
}

// PublishEvent appends a governance event to the dao.events stream.
func PublishEvent(ctx context.Context, rdb *redis.Client, payload map[string]interface{}) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamEvents,
		Values: payload,
	}).Result()
	return err
}

// EventStream is the stream name consumed by notifiers and indexers.
func EventStream() string { return streamEvents }

// PublishTransfer appends an outbound fund transfer request to the
// dao.transfers stream. Delivery is at-least-once; the dedup key lets
// downstream settlement workers drop replays.
func PublishTransfer(ctx context.Context, rdb *redis.Client, recipient string, amount uint64, kind, ref string) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamTransfers,
		Values: map[string]interface{}{
			"recipient": recipient,
			"amount":    fmt.Sprintf("%d", amount),
			"kind":      kind,
			"ref":       ref,
			"dedup":     TransferDedupKey(recipient, amount, kind, ref),
		},
	}).Result()
	return err
}

// TransferDedupKey derives a stable idempotency key for a transfer request.
// ref ties the key to the originating proposal or contribution so repeated
// legitimate payouts to one recipient stay distinct.
func TransferDedupKey(recipient string, amount uint64, kind, ref string) string {
	h := xxhash.NewS64(0)
	_, _ = h.WriteString(recipient)
	_, _ = h.WriteString(kind)
	_, _ = h.WriteString(ref)
	_, _ = h.WriteString(fmt.Sprintf("%d", amount))
	return fmt.Sprintf("%016x", h.Sum64())
}
