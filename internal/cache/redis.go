// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/blackjack/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for journaled actions.
const DefaultQueueName = "blackjack_actions"

// Journal pushes reconciled session actions onto a Redis list for external
// consumers. It is write-only: nothing in the client reads the list back.
type Journal struct {
	rdb   *redis.Client
	queue string
}

// NewJournal wraps an existing client. An empty queue uses DefaultQueueName.
func NewJournal(rdb *redis.Client, queue string) *Journal {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Journal{rdb: rdb, queue: queue}
}

// ConnectJournal dials Redis at addr and verifies the connection.
func ConnectJournal(addr string, db int, queue string) (*Journal, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return NewJournal(rdb, queue), nil
}

// Queue returns the list the journal pushes to.
func (j *Journal) Queue() string {
	return j.queue
}

// Record serializes rec to JSON and pushes it to the journal queue.
func (j *Journal) Record(ctx context.Context, rec models.ActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}
	if err := j.rdb.RPush(ctx, j.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", j.queue, err)
	}
	return nil
}

// Close releases the Redis connection.
func (j *Journal) Close() error {
	return j.rdb.Close()
}
