// internal/cache/consumer.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jason-s-yu/blackjack/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBatchSize  = 20
	DefaultFlushDelay = 500 * time.Millisecond

	// popTimeout bounds each BLPop so cancellation is noticed.
	popTimeout = 3 * time.Second
)

// FlushFunc receives a batch of journaled actions in queue order.
type FlushFunc func(batch []models.ActionRecord)

// Consumer pops journaled actions off the queue and hands them to a FlushFunc
// in batches, either when BatchSize records are buffered or every FlushDelay.
type Consumer struct {
	rdb    *redis.Client
	queue  string
	flush  FlushFunc
	logger *logrus.Logger

	BatchSize  int
	FlushDelay time.Duration

	batchMu sync.Mutex
	batch   []models.ActionRecord
}

// NewConsumer reads from the same queue the journal writes to.
func (j *Journal) NewConsumer(flush FlushFunc, logger *logrus.Logger) *Consumer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Consumer{
		rdb:        j.rdb,
		queue:      j.queue,
		flush:      flush,
		logger:     logger,
		BatchSize:  DefaultBatchSize,
		FlushDelay: DefaultFlushDelay,
	}
}

// Run consumes until ctx is cancelled, then flushes whatever is buffered.
func (c *Consumer) Run(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(c.FlushDelay)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.flushBatch()
			}
		}
	}()

	for ctx.Err() == nil {
		res, err := c.rdb.BLPop(ctx, popTimeout, c.queue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				c.logger.Errorf("BLPop %s: %v", c.queue, err)
				time.Sleep(time.Second)
			}
			continue
		}
		// res[0] is the queue name and res[1] the payload
		if len(res) < 2 {
			continue
		}
		var rec models.ActionRecord
		if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
			c.logger.Warnf("invalid action record: %v", err)
			continue
		}
		c.appendToBatch(rec)
	}

	<-done
	c.flushBatch()
}

func (c *Consumer) appendToBatch(rec models.ActionRecord) {
	c.batchMu.Lock()
	c.batch = append(c.batch, rec)
	full := len(c.batch) >= c.BatchSize
	c.batchMu.Unlock()

	if full {
		c.flushBatch()
	}
}

func (c *Consumer) flushBatch() {
	c.batchMu.Lock()
	if len(c.batch) == 0 {
		c.batchMu.Unlock()
		return
	}
	batch := make([]models.ActionRecord, len(c.batch))
	copy(batch, c.batch)
	c.batch = c.batch[:0]
	c.batchMu.Unlock()

	c.flush(batch)
}
