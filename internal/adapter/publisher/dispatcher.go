package publisher

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/rl1809/pos-cart/internal/core/domain"
	"github.com/rl1809/pos-cart/internal/port"
)

const publishTimeout = 5 * time.Second

// Dispatcher fans cart events out to a fixed pool of workers. All events of one
// cart go to the same worker, so they are published in the order they were queued.
type Dispatcher struct {
	pub     port.EventPublisher
	logger  *zap.Logger
	workers []chan domain.CartEvent
}

func NewDispatcher(pub port.EventPublisher, workerCount, bufferSize int, logger *zap.Logger) *Dispatcher {
	if workerCount < 1 {
		workerCount = 1
	}
	workers := make([]chan domain.CartEvent, workerCount)
	for i := range workers {
		workers[i] = make(chan domain.CartEvent, bufferSize)
	}
	return &Dispatcher{pub: pub, logger: logger, workers: workers}
}

// Run consumes queue until it is closed and returns once every worker has drained.
func (d *Dispatcher) Run(queue <-chan domain.CartEvent) {
	var wg sync.WaitGroup
	for i, ch := range d.workers {
		wg.Add(1)
		go func(id int, ch <-chan domain.CartEvent) {
			defer wg.Done()
			d.workerLoop(id, ch)
		}(i, ch)
	}

	for event := range queue {
		d.workers[d.shard(event.CartID)] <- event
	}

	for _, ch := range d.workers {
		close(ch)
	}
	wg.Wait()
}

func (d *Dispatcher) shard(cartID string) int {
	return int(xxhash.Sum64String(cartID) % uint64(len(d.workers)))
}

func (d *Dispatcher) workerLoop(id int, events <-chan domain.CartEvent) {
	for event := range events {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)

		if err := d.pub.Publish(ctx, event); err != nil {
			d.logger.Error("failed to publish cart event",
				zap.Int("worker", id),
				zap.String("event_id", event.ID),
				zap.String("cart_id", event.CartID),
				zap.Int("version", event.Version),
				zap.Error(err))
		}

		cancel()
	}
}
