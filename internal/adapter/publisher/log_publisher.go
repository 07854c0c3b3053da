package publisher

import (
	"context"

	"go.uber.org/zap"

	"github.com/rl1809/pos-cart/internal/core/domain"
)

// LogPublisher is used when no brokers are configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.CartEvent) error {
	p.logger.Info("cart event",
		zap.String("event_id", event.ID),
		zap.String("cart_id", event.CartID),
		zap.String("type", string(event.Type)),
		zap.String("product_id", event.ProductID),
		zap.Int("item_count", event.ItemCount),
		zap.Float64("subtotal", event.Subtotal),
		zap.Float64("total_savings", event.TotalSavings),
		zap.Float64("final_total", event.FinalTotal),
		zap.Int("offers", len(event.Offers)))
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
