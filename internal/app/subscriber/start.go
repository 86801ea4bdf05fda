package subscriber

import (
	"context"
	"encoding/json"
	"fmt"

	"orderboard/internal/common/logger"
	"orderboard/internal/common/mq"
	"orderboard/internal/config"
	"orderboard/internal/gateway"
)

// Run drains the durable change log queue and writes each event to the log.
// Operator visibility into what the board sessions are committing; the board
// itself uses its own private fanout queue.
func Run(ctx context.Context, cfg config.App) error {
	lg := logger.New("change-subscriber")

	mqc, err := mq.Dial(cfg.Rabbit)
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer mqc.Close()
	if err := mqc.DeclareChanges(); err != nil {
		return fmt.Errorf("declare changes topology: %w", err)
	}

	deliveries, err := mqc.ConsumeQueue(mq.ChangesLogQueue, "change-subscriber", 1)
	if err != nil {
		return fmt.Errorf("consume %s: %w", mq.ChangesLogQueue, err)
	}
	lg.Info("service_started", map[string]any{"queue": mq.ChangesLogQueue})

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			var ev gateway.Event
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				lg.Error("change_decode_failed", err, nil)
				_ = d.Nack(false, false)
				continue
			}
			lg.Info("change_received", map[string]any{
				"event_id": ev.ID,
				"table":    ev.Table,
				"op":       ev.Op,
				"order_id": ev.OrderID,
				"at":       ev.At,
			})
			_ = d.Ack(false)
		}
	}
}
