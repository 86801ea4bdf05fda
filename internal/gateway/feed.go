package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"orderboard/internal/common/logger"
	"orderboard/internal/common/mq"
)

// Event describes one committed change. Consumers of the board treat it as a
// bare invalidation signal; only the change-subscriber log mode reads the
// fields.
type Event struct {
	ID      string    `json:"id"`
	Table   string    `json:"table"`
	Op      string    `json:"op"`
	OrderID int64     `json:"order_id,omitempty"`
	At      time.Time `json:"at"`
}

// Subscription identifies one registered change callback.
type Subscription int

// ChangeFeed carries change events over the fanout exchange. Every session
// publishing a write also hears its own event back, exactly like the remote
// datastore's notification stream.
type ChangeFeed struct {
	client *mq.Client
	lg     *logger.Logger

	mu   sync.Mutex
	subs map[Subscription]func()
	next Subscription
}

func NewChangeFeed(client *mq.Client, lg *logger.Logger) *ChangeFeed {
	return &ChangeFeed{client: client, lg: lg, subs: make(map[Subscription]func())}
}

// Publish sends an event to the exchange. Failures are logged, never
// propagated: the write already committed, and a missed signal only delays
// convergence until the next one.
func (f *ChangeFeed) Publish(ctx context.Context, ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		f.lg.Error("change_encode_failed", err, nil)
		return
	}
	if err := f.client.PublishChange(ctx, body); err != nil {
		f.lg.Error("change_publish_failed", err, map[string]any{"op": ev.Op, "order_id": ev.OrderID})
	}
}

// Subscribe registers a callback invoked, with no payload, on every incoming
// change event. The handle must be released with Unsubscribe when the
// consuming view goes away.
func (f *ChangeFeed) Subscribe(onChange func()) Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.subs[f.next] = onChange
	return f.next
}

func (f *ChangeFeed) Unsubscribe(h Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, h)
}

// Run consumes the fanout until ctx is canceled, dispatching each delivery to
// the registered callbacks.
func (f *ChangeFeed) Run(ctx context.Context, consumer string) error {
	deliveries, err := f.client.ConsumeFanout(consumer)
	if err != nil {
		return err
	}
	f.lg.Info("change_feed_started", map[string]any{"consumer": consumer})
	for {
		select {
		case <-ctx.Done():
			_ = f.client.Cancel(consumer)
			return nil
		case _, ok := <-deliveries:
			if !ok {
				return nil
			}
			// The body is not inspected here: notifications are treated as
			// invalidation signals, never as diffs.
			f.dispatch()
		}
	}
}

func (f *ChangeFeed) dispatch() {
	f.mu.Lock()
	callbacks := make([]func(), 0, len(f.subs))
	for _, fn := range f.subs {
		callbacks = append(callbacks, fn)
	}
	f.mu.Unlock()
	for _, fn := range callbacks {
		fn()
	}
}
