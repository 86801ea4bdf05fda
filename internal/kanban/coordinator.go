package kanban

import (
	"context"
	"sync"
	"time"

	"orderboard/internal/common/logger"
	"orderboard/internal/domain"
)

// RemoteWriter is the slice of the sync gateway the coordinator needs.
type RemoteWriter interface {
	PersistStatusChange(ctx context.Context, orderID int64, status domain.Status) error
}

// Notifier surfaces transient, non-blocking user messages (the toasts of the
// dashboard).
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

const defaultPersistTimeout = 10 * time.Second

// Coordinator orchestrates user-initiated status changes: apply locally
// first, persist in the background, roll back on failure. The caller never
// waits on the network; by the time MoveOrder returns, the card is already
// under its new column.
type Coordinator struct {
	store   *Store
	remote  RemoteWriter
	notify  Notifier
	lg      *logger.Logger
	timeout time.Duration

	// invalidate forces a full re-fetch; set by the wiring to the
	// refresher's kick. Called on stale references.
	invalidate func()

	wg sync.WaitGroup
}

func NewCoordinator(store *Store, remote RemoteWriter, notify Notifier, lg *logger.Logger) *Coordinator {
	return &Coordinator{
		store:   store,
		remote:  remote,
		notify:  notify,
		lg:      lg,
		timeout: defaultPersistTimeout,
	}
}

// OnStaleReference registers a callback invoked when a move referenced an id
// the store no longer holds.
func (c *Coordinator) OnStaleReference(fn func()) { c.invalidate = fn }

// MoveOrder applies a status change optimistically.
//
// The local apply is synchronous: a GroupByStatus issued right after this
// returns already shows the order under newStatus. The remote write runs in
// the background; on failure the previous snapshot is restored before the
// user sees the error, so visible state and store state never diverge.
//
// Re-applying the current status is not short-circuited: the remote write
// still goes out, because it touches the row's updated_at. Concurrent moves
// of the same order by different clients are last-write-wins; the losing
// client converges on the next change notification.
func (c *Coordinator) MoveOrder(ctx context.Context, orderID int64, newStatus domain.Status) error {
	if !newStatus.Valid() {
		return &domain.InvalidStatusError{Status: newStatus}
	}

	prev, err := c.store.ApplyStatusChange(orderID, newStatus)
	if err != nil {
		if c.invalidate != nil {
			c.invalidate()
		}
		return err
	}

	// Detached from the request: the caller's context ends with the HTTP
	// response, the persist must not.
	pctx := context.WithoutCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		pctx, cancel := context.WithTimeout(pctx, c.timeout)
		defer cancel()

		if err := c.remote.PersistStatusChange(pctx, orderID, newStatus); err != nil {
			c.store.Restore(prev)
			c.lg.Error("order_move_reverted", err, map[string]any{
				"order_id": orderID,
				"from":     string(prev.Status),
				"to":       string(newStatus),
			})
			c.notify.Error("could not update order, change reverted")
			return
		}
		c.lg.Debug("order_moved", map[string]any{
			"order_id": orderID,
			"from":     string(prev.Status),
			"to":       string(newStatus),
		})
		c.notify.Success("order updated")
	}()
	return nil
}

// Wait blocks until every in-flight persist has settled. Used on shutdown and
// by tests; the store is never left mid-reconciliation.
func (c *Coordinator) Wait() { c.wg.Wait() }
