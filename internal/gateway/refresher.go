package gateway

import (
	"context"
	"time"

	"orderboard/internal/common/logger"
	"orderboard/internal/domain"
)

// Fetcher is the read side of the gateway the refresher needs.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]domain.Order, error)
}

// Replacer is the store slice the refresher writes to.
type Replacer interface {
	ReplaceAll(orders []domain.Order)
}

// RefreshOrders builds the canonical "fetch everything, replace wholesale"
// step. When the fetch fails the store is left exactly as it was: a failed
// refresh must never blank the board.
func RefreshOrders(fetch Fetcher, store Replacer) func(context.Context) error {
	return func(ctx context.Context) error {
		orders, err := fetch.FetchAll(ctx)
		if err != nil {
			return err
		}
		store.ReplaceAll(orders)
		return nil
	}
}

const defaultDebounce = 250 * time.Millisecond

// Refresher turns change signals into full re-fetches. Signals arriving while
// a refresh is already pending coalesce into the single pending one: the feed
// carries no diffs, so one fetch answers any number of notifications.
type Refresher struct {
	refresh  func(context.Context) error
	debounce time.Duration
	kicks    chan struct{}
	lg       *logger.Logger
}

func NewRefresher(refresh func(context.Context) error, lg *logger.Logger) *Refresher {
	return &Refresher{
		refresh:  refresh,
		debounce: defaultDebounce,
		kicks:    make(chan struct{}, 1),
		lg:       lg,
	}
}

// Kick requests a refresh. Never blocks; a pending request already covers
// this one.
func (r *Refresher) Kick() {
	select {
	case r.kicks <- struct{}{}:
	default:
	}
}

// Run processes kicks until ctx is canceled. Each burst of kicks becomes one
// refresh after the debounce window. A failed refresh is a warning, not a
// stop: the next signal retries.
func (r *Refresher) Run(ctx context.Context) {
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.kicks:
			if pending == nil {
				pending = time.After(r.debounce)
			}
		case <-pending:
			pending = nil
			if err := r.refresh(ctx); err != nil {
				r.lg.Warn("refresh_failed", err, nil)
				continue
			}
			r.lg.Debug("refresh_done", nil)
		}
	}
}
