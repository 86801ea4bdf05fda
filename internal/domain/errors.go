package domain

import "fmt"

// NotFoundError: an operation referenced an order id not present in the
// store. Indicates a stale reference (card rendered after a remote delete);
// callers should force a re-fetch rather than crash.
type NotFoundError struct {
	OrderID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %d not found in store", e.OrderID)
}

// InvalidStatusError: a target status outside the closed set. Always a
// programming or configuration error, rejected before any mutation.
type InvalidStatusError struct {
	Status Status
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid order status %q", string(e.Status))
}

// RemoteUnavailableError: transient failure fetching from the remote store.
// Displayed data is preserved; recovery is a manual retry or the next change
// notification.
type RemoteUnavailableError struct {
	Op  string
	Err error
}

func (e *RemoteUnavailableError) Error() string {
	return fmt.Sprintf("remote unavailable during %s: %v", e.Op, e.Err)
}

func (e *RemoteUnavailableError) Unwrap() error { return e.Err }

// RemoteWriteError: a persistence call failed after the optimistic local
// apply. Triggers automatic rollback; the user may retry the drag.
type RemoteWriteError struct {
	OrderID int64
	Err     error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("remote write for order %d failed: %v", e.OrderID, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }
