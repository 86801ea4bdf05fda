package kanban

import (
	"context"

	"orderboard/internal/domain"
)

// Column is one kanban lane: a status, its title and its member orders in
// fetch order. Locked columns (terminal statuses) render their cards as
// non-draggable.
type Column struct {
	Status domain.Status  `json:"status"`
	Title  string         `json:"title"`
	Locked bool           `json:"locked"`
	Orders []domain.Order `json:"orders"`
}

// Adapter is a pure translator between the store's grouped view and the
// board's gestures. It carries no business rules: status legality lives in
// the Coordinator, so the drop handler here just forwards.
type Adapter struct {
	store *Store
	coord *Coordinator
}

func NewAdapter(store *Store, coord *Coordinator) *Adapter {
	return &Adapter{store: store, coord: coord}
}

// Columns derives the board layout. Every status in the closed set gets a
// column even when empty.
func (a *Adapter) Columns() []Column {
	groups := a.store.GroupByStatus()
	statuses := domain.BoardStatuses()
	cols := make([]Column, 0, len(statuses))
	for _, st := range statuses {
		orders := groups[st]
		if orders == nil {
			orders = []domain.Order{}
		}
		cols = append(cols, Column{
			Status: st,
			Title:  st.Label(),
			Locked: st.Terminal(),
			Orders: orders,
		})
	}
	return cols
}

// DragEnd handles a drop. Dropping a card back onto its own column is a
// no-op; anything else becomes a MoveOrder, including drops onto a column id
// the board does not know about, which the coordinator rejects.
func (a *Adapter) DragEnd(ctx context.Context, orderID int64, target domain.Status) error {
	if cur, ok := a.store.Get(orderID); ok && cur.Status == target {
		return nil
	}
	return a.coord.MoveOrder(ctx, orderID, target)
}
