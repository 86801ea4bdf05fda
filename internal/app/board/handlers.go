package board

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"orderboard/internal/catalog"
	"orderboard/internal/common/logger"
	"orderboard/internal/domain"
	"orderboard/internal/kanban"
)

// OrderWriter is the CRUD slice of the gateway the handlers use. Status drags
// do not go through it; they take the optimistic path via the adapter.
type OrderWriter interface {
	InsertOrder(ctx context.Context, o domain.Order) (int64, error)
	UpdateOrder(ctx context.Context, o domain.Order) error
	DeleteOrder(ctx context.Context, orderID int64) error
}

// Kicker requests a full re-fetch.
type Kicker interface{ Kick() }

type Handler struct {
	store   *kanban.Store
	adapter *kanban.Adapter
	catalog *catalog.Catalog
	writer  OrderWriter
	kicker  Kicker
	notices *Notices
	lg      *logger.Logger
}

func NewHandler(store *kanban.Store, adapter *kanban.Adapter, cat *catalog.Catalog,
	writer OrderWriter, kicker Kicker, notices *Notices, lg *logger.Logger) *Handler {
	return &Handler{
		store: store, adapter: adapter, catalog: cat,
		writer: writer, kicker: kicker, notices: notices, lg: lg,
	}
}

func NewRouter(h *Handler, allowedOrigin, jwtSecret string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := []string{"*"}
	if allowedOrigin != "" {
		origins = []string{allowedOrigin}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Group(func(r chi.Router) {
		if jwtSecret != "" {
			r.Use(authMiddleware(jwtSecret))
		}

		r.Get("/api/board", h.GetBoard)
		r.Post("/api/orders/{id}/status", h.MoveOrder)
		r.Get("/api/orders", h.ListOrders)
		r.Post("/api/orders", h.CreateOrder)
		r.Put("/api/orders/{id}", h.UpdateOrder)
		r.Delete("/api/orders/{id}", h.DeleteOrder)
		r.Get("/api/products", h.ListProducts)
		r.Get("/api/customers", h.ListCustomers)
		r.Get("/api/notices", h.GetNotices)
		r.Post("/api/refresh", h.ForceRefresh)
	})

	return r
}

// GetBoard returns the kanban columns derived from the current store
// snapshot.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"columns": h.adapter.Columns()})
}

// MoveOrder is the drag-end entry point. The response is 202: the local state
// already changed, the remote write is still in flight.
func (h *Handler) MoveOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "bad_id", err.Error())
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if err := h.adapter.DragEnd(r.Context(), id, domain.Status(req.Status)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"id": id, "status": req.Status})
}

// ListOrders serves the sales history with the same in-memory filters the
// dashboard applies to its cache.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")
	origin := q.Get("origin")
	payment := q.Get("payment")
	term := strings.ToLower(strings.TrimSpace(q.Get("q")))

	var out []domain.Order
	for _, o := range h.store.All() {
		if status != "" && string(o.Status) != status {
			continue
		}
		if origin != "" && o.Origin != origin {
			continue
		}
		if payment != "" && o.PaymentMethod != payment {
			continue
		}
		if term != "" &&
			!strings.Contains(strconv.FormatInt(o.ID, 10), term) &&
			!strings.Contains(strings.ToLower(o.Payload.Summary()), term) {
			continue
		}
		out = append(out, o)
	}
	if out == nil {
		out = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": out, "total": len(out)})
}

type orderRequest struct {
	Status        string           `json:"status"`
	TotalPrice    *decimal.Decimal `json:"total_price"`
	Origin        string           `json:"origin"`
	PaymentMethod string           `json:"payment_method"`
	DeliveryType  string           `json:"delivery_type"`
	CustomerID    *uuid.UUID       `json:"customer_id"`
	ProductID     *int64           `json:"product_id"`
	CustomerName  string           `json:"customer_name"`
	CustomerEmail string           `json:"customer_email"`
	CustomerPhone string           `json:"customer_phone"`
	Address       domain.Address   `json:"address"`
	Items         []domain.Item    `json:"items"`
	Notes         string           `json:"notes"`
	Description   string           `json:"description"`
}

func (req orderRequest) toOrder() (domain.Order, error) {
	var o domain.Order

	st := domain.StatusNovoPedido
	if req.Status != "" {
		st = domain.Status(req.Status)
		if !st.Valid() {
			return o, &domain.InvalidStatusError{Status: st}
		}
	}
	o.Status = st

	if req.TotalPrice != nil {
		if req.TotalPrice.IsNegative() {
			return o, errNegativeTotal
		}
		o.TotalPrice = *req.TotalPrice
	}

	// Presence check only: a structured customer name or a legacy description.
	switch {
	case req.CustomerName != "":
		o.Payload = domain.NewStructuredPayload(domain.StructuredPayload{
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
			Address:       req.Address,
			Items:         req.Items,
			Notes:         req.Notes,
		})
	case strings.TrimSpace(req.Description) != "":
		o.Payload = domain.NewLegacyPayload(req.Description)
	default:
		return o, errMissingCustomer
	}

	o.Origin = req.Origin
	o.PaymentMethod = req.PaymentMethod
	o.DeliveryType = req.DeliveryType
	o.CustomerID = req.CustomerID
	o.ProductID = req.ProductID
	return o, nil
}

// CreateOrder backs the new-order wizard. The id comes back from the remote
// store; the board picks the row up via the change notification.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	o, err := req.toOrder()
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := h.writer.InsertOrder(r.Context(), o)
	if err != nil {
		writeError(w, err)
		return
	}
	h.notices.Success("order created")
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// UpdateOrder backs the manual edit modal.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "bad_id", err.Error())
		return
	}
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	o, err := req.toOrder()
	if err != nil {
		writeError(w, err)
		return
	}
	o.ID = id
	if err := h.writer.UpdateOrder(r.Context(), o); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

// DeleteOrder is the explicit delete action that lives outside the board;
// cancellation on the board is a status, not a removal.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "bad_id", err.Error())
		return
	}
	if err := h.writer.DeleteOrder(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.SearchProducts(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]any{"products": products, "total": len(products)})
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers := h.catalog.Customers()
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers, "total": len(customers)})
}

func (h *Handler) GetNotices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"notices": h.notices.Drain()})
}

// ForceRefresh is the manual retry path after a failed refresh.
func (h *Handler) ForceRefresh(w http.ResponseWriter, r *http.Request) {
	h.kicker.Kick()
	writeJSON(w, http.StatusAccepted, map[string]any{"refresh": "requested"})
}

func orderIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, code int, typ, detail string) {
	writeJSON(w, code, map[string]any{
		"type":   typ,
		"title":  http.StatusText(code),
		"status": code,
		"detail": detail,
	})
}

func writeError(w http.ResponseWriter, err error) {
	var (
		notFound    *domain.NotFoundError
		invalid     *domain.InvalidStatusError
		unavailable *domain.RemoteUnavailableError
		writeFail   *domain.RemoteWriteError
	)
	switch {
	case errors.As(err, &notFound):
		writeProblem(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &invalid):
		writeProblem(w, http.StatusUnprocessableEntity, "invalid_status", err.Error())
	case errors.As(err, &unavailable):
		writeProblem(w, http.StatusServiceUnavailable, "remote_unavailable", err.Error())
	case errors.As(err, &writeFail):
		writeProblem(w, http.StatusBadGateway, "remote_write_failed", err.Error())
	case errors.Is(err, errMissingCustomer), errors.Is(err, errNegativeTotal):
		writeProblem(w, http.StatusBadRequest, "invalid_order", err.Error())
	default:
		writeProblem(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

var (
	errMissingCustomer = errors.New("customer name or description is required")
	errNegativeTotal   = errors.New("total price must not be negative")
)
