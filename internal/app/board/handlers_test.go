package board

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderboard/internal/catalog"
	"orderboard/internal/common/logger"
	"orderboard/internal/domain"
	"orderboard/internal/kanban"
)

type stubRemote struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubRemote) PersistStatusChange(context.Context, int64, domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

type stubWriter struct {
	nextID  int64
	inserts []domain.Order
	deletes []int64
	err     error
}

func (s *stubWriter) InsertOrder(_ context.Context, o domain.Order) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.nextID++
	s.inserts = append(s.inserts, o)
	return s.nextID, nil
}

func (s *stubWriter) UpdateOrder(_ context.Context, o domain.Order) error { return s.err }

func (s *stubWriter) DeleteOrder(_ context.Context, id int64) error {
	s.deletes = append(s.deletes, id)
	return s.err
}

type stubKicker struct{ kicks int }

func (s *stubKicker) Kick() { s.kicks++ }

type env struct {
	store   *kanban.Store
	coord   *kanban.Coordinator
	writer  *stubWriter
	kicker  *stubKicker
	notices *Notices
	router  http.Handler
}

func newEnv(t *testing.T, remote *stubRemote, jwtSecret string) *env {
	t.Helper()
	lg := logger.New("test")
	store := kanban.NewStore()
	notices := NewNotices()
	coord := kanban.NewCoordinator(store, remote, notices, lg)
	adapter := kanban.NewAdapter(store, coord)
	writer := &stubWriter{}
	kicker := &stubKicker{}
	cat := catalog.New()
	cat.ReplaceProducts([]domain.Product{{ID: 1, Name: "Camiseta", SKU: "CAM-001"}})

	h := NewHandler(store, adapter, cat, writer, kicker, notices, lg)
	return &env{
		store:   store,
		coord:   coord,
		writer:  writer,
		kicker:  kicker,
		notices: notices,
		router:  NewRouter(h, "", jwtSecret),
	}
}

func seedOrders(store *kanban.Store) {
	store.ReplaceAll([]domain.Order{
		{ID: 3, Status: domain.StatusEnviado, Origin: "whatsapp",
			Payload: domain.NewLegacyPayload("Cliente: Ana, 1x Caneca")},
		{ID: 2, Status: domain.StatusASeparar, Origin: "ecommerce", PaymentMethod: "pix",
			Payload: domain.NewLegacyPayload("Cliente: Maria, 2x Camiseta")},
		{ID: 1, Status: domain.StatusNovoPedido, Origin: "ecommerce", PaymentMethod: "credit_card",
			Payload: domain.NewLegacyPayload("Cliente: João, 1x Boné")},
	})
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetBoardReturnsAllColumns(t *testing.T) {
	e := newEnv(t, &stubRemote{}, "")
	seedOrders(e.store)

	rec := do(t, e.router, http.MethodGet, "/api/board", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Columns []kanban.Column `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Columns, 8)
	assert.Equal(t, domain.StatusNovoPedido, resp.Columns[0].Status)
	assert.Len(t, resp.Columns[0].Orders, 1)
}

func TestMoveOrderAccepted(t *testing.T) {
	remote := &stubRemote{}
	e := newEnv(t, remote, "")
	seedOrders(e.store)

	rec := do(t, e.router, http.MethodPost, "/api/orders/1/status", `{"status":"a_separar"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	// Optimistic: visible before the remote write settles.
	got, _ := e.store.Get(1)
	assert.Equal(t, domain.StatusASeparar, got.Status)

	e.coord.Wait()
	assert.Equal(t, 1, remote.calls)
}

func TestMoveOrderInvalidStatus(t *testing.T) {
	e := newEnv(t, &stubRemote{}, "")
	seedOrders(e.store)

	rec := do(t, e.router, http.MethodPost, "/api/orders/1/status", `{"status":"not_a_real_status"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	got, _ := e.store.Get(1)
	assert.Equal(t, domain.StatusNovoPedido, got.Status)
}

func TestMoveOrderUnknownID(t *testing.T) {
	e := newEnv(t, &stubRemote{}, "")
	seedOrders(e.store)

	rec := do(t, e.router, http.MethodPost, "/api/orders/9999999/status", `{"status":"a_separar"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrdersFilters(t *testing.T) {
	e := newEnv(t, &stubRemote{}, "")
	seedOrders(e.store)

	var resp struct {
		Orders []domain.Order `json:"orders"`
		Total  int            `json:"total"`
	}

	rec := do(t, e.router, http.MethodGet, "/api/orders?origin=ecommerce", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)

	rec = do(t, e.router, http.MethodGet, "/api/orders?status=enviado", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, int64(3), resp.Orders[0].ID)

	rec = do(t, e.router, http.MethodGet, "/api/orders?q=camiseta", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, int64(2), resp.Orders[0].ID)

	rec = do(t, e.router, http.MethodGet, "/api/orders?payment=pix&origin=whatsapp", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.Total)
}

func TestCreateOrderRequiresCustomer(t *testing.T) {
	e := newEnv(t, &stubRemote{}, "")

	rec := do(t, e.router, http.MethodPost, "/api/orders", `{"total_price":"10.00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, e.writer.inserts)
}

func TestCreateOrderStructured(t *testing.T) {
	e := newEnv(t, &stubRemote{}, "")

	body := `{
		"customer_name": "Maria Souza",
		"total_price": "59.90",
		"origin": "ecommerce",
		"payment_method": "pix",
		"items": [{"name": "Camiseta P", "quantity": 2}]
	}`
	rec := do(t, e.router, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, e.writer.inserts, 1)
	created := e.writer.inserts[0]
	assert.Equal(t, domain.StatusNovoPedido, created.Status)
	assert.Equal(t, "Maria Souza", created.CustomerName())
	assert.Equal(t, "59.9", created.TotalPrice.String())
	assert.False(t, created.Payload.IsLegacy())
}

func TestCreateOrderRejectsNegativeTotal(t *testing.T) {
	e := newEnv(t, &stubRemote{}, "")

	rec := do(t, e.router, http.MethodPost, "/api/orders",
		`{"customer_name":"Maria","total_price":"-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteOrder(t *testing.T) {
	e := newEnv(t, &stubRemote{}, "")
	rec := do(t, e.router, http.MethodDelete, "/api/orders/7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{7}, e.writer.deletes)
}

func TestProductsSearchEndpoint(t *testing.T) {
	e := newEnv(t, &stubRemote{}, "")

	rec := do(t, e.router, http.MethodGet, "/api/products?q=cam-001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
}

func TestForceRefreshKicks(t *testing.T) {
	e := newEnv(t, &stubRemote{}, "")
	rec := do(t, e.router, http.MethodPost, "/api/refresh", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, e.kicker.kicks)
}

func TestNoticesDrainOnRead(t *testing.T) {
	e := newEnv(t, &stubRemote{}, "")
	e.notices.Error("could not update order, change reverted")

	var resp struct {
		Notices []Notice `json:"notices"`
	}
	rec := do(t, e.router, http.MethodGet, "/api/notices", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Notices, 1)
	assert.Equal(t, "error", resp.Notices[0].Level)

	rec = do(t, e.router, http.MethodGet, "/api/notices", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Notices)
}

func TestAuthRequiredWhenSecretConfigured(t *testing.T) {
	e := newEnv(t, &stubRemote{}, "test-secret")

	rec := do(t, e.router, http.MethodGet, "/api/board", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
