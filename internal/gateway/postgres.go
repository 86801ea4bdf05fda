package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"orderboard/internal/common/db"
	"orderboard/internal/common/logger"
	"orderboard/internal/domain"
)

// Gateway is the only component that talks to the remote datastore. Every
// error that crosses it is converted to the domain taxonomy; raw pgx errors
// never reach the board.
type Gateway struct {
	conn *db.Conn
	feed *ChangeFeed
	lg   *logger.Logger
}

func New(conn *db.Conn, feed *ChangeFeed, lg *logger.Logger) *Gateway {
	return &Gateway{conn: conn, feed: feed, lg: lg}
}

const orderColumns = `id, status, total_price::text, origin, payment_method, delivery_type,
	customer_id::text, product_id, customer_name, customer_email, customer_phone,
	address, items, notes, description, created_at, updated_at`

// FetchAll returns every order visible to the principal, newest first. On any
// failure the caller keeps whatever it is currently displaying.
func (g *Gateway) FetchAll(ctx context.Context) ([]domain.Order, error) {
	rows, err := g.conn.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id DESC`)
	if err != nil {
		return nil, &domain.RemoteUnavailableError{Op: "fetch_orders", Err: err}
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, &domain.RemoteUnavailableError{Op: "fetch_orders", Err: err}
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.RemoteUnavailableError{Op: "fetch_orders", Err: err}
	}
	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(r rowScanner) (domain.Order, error) {
	var (
		o           domain.Order
		status      string
		total       string
		origin      *string
		payment     *string
		delivery    *string
		customerID  *string
		productID   *int64
		custName    *string
		custEmail   *string
		custPhone   *string
		addressJSON []byte
		itemsJSON   []byte
		notes       *string
		description *string
	)
	err := r.Scan(&o.ID, &status, &total, &origin, &payment, &delivery,
		&customerID, &productID, &custName, &custEmail, &custPhone,
		&addressJSON, &itemsJSON, &notes, &description, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("scan order: %w", err)
	}

	o.Status = domain.Status(status)
	o.TotalPrice, err = decimal.NewFromString(total)
	if err != nil {
		return domain.Order{}, fmt.Errorf("parse total_price: %w", err)
	}
	o.Origin = deref(origin)
	o.PaymentMethod = deref(payment)
	o.DeliveryType = deref(delivery)
	o.ProductID = productID
	if customerID != nil {
		id, err := uuid.Parse(*customerID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("parse customer_id: %w", err)
		}
		o.CustomerID = &id
	}

	// Legacy rows keep everything in the description column; structured rows
	// have at least a customer name.
	if custName == nil && description != nil {
		o.Payload = domain.NewLegacyPayload(*description)
		return o, nil
	}

	sp := domain.StructuredPayload{
		CustomerName:  deref(custName),
		CustomerEmail: deref(custEmail),
		CustomerPhone: deref(custPhone),
		Notes:         deref(notes),
	}
	if len(addressJSON) > 0 {
		if err := json.Unmarshal(addressJSON, &sp.Address); err != nil {
			return domain.Order{}, fmt.Errorf("decode address: %w", err)
		}
	}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &sp.Items); err != nil {
			return domain.Order{}, fmt.Errorf("decode items: %w", err)
		}
	}
	o.Payload = domain.NewStructuredPayload(sp)
	return o, nil
}

// PersistStatusChange updates exactly the status field (plus the row's
// updated_at, which same-status moves rely on). A vanished row is a write
// failure too: the optimistic apply must be rolled back.
func (g *Gateway) PersistStatusChange(ctx context.Context, orderID int64, status domain.Status) error {
	tag, err := g.conn.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), orderID)
	if err != nil {
		return &domain.RemoteWriteError{OrderID: orderID, Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &domain.RemoteWriteError{OrderID: orderID, Err: errors.New("order row no longer exists")}
	}
	g.publish(ctx, "orders", "UPDATE", orderID)
	return nil
}

// InsertOrder creates the row and returns the id Postgres assigned.
func (g *Gateway) InsertOrder(ctx context.Context, o domain.Order) (int64, error) {
	cols, err := payloadColumns(o.Payload)
	if err != nil {
		return 0, &domain.RemoteWriteError{Err: err}
	}
	var id int64
	err = g.conn.QueryRow(ctx, `
		INSERT INTO orders
			(status, total_price, origin, payment_method, delivery_type,
			 customer_id, product_id, customer_name, customer_email, customer_phone,
			 address, items, notes, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
		RETURNING id`,
		string(o.Status), o.TotalPrice.String(), nilEmpty(o.Origin), nilEmpty(o.PaymentMethod),
		nilEmpty(o.DeliveryType), uuidArg(o.CustomerID), o.ProductID,
		cols.name, cols.email, cols.phone, cols.address, cols.items, cols.notes, cols.description,
	).Scan(&id)
	if err != nil {
		return 0, &domain.RemoteWriteError{Err: err}
	}
	g.publish(ctx, "orders", "INSERT", id)
	return id, nil
}

// UpdateOrder rewrites the mutable fields of an existing order (the edit
// modal path; drags go through PersistStatusChange).
func (g *Gateway) UpdateOrder(ctx context.Context, o domain.Order) error {
	cols, err := payloadColumns(o.Payload)
	if err != nil {
		return &domain.RemoteWriteError{OrderID: o.ID, Err: err}
	}
	tag, err := g.conn.Exec(ctx, `
		UPDATE orders SET
			status = $1, total_price = $2, origin = $3, payment_method = $4,
			delivery_type = $5, customer_id = $6, product_id = $7,
			customer_name = $8, customer_email = $9, customer_phone = $10,
			address = $11, items = $12, notes = $13, description = $14,
			updated_at = now()
		WHERE id = $15`,
		string(o.Status), o.TotalPrice.String(), nilEmpty(o.Origin), nilEmpty(o.PaymentMethod),
		nilEmpty(o.DeliveryType), uuidArg(o.CustomerID), o.ProductID,
		cols.name, cols.email, cols.phone, cols.address, cols.items, cols.notes, cols.description,
		o.ID)
	if err != nil {
		return &domain.RemoteWriteError{OrderID: o.ID, Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &domain.RemoteWriteError{OrderID: o.ID, Err: errors.New("order row no longer exists")}
	}
	g.publish(ctx, "orders", "UPDATE", o.ID)
	return nil
}

// DeleteOrder removes a row. The board itself never calls this; cancellation
// is a status. It backs the explicit delete action of the sales history.
func (g *Gateway) DeleteOrder(ctx context.Context, orderID int64) error {
	tag, err := g.conn.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return &domain.RemoteWriteError{OrderID: orderID, Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &domain.RemoteWriteError{OrderID: orderID, Err: errors.New("order row no longer exists")}
	}
	g.publish(ctx, "orders", "DELETE", orderID)
	return nil
}

// FetchProducts loads the catalog; read-mostly from the board's perspective.
func (g *Gateway) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := g.conn.Query(ctx, `
		SELECT id, sku, name, description, price::text, cost::text, stock_quantity,
		       supplier, category, brand, image_url, created_at
		FROM products ORDER BY id`)
	if err != nil {
		return nil, &domain.RemoteUnavailableError{Op: "fetch_products", Err: err}
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			p     domain.Product
			sku   *string
			descr *string
			price string
			cost  string
			sup   *string
			cat   *string
			brand *string
			img   *string
		)
		if err := rows.Scan(&p.ID, &sku, &p.Name, &descr, &price, &cost, &p.StockQuantity,
			&sup, &cat, &brand, &img, &p.CreatedAt); err != nil {
			return nil, &domain.RemoteUnavailableError{Op: "fetch_products", Err: err}
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, &domain.RemoteUnavailableError{Op: "fetch_products", Err: err}
		}
		if p.Cost, err = decimal.NewFromString(cost); err != nil {
			return nil, &domain.RemoteUnavailableError{Op: "fetch_products", Err: err}
		}
		p.SKU = deref(sku)
		p.Description = deref(descr)
		p.Supplier = deref(sup)
		p.Category = deref(cat)
		p.Brand = deref(brand)
		p.ImageURL = deref(img)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.RemoteUnavailableError{Op: "fetch_products", Err: err}
	}
	return products, nil
}

// FetchCustomers loads the CRM list; read-only here.
func (g *Gateway) FetchCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := g.conn.Query(ctx, `
		SELECT id::text, name, email, phone, cpf, tags, notes, created_at, updated_at
		FROM customers ORDER BY name`)
	if err != nil {
		return nil, &domain.RemoteUnavailableError{Op: "fetch_customers", Err: err}
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var (
			c     domain.Customer
			id    string
			email *string
			phone *string
			cpf   *string
			tags  []string
			notes *string
		)
		if err := rows.Scan(&id, &c.Name, &email, &phone, &cpf, &tags, &notes,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, &domain.RemoteUnavailableError{Op: "fetch_customers", Err: err}
		}
		if c.ID, err = uuid.Parse(id); err != nil {
			return nil, &domain.RemoteUnavailableError{Op: "fetch_customers", Err: err}
		}
		c.Email = deref(email)
		c.Phone = deref(phone)
		c.CPF = deref(cpf)
		c.Tags = tags
		c.Notes = deref(notes)
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.RemoteUnavailableError{Op: "fetch_customers", Err: err}
	}
	return customers, nil
}

func (g *Gateway) publish(ctx context.Context, table, op string, orderID int64) {
	if g.feed == nil {
		return
	}
	g.feed.Publish(ctx, Event{
		ID:      uuid.NewString(),
		Table:   table,
		Op:      op,
		OrderID: orderID,
		At:      time.Now().UTC(),
	})
}

type payloadCols struct {
	name, email, phone, notes, description *string
	address, items                         []byte
}

func payloadColumns(p domain.OrderPayload) (payloadCols, error) {
	var cols payloadCols
	if p.IsLegacy() {
		text := p.LegacyText
		cols.description = &text
		return cols, nil
	}
	sp := p.Structured
	cols.name = &sp.CustomerName
	cols.email = nilEmpty(sp.CustomerEmail)
	cols.phone = nilEmpty(sp.CustomerPhone)
	cols.notes = nilEmpty(sp.Notes)
	var err error
	if cols.address, err = json.Marshal(sp.Address); err != nil {
		return cols, fmt.Errorf("encode address: %w", err)
	}
	if len(sp.Items) > 0 {
		if cols.items, err = json.Marshal(sp.Items); err != nil {
			return cols, fmt.Errorf("encode items: %w", err)
		}
	}
	return cols, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nilEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func uuidArg(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
