package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is one customer purchase transaction. IDs are assigned by Postgres on
// insert and never reused. CustomerID and ProductID are optional: older rows
// carry the customer denormalized inside the payload instead of a foreign key,
// and the sync layer must not assume either representation.
type Order struct {
	ID            int64           `json:"id"`
	Status        Status          `json:"status"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Origin        string          `json:"origin,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	DeliveryType  string          `json:"delivery_type,omitempty"`
	Payload       OrderPayload    `json:"payload"`
	CustomerID    *uuid.UUID      `json:"customer_id,omitempty"`
	ProductID     *int64          `json:"product_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CustomerName is a convenience passthrough to the payload accessor, used by
// the sales history listing.
func (o Order) CustomerName() string { return o.Payload.CustomerName() }
