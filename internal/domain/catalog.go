package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. Read-mostly: the board never mutates
// products, it only joins against them for display and search.
type Product struct {
	ID            int64           `json:"id"`
	SKU           string          `json:"sku,omitempty"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	StockQuantity int             `json:"stock_quantity"`
	Supplier      string          `json:"supplier,omitempty"`
	Category      string          `json:"category,omitempty"`
	Brand         string          `json:"brand,omitempty"`
	ImageURL      string          `json:"image_url,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Customer is an optional related entity; orders may reference one by id or
// carry the customer denormalized in the payload.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CPF       string    `json:"cpf,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
