package gateway

import (
	"context"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS customers (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name TEXT NOT NULL,
    email TEXT,
    phone TEXT,
    cpf TEXT,
    tags TEXT[],
    notes TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
    id BIGSERIAL PRIMARY KEY,
    sku TEXT,
    name TEXT NOT NULL,
    description TEXT,
    price NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (price >= 0),
    cost NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (cost >= 0),
    stock_quantity INTEGER NOT NULL DEFAULT 0,
    supplier TEXT,
    category TEXT,
    brand TEXT,
    image_url TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS orders (
    id BIGSERIAL PRIMARY KEY,
    status TEXT NOT NULL DEFAULT 'novo_pedido',
    total_price NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (total_price >= 0),
    origin TEXT,
    payment_method TEXT,
    delivery_type TEXT,
    customer_id UUID REFERENCES customers(id),
    product_id BIGINT REFERENCES products(id),
    customer_name TEXT,
    customer_email TEXT,
    customer_phone TEXT,
    address JSONB,
    items JSONB,
    notes TEXT,
    description TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id);
`

// EnsureSchema creates the tables on first run. The status column is TEXT on
// purpose: the data layer accepts any assignment, legality is the board's
// concern.
func (g *Gateway) EnsureSchema(ctx context.Context) error {
	if _, err := g.conn.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
