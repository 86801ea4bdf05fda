package catalog

import (
	"strings"
	"sync"

	"orderboard/internal/domain"
)

// Catalog caches products and customers for a session. Read-mostly: it is
// refilled on every full refresh and queried by the listing and search
// endpoints, but never mutated by the board.
type Catalog struct {
	mu        sync.RWMutex
	products  []domain.Product
	customers []domain.Customer
}

func New() *Catalog { return &Catalog{} }

func (c *Catalog) ReplaceProducts(products []domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = make([]domain.Product, len(products))
	copy(c.products, products)
}

func (c *Catalog) ReplaceCustomers(customers []domain.Customer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customers = make([]domain.Customer, len(customers))
	copy(c.customers, customers)
}

func (c *Catalog) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Customers() []domain.Customer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Customer, len(c.customers))
	copy(out, c.customers)
	return out
}

// SearchProducts matches the term against product name or SKU,
// case-insensitively. An empty term matches everything.
func (c *Catalog) SearchProducts(term string) []domain.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Product, 0)
	for _, p := range c.products {
		if term == "" ||
			strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.SKU), term) {
			out = append(out, p)
		}
	}
	return out
}
