package domain

import (
	"fmt"
	"strings"
)

// Address is the structured delivery address of an order payload.
type Address struct {
	Street       string `json:"street,omitempty"`
	Number       string `json:"number,omitempty"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	ZipCode      string `json:"zip_code,omitempty"`
}

// Item is one line of a structured order payload.
type Item struct {
	ProductID int64  `json:"product_id,omitempty"`
	Name      string `json:"name"`
	SKU       string `json:"sku,omitempty"`
	Quantity  int    `json:"quantity"`
}

// StructuredPayload is the modern row shape: customer, address and items
// stored as real columns/JSON.
type StructuredPayload struct {
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email,omitempty"`
	CustomerPhone string  `json:"customer_phone,omitempty"`
	Address       Address `json:"address"`
	Items         []Item  `json:"items,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// OrderPayload is a tagged union over the two row shapes that coexist in the
// orders table: structured customer/address/items, or a legacy free-text
// description ("Cliente: Maria, 2x Camiseta P, ..."). Exactly one side is set.
// Accessors normalize both into the same read shape so callers never parse
// text themselves.
type OrderPayload struct {
	Structured *StructuredPayload `json:"structured,omitempty"`
	LegacyText string             `json:"legacy_text,omitempty"`
}

func NewStructuredPayload(p StructuredPayload) OrderPayload {
	return OrderPayload{Structured: &p}
}

func NewLegacyPayload(text string) OrderPayload {
	return OrderPayload{LegacyText: text}
}

func (p OrderPayload) IsLegacy() bool { return p.Structured == nil }

// CustomerName returns the customer name from either representation. For
// legacy text the first comma-separated segment is taken and a leading
// "Cliente:" marker stripped.
func (p OrderPayload) CustomerName() string {
	if p.Structured != nil {
		return p.Structured.CustomerName
	}
	head, _, _ := strings.Cut(p.LegacyText, ",")
	head = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(head), "Cliente:"))
	return head
}

// Summary returns a one-line description of the order contents, for list rows
// and search.
func (p OrderPayload) Summary() string {
	if p.Structured == nil {
		return strings.TrimSpace(p.LegacyText)
	}
	if len(p.Structured.Items) == 0 {
		return p.Structured.CustomerName
	}
	parts := make([]string, 0, len(p.Structured.Items))
	for _, it := range p.Structured.Items {
		parts = append(parts, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
	}
	return strings.Join(parts, ", ")
}
