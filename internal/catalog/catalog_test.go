package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderboard/internal/domain"
)

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Camiseta Básica", SKU: "CAM-001"},
		{ID: 2, Name: "Caneca Esmaltada", SKU: "CAN-010"},
		{ID: 3, Name: "Boné Trucker", SKU: "BON-002"},
	}
}

func TestSearchProductsMatchesNameOrSKU(t *testing.T) {
	c := New()
	c.ReplaceProducts(testProducts())

	byName := c.SearchProducts("camiseta")
	require.Len(t, byName, 1)
	assert.Equal(t, int64(1), byName[0].ID)

	bySKU := c.SearchProducts("can-010")
	require.Len(t, bySKU, 1)
	assert.Equal(t, int64(2), bySKU[0].ID)

	all := c.SearchProducts("")
	assert.Len(t, all, 3)

	none := c.SearchProducts("inexistente")
	assert.Empty(t, none)
}

func TestReplaceProductsCopies(t *testing.T) {
	c := New()
	in := testProducts()
	c.ReplaceProducts(in)
	in[0].Name = "mutated"

	got := c.Products()
	require.Len(t, got, 3)
	assert.Equal(t, "Camiseta Básica", got[0].Name)
}
