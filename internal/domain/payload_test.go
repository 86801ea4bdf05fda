package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomerNameNormalizesBothShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload OrderPayload
		want    string
	}{
		{
			name: "structured",
			payload: NewStructuredPayload(StructuredPayload{
				CustomerName: "Maria Souza",
			}),
			want: "Maria Souza",
		},
		{
			name:    "legacy with marker",
			payload: NewLegacyPayload("Cliente: João Pereira, 2x Camiseta P, PIX"),
			want:    "João Pereira",
		},
		{
			name:    "legacy without marker",
			payload: NewLegacyPayload("Ana Lima, 1x Caneca"),
			want:    "Ana Lima",
		},
		{
			name:    "legacy empty",
			payload: NewLegacyPayload(""),
			want:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.payload.CustomerName())
		})
	}
}

func TestSummary(t *testing.T) {
	structured := NewStructuredPayload(StructuredPayload{
		CustomerName: "Maria",
		Items: []Item{
			{Name: "Camiseta P", Quantity: 2},
			{Name: "Caneca", Quantity: 1},
		},
	})
	assert.Equal(t, "2x Camiseta P, 1x Caneca", structured.Summary())

	noItems := NewStructuredPayload(StructuredPayload{CustomerName: "Maria"})
	assert.Equal(t, "Maria", noItems.Summary())

	legacy := NewLegacyPayload("  Cliente: Ana, 1x Caneca  ")
	assert.Equal(t, "Cliente: Ana, 1x Caneca", legacy.Summary())
}

func TestStatusSet(t *testing.T) {
	for _, st := range BoardStatuses() {
		assert.True(t, st.Valid(), "%s", st)
	}
	assert.False(t, Status("not_a_real_status").Valid())

	assert.True(t, StatusConcluido.Terminal())
	assert.True(t, StatusCancelado.Terminal())
	assert.False(t, StatusEnviado.Terminal())
	assert.False(t, StatusRecuperarCarrinho.Terminal())

	assert.Equal(t, "Recuperar Carrinho", StatusRecuperarCarrinho.Label())
	assert.Equal(t, "whatever", Status("whatever").Label())
}
