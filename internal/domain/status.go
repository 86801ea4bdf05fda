package domain

// Status is the lifecycle state of an order. The set is closed: the board only
// ever offers these columns, and MoveOrder rejects anything else before the
// store is touched. Transition legality between members is enforced by the UI
// layer, not the data layer.
type Status string

const (
	StatusNovoPedido        Status = "novo_pedido"
	StatusASeparar          Status = "a_separar"
	StatusSeparado          Status = "separado"
	StatusAEnviar           Status = "a_enviar"
	StatusEnviado           Status = "enviado"
	StatusConcluido         Status = "concluido"
	StatusCancelado         Status = "cancelado"
	StatusRecuperarCarrinho Status = "recuperar_carrinho"
)

// boardColumns is the fixed column order of the kanban board.
var boardColumns = []Status{
	StatusNovoPedido,
	StatusASeparar,
	StatusSeparado,
	StatusAEnviar,
	StatusEnviado,
	StatusConcluido,
	StatusCancelado,
	StatusRecuperarCarrinho,
}

var statusLabels = map[Status]string{
	StatusNovoPedido:        "Novo Pedido",
	StatusASeparar:          "A Separar",
	StatusSeparado:          "Separado",
	StatusAEnviar:           "A Enviar",
	StatusEnviado:           "Enviado",
	StatusConcluido:         "Concluído",
	StatusCancelado:         "Cancelado",
	StatusRecuperarCarrinho: "Recuperar Carrinho",
}

// BoardStatuses returns the column order. The returned slice is a copy.
func BoardStatuses() []Status {
	out := make([]Status, len(boardColumns))
	copy(out, boardColumns)
	return out
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Terminal reports whether the status has no outgoing transitions on the
// board. Terminal cards are never offered as drag sources.
func (s Status) Terminal() bool {
	return s == StatusConcluido || s == StatusCancelado
}

// Label returns the human-readable (pt-BR) column title.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Status) String() string { return string(s) }
