package domain

import "time"

// Participant es un inscrito en la competición. Datos de referencia
// inmutables cargados desde la configuración: el pipeline nunca los muta.
type Participant struct {
	PublicID    string `json:"public_id" yaml:"public_id"`
	DisplayName string `json:"name" yaml:"display_name"`
}

// PortfolioSnapshot es el último valor observado del portfolio de un
// participante. Se reemplaza entero en cada ciclo, nunca se acumula.
type PortfolioSnapshot struct {
	PublicID      string    `json:"public_id"`
	Value         float64   `json:"portfolio_value"`
	ReturnPercent float64   `json:"return_percentage"`
	ReturnDollars float64   `json:"return_dollars"`
	ObservedAt    time.Time `json:"observed_at"`
	// Stale indica que el fetch de este ciclo falló y los valores
	// provienen del último snapshot conocido (o son cero).
	Stale bool `json:"stale,omitempty"`
}

// RankedCompetitor es un participante con su portfolio y rank asignados
// en el ciclo actual. El rank se recalcula en cada ciclo; rank 1 es el
// portfolio de mayor valor.
type RankedCompetitor struct {
	PublicID      string    `json:"public_id"`
	DisplayName   string    `json:"name"`
	Rank          int       `json:"rank"`
	Value         float64   `json:"portfolio_value"`
	ReturnPercent float64   `json:"return_percentage"`
	ReturnDollars float64   `json:"return_dollars"`
	Stale         bool      `json:"stale,omitempty"`
	LastUpdated   time.Time `json:"last_updated"`
	// Transactions es el historial observado este ciclo, incluyendo
	// órdenes canceladas. El feed filtra las canceladas por su cuenta.
	Transactions []Transaction `json:"transactions"`
}

// NewCompetitor combina la referencia del participante con su snapshot
// de portfolio. El rank queda en cero hasta que Rank() lo asigne.
func NewCompetitor(p Participant, ps PortfolioSnapshot, txs []Transaction) RankedCompetitor {
	return RankedCompetitor{
		PublicID:      p.PublicID,
		DisplayName:   p.DisplayName,
		Value:         ps.Value,
		ReturnPercent: ps.ReturnPercent,
		ReturnDollars: ps.ReturnDollars,
		Stale:         ps.Stale,
		LastUpdated:   ps.ObservedAt,
		Transactions:  txs,
	}
}
