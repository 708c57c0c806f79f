package domain

import "time"

// ActivityFeedItem es la proyección de una transacción del histórico
// junto con el rank y nombre actuales de su dueño. Vista derivada: se
// reconstruye en cada ciclo, nunca se persiste por separado. Timestamp
// es la fecha de orden de la transacción, tal cual llegó del upstream.
type ActivityFeedItem struct {
	Timestamp      string  `json:"timestamp"`
	PublicID       string  `json:"public_id"`
	PlayerName     string  `json:"player_name"`
	PlayerRank     int     `json:"player_rank"`
	Action         Action  `json:"action"`
	Symbol         string  `json:"symbol"`
	Amount         int     `json:"amount"`
	Price          string  `json:"price"`
	PortfolioValue float64 `json:"portfolio_value"`
}

// CompetitionSnapshot es la unidad publicada: standings completos más el
// feed de actividad, generados en un mismo ciclo. Se publica entera o no
// se publica; nunca hay snapshots parciales.
//
// Invariantes:
//   - cada ActivityFeedItem.PublicID corresponde a un competitor del set
//   - los ranks son una permutación 1..K sin huecos ni duplicados
type CompetitionSnapshot struct {
	Competition  string             `json:"competition"`
	ScrapedAt    time.Time          `json:"scraped_at"`
	Competitors  []RankedCompetitor `json:"competitors"`
	ActivityFeed []ActivityFeedItem `json:"activity_feed"`
}
