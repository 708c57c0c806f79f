package pipeline

import (
	"sort"
	"time"

	"github.com/adelgado/vsetrack/internal/domain"
)

const defaultFeedMax = 50

// buildFeed proyecta transacciones en items de feed, uniéndolas con el
// rank, nombre y valor actuales de su dueño. El timestamp mostrado es
// el order_date de la transacción.
//
// Las canceladas se excluyen del feed (siguen en el log). El orden es
// transaction_date descendente; los empates conservan el orden de
// entrada, así dos ciclos con los mismos inputs producen el mismo feed
// byte a byte. El feed se trunca a max items para acotar el payload
// publicado.
func buildFeed(txs []domain.Transaction, competitors []domain.RankedCompetitor, max int) []domain.ActivityFeedItem {
	if max <= 0 {
		max = defaultFeedMax
	}

	byID := make(map[string]domain.RankedCompetitor, len(competitors))
	for _, c := range competitors {
		byID[c.PublicID] = c
	}

	type datedItem struct {
		item domain.ActivityFeedItem
		at   time.Time
	}

	items := make([]datedItem, 0, len(txs))
	for _, tx := range txs {
		if tx.Status == domain.StatusCanceled {
			continue
		}
		owner, ok := byID[tx.PublicID]
		if !ok {
			// Invariante del snapshot: todo item del feed referencia a
			// un competitor del set. Sin dueño no hay item.
			continue
		}

		at, err := domain.ParseMarketTime(tx.TransactionDate)
		if err != nil {
			// Fecha ilegible: el item se conserva pero ordena al final.
			at = time.Time{}
		}

		items = append(items, datedItem{
			at: at,
			item: domain.ActivityFeedItem{
				Timestamp:      tx.OrderDate,
				PublicID:       tx.PublicID,
				PlayerName:     owner.DisplayName,
				PlayerRank:     owner.Rank,
				Action:         tx.Action,
				Symbol:         tx.Symbol,
				Amount:         tx.Amount,
				Price:          tx.Price,
				PortfolioValue: owner.Value,
			},
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].at.After(items[j].at)
	})

	if len(items) > max {
		items = items[:max]
	}

	feed := make([]domain.ActivityFeedItem, len(items))
	for i, d := range items {
		feed[i] = d.item
	}
	return feed
}
