package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelgado/vsetrack/internal/domain"
)

func feedCompetitors() []domain.RankedCompetitor {
	return []domain.RankedCompetitor{
		{PublicID: "p1", DisplayName: "Jane", Rank: 1, Value: 110000},
		{PublicID: "p2", DisplayName: "John", Rank: 2, Value: 105000},
	}
}

func feedTx(publicID, symbol, date string) domain.Transaction {
	return domain.Transaction{
		PublicID:        publicID,
		Symbol:          symbol,
		OrderDate:       date,
		TransactionDate: date,
		Action:          domain.ActionBuy,
		Amount:          10,
		Price:           "$100.00",
		Status:          domain.StatusCompleted,
	}
}

func TestBuildFeed_NewestFirst(t *testing.T) {
	txs := []domain.Transaction{
		feedTx("p1", "OLD", "7/7/25 10:00a ET"),
		feedTx("p2", "NEW", "7/9/25 10:00a ET"),
		feedTx("p1", "MID", "7/8/25 10:00a ET"),
	}

	feed := buildFeed(txs, feedCompetitors(), 50)
	require.Len(t, feed, 3)
	assert.Equal(t, "NEW", feed[0].Symbol)
	assert.Equal(t, "MID", feed[1].Symbol)
	assert.Equal(t, "OLD", feed[2].Symbol)
}

func TestBuildFeed_JoinsOwnerData(t *testing.T) {
	feed := buildFeed(
		[]domain.Transaction{feedTx("p2", "TSLA", "7/9/25 10:00a ET")},
		feedCompetitors(), 50,
	)

	require.Len(t, feed, 1)
	assert.Equal(t, "John", feed[0].PlayerName)
	assert.Equal(t, 2, feed[0].PlayerRank)
	assert.InDelta(t, 105000, feed[0].PortfolioValue, 0.001)
	assert.Equal(t, "7/9/25 10:00a ET", feed[0].Timestamp)
}

func TestBuildFeed_TimestampIsOrderDate(t *testing.T) {
	tx := feedTx("p1", "TSLA", "7/9/25 10:00a ET")
	tx.OrderDate = "7/9/25 9:55a ET"

	feed := buildFeed([]domain.Transaction{tx}, feedCompetitors(), 50)
	require.Len(t, feed, 1)
	assert.Equal(t, "7/9/25 9:55a ET", feed[0].Timestamp)
}

func TestBuildFeed_SortsByTransactionDate(t *testing.T) {
	// El orden lo manda transaction_date aunque el timestamp mostrado
	// sea el order_date
	older := feedTx("p1", "OLDER", "7/8/25 10:00a ET")
	older.OrderDate = "7/9/25 11:00a ET"
	newer := feedTx("p2", "NEWER", "7/9/25 10:00a ET")
	newer.OrderDate = "7/8/25 9:00a ET"

	feed := buildFeed([]domain.Transaction{older, newer}, feedCompetitors(), 50)
	require.Len(t, feed, 2)
	assert.Equal(t, "NEWER", feed[0].Symbol)
	assert.Equal(t, "OLDER", feed[1].Symbol)
}

func TestBuildFeed_ExcludesCanceled(t *testing.T) {
	canceled := feedTx("p1", "TSLA", "7/9/25 10:45a ET")
	canceled.Status = domain.StatusCanceled
	canceled.Price = "N/A"

	feed := buildFeed([]domain.Transaction{canceled}, feedCompetitors(), 50)
	assert.Empty(t, feed)
}

func TestBuildFeed_SkipsUnknownOwner(t *testing.T) {
	// Invariante: todo item del feed referencia a un competitor del set
	feed := buildFeed(
		[]domain.Transaction{feedTx("ghost", "TSLA", "7/9/25 10:00a ET")},
		feedCompetitors(), 50,
	)
	assert.Empty(t, feed)
}

func TestBuildFeed_Truncates(t *testing.T) {
	var txs []domain.Transaction
	for _, sym := range []string{"A", "B", "C", "D", "E"} {
		txs = append(txs, feedTx("p1", sym, "7/9/25 10:00a ET"))
	}

	feed := buildFeed(txs, feedCompetitors(), 3)
	assert.Len(t, feed, 3)
}

func TestBuildFeed_StableOrderOnEqualTimes(t *testing.T) {
	txs := []domain.Transaction{
		feedTx("p1", "FIRST", "7/9/25 10:00a ET"),
		feedTx("p2", "SECOND", "7/9/25 10:00a ET"),
	}

	first := buildFeed(txs, feedCompetitors(), 50)
	second := buildFeed(txs, feedCompetitors(), 50)

	require.Equal(t, first, second)
	assert.Equal(t, "FIRST", first[0].Symbol) // conserva el orden de entrada
}

func TestBuildFeed_UnparsableDateSortsLast(t *testing.T) {
	txs := []domain.Transaction{
		feedTx("p1", "BADDATE", "whenever"),
		feedTx("p1", "GOOD", "7/9/25 10:00a ET"),
	}

	feed := buildFeed(txs, feedCompetitors(), 50)
	require.Len(t, feed, 2)
	assert.Equal(t, "GOOD", feed[0].Symbol)
	assert.Equal(t, "BADDATE", feed[1].Symbol)
}
