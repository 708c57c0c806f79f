package ports

import (
	"context"

	"github.com/adelgado/vsetrack/internal/domain"
)

// PerformanceProvider obtiene el último estado del portfolio de un
// participante desde el API de estadísticas del upstream.
type PerformanceProvider interface {
	// FetchPortfolio devuelve el punto más reciente de la serie de
	// performance. Una serie vacía produce un snapshot en cero con
	// Stale activo, no un error.
	FetchPortfolio(ctx context.Context, publicID string) (domain.PortfolioSnapshot, error)
}

// HistoryProvider obtiene el historial de transacciones de un
// participante parseando la página de portfolio del upstream.
type HistoryProvider interface {
	// FetchTransactionHistory devuelve las transacciones parseadas y los
	// warnings de filas que no se pudieron interpretar. Un warning nunca
	// aborta el parseo del resto de filas.
	FetchTransactionHistory(ctx context.Context, publicID string) ([]domain.Transaction, []string, error)
}
