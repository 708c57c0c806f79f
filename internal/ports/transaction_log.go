package ports

import (
	"context"

	"github.com/adelgado/vsetrack/internal/domain"
)

// TransactionLog persiste el historial append-only de transacciones y el
// último portfolio bueno de cada participante.
type TransactionLog interface {
	// RecordTransactions inserta las transacciones que no estaban ya en
	// el log (por clave de identidad) y devuelve exactamente esas.
	// Las canceladas también se registran: el log es el histórico
	// completo, el filtrado es cosa del feed.
	RecordTransactions(ctx context.Context, txs []domain.Transaction) ([]domain.Transaction, error)

	// RecentTransactions devuelve hasta limit transacciones no
	// canceladas, las de descubrimiento más reciente primero. Es la
	// fuente del feed publicado: el feed refleja el histórico conocido,
	// no solo el delta del ciclo, así un ciclo sin actividad nueva
	// publica el mismo feed que el anterior.
	RecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)

	// SavePortfolio guarda el último snapshot bueno del participante,
	// usado como fallback cuando un fetch posterior falle.
	SavePortfolio(ctx context.Context, snap domain.PortfolioSnapshot) error

	// LastPortfolio devuelve el último snapshot guardado, con ok=false
	// si el participante nunca tuvo un fetch exitoso.
	LastPortfolio(ctx context.Context, publicID string) (domain.PortfolioSnapshot, bool, error)

	// Close cierra la base de datos limpiamente.
	Close() error
}
