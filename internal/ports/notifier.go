package ports

import (
	"context"

	"github.com/adelgado/vsetrack/internal/domain"
)

// Notifier presenta el resultado de un ciclo al operador.
type Notifier interface {
	// Notify muestra los standings y la actividad reciente del snapshot.
	Notify(ctx context.Context, snap domain.CompetitionSnapshot) error
}
