package ports

import (
	"context"

	"github.com/adelgado/vsetrack/internal/domain"
)

// Publisher entrega el snapshot al store remoto en tiempo real.
type Publisher interface {
	// Publish reemplaza el snapshot publicado con una única escritura
	// atómica: los suscriptores nunca ven un snapshot a medias.
	Publish(ctx context.Context, snap domain.CompetitionSnapshot) error
}

// Backup escribe la copia local durable del snapshot.
type Backup interface {
	// Write sobreescribe el archivo de backup con el snapshot del ciclo.
	// Se escribe siempre, haya fallado o no el publish remoto.
	Write(ctx context.Context, snap domain.CompetitionSnapshot) error
}
