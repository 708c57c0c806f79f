package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/adelgado/vsetrack/internal/domain"
	"github.com/adelgado/vsetrack/internal/ports"
)

var _ ports.Publisher = (*RedisPublisher)(nil)

// RedisPublisher publica el snapshot en el store en tiempo real: un SET
// del documento completo bajo una única key (reemplazo atómico, los
// suscriptores nunca ven un snapshot a medias) más un PUBLISH en el
// canal para avisar del refresh.
type RedisPublisher struct {
	client  *redis.Client
	key     string
	channel string
}

// NewRedisPublisher crea el publisher sobre un client ya configurado.
// channel vacío desactiva la notificación pub/sub.
func NewRedisPublisher(client *redis.Client, key, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, key: key, channel: channel}
}

// Publish serializa y reemplaza el snapshot publicado.
func (p *RedisPublisher) Publish(ctx context.Context, snap domain.CompetitionSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("publish.Publish: marshal snapshot: %w", err)
	}

	if err := p.client.Set(ctx, p.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("publish.Publish: set %s: %v: %w", p.key, err, domain.ErrPublish)
	}

	if p.channel != "" {
		// El aviso forma parte del contrato de publicación: si se
		// pierde, los suscriptores no se enteran del refresh aunque la
		// key haya quedado escrita, y el ciclo se reporta degradado.
		if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
			return fmt.Errorf("publish.Publish: notify %s: %v: %w", p.channel, err, domain.ErrPublish)
		}
	}
	return nil
}
