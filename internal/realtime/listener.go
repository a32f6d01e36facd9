package realtime

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Channel is the Postgres notification channel fed by the schema triggers.
// The notification payload is the name of the changed table.
const Channel = "campus_changes"

// Listener bridges Postgres LISTEN/NOTIFY into the Hub, so changes made by
// any process (not just this one) reach live queries.
type Listener struct {
	pool *pgxpool.Pool
	hub  *Hub
}

// NewListener constructs a Listener.
func NewListener(pool *pgxpool.Pool, hub *Hub) *Listener {
	return &Listener{pool: pool, hub: hub}
}

// Run listens for change notifications until the context is cancelled. The
// listening connection is re-established after failures.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn().Err(err).Msg("notification listener dropped, reconnecting")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(2 * time.Second):
			}
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return err
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.hub.Publish(notification.Payload)
	}
}
