package port

import "context"

// EventListenerPort - входящий порт для слушателей внешних событий.
type EventListenerPort interface {
	Start(ctx context.Context) error
	Close() error
}
