package port

import (
	"context"

	"github.com/google/uuid"
)

// Виды событий синхронизации, которые видит view.
const (
	SyncEventQueryFailed    = "query_failed"
	SyncEventMutationFailed = "mutation_failed"
)

// SyncEvent - одно событие для notification surface. На каждую неудачу
// ядро отправляет ровно одну человекочитаемую строку; как ее показать
// (тост, баннер) - решает view.
type SyncEvent struct {
	Type       string    `json:"type"`
	Collection string    `json:"collection"`
	UserID     uuid.UUID `json:"user_id"`
	Message    string    `json:"message"`
}

// NotifierPort - исходящий порт для доставки событий синхронизации view-слою.
type NotifierPort interface {
	Notify(ctx context.Context, event SyncEvent)
}
