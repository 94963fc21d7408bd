package usecases_port

import (
	"context"

	"console-service/internal/core/domain"
	"console-service/internal/core/store"

	"github.com/google/uuid"
)

type RefreshPropertiesUseCasePort interface {
	// Execute применяет транзишены дескриптора (или без них - повторяет
	// текущий запрос) и синхронизирует кэш с удаленным сервисом.
	Execute(ctx context.Context, userID uuid.UUID, transitions ...domain.QueryTransition) (*store.Snapshot[domain.OwnedProperty], error)
}
