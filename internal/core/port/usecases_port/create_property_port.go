package usecases_port

import (
	"context"

	"console-service/internal/core/domain"

	"github.com/google/uuid"
)

type CreatePropertyUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, draft domain.PropertyDraft) (*domain.OwnedProperty, error)
}
