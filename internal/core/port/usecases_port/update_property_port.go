package usecases_port

import (
	"context"

	"console-service/internal/core/domain"

	"github.com/google/uuid"
)

type UpdatePropertyUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, propertyID uuid.UUID, change domain.PropertyChange) (*domain.OwnedProperty, error)
}
