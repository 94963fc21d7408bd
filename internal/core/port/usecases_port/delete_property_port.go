package usecases_port

import (
	"context"

	"github.com/google/uuid"
)

type DeletePropertyUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, propertyID uuid.UUID) error
}
