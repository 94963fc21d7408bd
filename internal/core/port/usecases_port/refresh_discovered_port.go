package usecases_port

import (
	"context"

	"console-service/internal/core/domain"
	"console-service/internal/core/store"

	"github.com/google/uuid"
)

type RefreshDiscoveredUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, transitions ...domain.QueryTransition) (*store.Snapshot[domain.DiscoveredListing], error)
}
