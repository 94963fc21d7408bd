package usecases_port

import (
	"context"

	"console-service/internal/core/domain"

	"github.com/google/uuid"
)

// PromoteOverrides - поля, которыми пользователь перекрывает значения,
// скопированные из найденного объявления.
type PromoteOverrides struct {
	Title       *string
	Description *string
	PriceUSD    *float64
}

type PromoteListingUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, listingID uuid.UUID, overrides PromoteOverrides) (*domain.OwnedProperty, error)
}
