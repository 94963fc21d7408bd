package usecase

import (
	"context"

	"console-service/internal/contextkeys"
	"console-service/internal/core/domain"
	"console-service/internal/core/port"
	"console-service/internal/core/port/usecases_port"
	"console-service/internal/core/store"

	"github.com/google/uuid"
)

// PromoteListingUseCase превращает найденное парсерами объявление в
// собственное: поля найденного объявления становятся значениями по
// умолчанию для черновика, и дальше работает обычный оркестратор создания.
//
// Это путь чтения по отношению к коллекции найденных объявлений: ее кэш
// не мутируется и элемент из него не исчезает.
type PromoteListingUseCase struct {
	sessions *store.Registry
	create   usecases_port.CreatePropertyUseCasePort
}

func NewPromoteListingUseCase(
	sessions *store.Registry,
	create usecases_port.CreatePropertyUseCasePort,
) *PromoteListingUseCase {
	return &PromoteListingUseCase{
		sessions: sessions,
		create:   create,
	}
}

func (uc *PromoteListingUseCase) Execute(ctx context.Context, userID uuid.UUID, listingID uuid.UUID, overrides usecases_port.PromoteOverrides) (*domain.OwnedProperty, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "PromoteListing",
		"user_id":    userID,
		"listing_id": listingID,
	})

	ucLogger.Info("Use case started", nil)

	session := uc.sessions.Session(userID, "")
	snapshot := session.Discovered.Snapshot()

	var found *domain.DiscoveredListing
	for i := range snapshot.Items {
		if snapshot.Items[i].ID == listingID {
			found = &snapshot.Items[i]
			break
		}
	}
	if found == nil {
		ucLogger.Warn("Listing is not on the current discovered page", nil)
		return nil, domain.ErrListingNotFound
	}

	draft := found.DraftDefaults()
	if overrides.Title != nil {
		draft.Title = *overrides.Title
	}
	if overrides.Description != nil {
		draft.Description = *overrides.Description
	}
	if overrides.PriceUSD != nil {
		draft.PriceUSD = *overrides.PriceUSD
	}

	created, err := uc.create.Execute(ctx, userID, draft)
	if err != nil {
		// Create сам оповестил view и оставил кэш нетронутым.
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"property_id": created.ID,
	})
	return created, nil
}
