package usecase

import (
	"context"

	"console-service/internal/contextkeys"
	"console-service/internal/core/domain"
	"console-service/internal/core/port"
	"console-service/internal/core/store"

	"github.com/google/uuid"
)

// CreatePropertyUseCase - оркестратор создания объявления.
//
// После успешного создания кэш патчится оптимистично только когда новый
// элемент гарантированно принадлежит началу видимой страницы: открыта
// первая страница и сортировка "самые свежие сверху". В любом другом
// контексте место нового элемента знает только сервер, поэтому выполняется
// полный re-fetch с дескриптором, зафиксированным на старте мутации.
type CreatePropertyUseCase struct {
	sessions  *store.Registry
	listings  port.OwnedListingsPort
	validator port.PayloadValidatorPort
	notifier  port.NotifierPort
}

func NewCreatePropertyUseCase(
	sessions *store.Registry,
	listings port.OwnedListingsPort,
	validator port.PayloadValidatorPort,
	notifier port.NotifierPort,
) *CreatePropertyUseCase {
	return &CreatePropertyUseCase{
		sessions:  sessions,
		listings:  listings,
		validator: validator,
		notifier:  notifier,
	}
}

func (uc *CreatePropertyUseCase) Execute(ctx context.Context, userID uuid.UUID, draft domain.PropertyDraft) (*domain.OwnedProperty, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "CreateProperty",
		"user_id":  userID,
	})

	ucLogger.Info("Use case started", port.Fields{
		"category":     draft.Category,
		"images_count": len(draft.Images),
	})

	// Валидация до сети: кэш и удаленный сервис не видят невалидных данных.
	if err := uc.validator.ValidateDraft(draft); err != nil {
		ucLogger.Warn("Draft failed contract validation", port.Fields{"error": err.Error()})
		return nil, domain.ValidationError(err)
	}

	session := uc.sessions.Session(userID, "")
	collection := session.Properties

	// Фиксируем дескриптор и версию на старте мутации: если пользователь
	// сменит фильтры, пока запрос в полете, наш re-fetch будет вытеснен
	// более новым запросом.
	query, version := collection.Query()

	created, err := uc.listings.Create(ctx, userID, draft)
	if err != nil {
		ucLogger.Error("Create request failed, cache left untouched", err, nil)
		uc.notifier.Notify(ctx, port.SyncEvent{
			Type:       port.SyncEventMutationFailed,
			Collection: "properties",
			UserID:     userID,
			Message:    "Failed to create property",
		})
		return nil, domain.MutationError(err)
	}

	if collection.ApplyCreatedFirst(version, *created) {
		ucLogger.Info("Created property prepended to current page", port.Fields{
			"property_id": created.ID,
		})
		return created, nil
	}

	// Оптимистичный prepend неприменим - перечитываем страницу с сервера.
	uc.refetch(ctx, ucLogger, collection, userID, query, version)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"property_id": created.ID,
	})
	return created, nil
}

// refetch перечитывает страницу с дескриптором, зафиксированным на старте
// мутации. Коммит под устаревшей версией молча отбрасывается; ошибка
// re-fetch не делает мутацию неуспешной - сервер изменения уже принял.
func (uc *CreatePropertyUseCase) refetch(
	ctx context.Context,
	logger port.LoggerPort,
	collection *store.Collection[domain.OwnedProperty],
	userID uuid.UUID,
	query domain.Query,
	version uint64,
) {
	page, err := uc.listings.List(ctx, userID, query)
	if err != nil {
		logger.Warn("Post-mutation refresh failed", port.Fields{"error": err.Error()})
		collection.Fail(version, "Failed to refresh properties")
		return
	}
	if !collection.Commit(version, page.Items, page.Pagination) {
		logger.Debug("Post-mutation refresh superseded by a newer query", nil)
	}
}
