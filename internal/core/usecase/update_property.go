package usecase

import (
	"context"

	"console-service/internal/contextkeys"
	"console-service/internal/core/domain"
	"console-service/internal/core/port"
	"console-service/internal/core/store"

	"github.com/google/uuid"
)

// UpdatePropertyUseCase - оркестратор обновления объявления.
//
// Успешное обновление заменяет элемент на той же позиции страницы,
// сохраняя ее состав. Пересортировка или перефильтрация по новым значениям
// полей локально не выполняется - если обновленный элемент больше не
// подходит под фильтры, это выяснит следующий fetch.
type UpdatePropertyUseCase struct {
	sessions  *store.Registry
	listings  port.OwnedListingsPort
	validator port.PayloadValidatorPort
	notifier  port.NotifierPort
}

func NewUpdatePropertyUseCase(
	sessions *store.Registry,
	listings port.OwnedListingsPort,
	validator port.PayloadValidatorPort,
	notifier port.NotifierPort,
) *UpdatePropertyUseCase {
	return &UpdatePropertyUseCase{
		sessions:  sessions,
		listings:  listings,
		validator: validator,
		notifier:  notifier,
	}
}

func (uc *UpdatePropertyUseCase) Execute(ctx context.Context, userID uuid.UUID, propertyID uuid.UUID, change domain.PropertyChange) (*domain.OwnedProperty, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "UpdateProperty",
		"user_id":     userID,
		"property_id": propertyID,
	})

	ucLogger.Info("Use case started", nil)

	if err := uc.validator.ValidateChange(change); err != nil {
		ucLogger.Warn("Change failed contract validation", port.Fields{"error": err.Error()})
		return nil, domain.ValidationError(err)
	}

	session := uc.sessions.Session(userID, "")

	updated, err := uc.listings.Update(ctx, userID, propertyID, change)
	if err != nil {
		ucLogger.Error("Update request failed, cache left untouched", err, nil)
		uc.notifier.Notify(ctx, port.SyncEvent{
			Type:       port.SyncEventMutationFailed,
			Collection: "properties",
			UserID:     userID,
			Message:    "Failed to update property",
		})
		return nil, domain.MutationError(err)
	}

	// Если объект не на текущей странице - это не ошибка: мутация на
	// сервере прошла, кэш просто не требует правки.
	if session.Properties.ApplyUpdated(*updated) {
		ucLogger.Info("Updated property replaced in place", nil)
	} else {
		ucLogger.Debug("Updated property is not on the current page", nil)
	}

	return updated, nil
}
