package usecase

import (
	"context"

	"console-service/internal/contextkeys"
	"console-service/internal/core/domain"
	"console-service/internal/core/port"
	"console-service/internal/core/store"

	"github.com/google/uuid"
)

// DeletePropertyUseCase - оркестратор удаления объявления.
//
// Успешное удаление оптимистично патчит кэш: элемент убирается со страницы,
// Total уменьшается на единицу, Pages пересчитывается. Если текущая страница
// опустела и это не первая страница, оркестратор сам запрашивает предыдущую -
// view не должен повторять эту логику в каждом месте.
type DeletePropertyUseCase struct {
	sessions *store.Registry
	listings port.OwnedListingsPort
	notifier port.NotifierPort
}

func NewDeletePropertyUseCase(
	sessions *store.Registry,
	listings port.OwnedListingsPort,
	notifier port.NotifierPort,
) *DeletePropertyUseCase {
	return &DeletePropertyUseCase{
		sessions: sessions,
		listings: listings,
		notifier: notifier,
	}
}

func (uc *DeletePropertyUseCase) Execute(ctx context.Context, userID uuid.UUID, propertyID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "DeleteProperty",
		"user_id":     userID,
		"property_id": propertyID,
	})

	ucLogger.Info("Use case started", nil)

	session := uc.sessions.Session(userID, "")
	collection := session.Properties

	// Версия фиксируется до запроса: если дескриптор изменится, пока
	// удаление в полете, патч кэша будет отброшен - страницу перечитает
	// более новый fetch.
	_, version := collection.Query()

	// Удаление уже отсутствующего ID удаленный сервис считает успехом,
	// повторных попыток на этом уровне нет.
	if err := uc.listings.Delete(ctx, userID, propertyID); err != nil {
		ucLogger.Error("Delete request failed, cache left untouched", err, nil)
		uc.notifier.Notify(ctx, port.SyncEvent{
			Type:       port.SyncEventMutationFailed,
			Collection: "properties",
			UserID:     userID,
			Message:    "Failed to delete property",
		})
		return domain.MutationError(err)
	}

	removed, pageEmptied := collection.ApplyDeleted(version, propertyID.String())
	if !removed {
		ucLogger.Debug("Deleted property was not on the current page", nil)
		return nil
	}

	ucLogger.Info("Deleted property removed from current page", port.Fields{
		"page_emptied": pageEmptied,
	})

	if pageEmptied {
		// Страница опустела - показываем предыдущую. Transition поднимет
		// версию, так что этот запрос не перепутается с ответами старых.
		query, refreshVersion := collection.Transition(func(q domain.Query) domain.Query {
			return q.WithPage(q.Page - 1)
		})

		page, err := uc.listings.List(ctx, userID, query)
		if err != nil {
			ucLogger.Warn("Post-delete refresh failed", port.Fields{"error": err.Error()})
			collection.Fail(refreshVersion, "Failed to refresh properties")
			return nil
		}
		if !collection.Commit(refreshVersion, page.Items, page.Pagination) {
			ucLogger.Debug("Post-delete refresh superseded by a newer query", nil)
		}
	}

	return nil
}
