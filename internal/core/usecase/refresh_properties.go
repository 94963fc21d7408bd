package usecase

import (
	"context"

	"console-service/internal/contextkeys"
	"console-service/internal/core/domain"
	"console-service/internal/core/port"
	"console-service/internal/core/store"

	"github.com/google/uuid"
)

// RefreshPropertiesUseCase - fetch-оркестратор коллекции собственных
// объявлений: берет текущий дескриптор, запрашивает страницу у удаленного
// сервиса и целиком заменяет содержимое кэша ответом.
type RefreshPropertiesUseCase struct {
	sessions *store.Registry
	listings port.OwnedListingsPort
	notifier port.NotifierPort
}

func NewRefreshPropertiesUseCase(
	sessions *store.Registry,
	listings port.OwnedListingsPort,
	notifier port.NotifierPort,
) *RefreshPropertiesUseCase {
	return &RefreshPropertiesUseCase{
		sessions: sessions,
		listings: listings,
		notifier: notifier,
	}
}

// Execute применяет транзишены дескриптора и выполняет запрос. Без
// транзишенов это повторная попытка с текущим дескриптором (retry после
// ошибки или фоновый refresh).
//
// Ответ коммитится только если к его приходу дескриптор не изменился:
// при быстрой смене фильтров выигрывает последний запрос, устаревшие
// ответы отбрасываются.
func (uc *RefreshPropertiesUseCase) Execute(ctx context.Context, userID uuid.UUID, transitions ...domain.QueryTransition) (*store.Snapshot[domain.OwnedProperty], error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "RefreshProperties",
		"user_id":  userID,
	})

	session := uc.sessions.Session(userID, "")
	collection := session.Properties

	var query domain.Query
	var version uint64
	if len(transitions) > 0 {
		query, version = collection.Transition(transitions...)
	} else {
		query, version = collection.BeginRefresh()
	}

	ucLogger.Info("Use case started", port.Fields{
		"page":  query.Page,
		"limit": query.Limit,
	})

	page, err := uc.listings.List(ctx, userID, query)
	if err != nil {
		ucLogger.Error("Listings service returned an error", err, nil)
		wrapped := domain.QueryError(err)
		if collection.Fail(version, "Failed to load properties") {
			uc.notifier.Notify(ctx, port.SyncEvent{
				Type:       port.SyncEventQueryFailed,
				Collection: "properties",
				UserID:     userID,
				Message:    "Failed to load properties",
			})
		}
		snapshot := collection.Snapshot()
		return &snapshot, wrapped
	}

	if !collection.Commit(version, page.Items, page.Pagination) {
		ucLogger.Debug("Stale response discarded, descriptor moved on", port.Fields{
			"request_version": version,
		})
		snapshot := collection.Snapshot()
		return &snapshot, nil
	}

	// Пустая страница при ненулевом Total - ожидаемое следствие удаления
	// на другой странице, а не ошибка. View запросит страницу ниже.
	if len(page.Items) == 0 && page.Pagination.Total > 0 && query.Page > 1 {
		ucLogger.Warn("Fetched page is empty while collection is not", port.Fields{
			"page":  query.Page,
			"total": page.Pagination.Total,
		})
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"items_on_page": len(page.Items),
		"total_found":   page.Pagination.Total,
	})

	snapshot := collection.Snapshot()
	return &snapshot, nil
}
