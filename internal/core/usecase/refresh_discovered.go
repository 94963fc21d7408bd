package usecase

import (
	"context"

	"console-service/internal/contextkeys"
	"console-service/internal/core/domain"
	"console-service/internal/core/port"
	"console-service/internal/core/store"

	"github.com/google/uuid"
)

// RefreshDiscoveredUseCase - fetch-оркестратор коллекции найденных
// объявлений. Та же дисциплина версий, что и у собственных объявлений,
// но коллекция только читается: мутаций у нее нет.
type RefreshDiscoveredUseCase struct {
	sessions   *store.Registry
	discovered port.DiscoveredListingsPort
	notifier   port.NotifierPort
}

func NewRefreshDiscoveredUseCase(
	sessions *store.Registry,
	discovered port.DiscoveredListingsPort,
	notifier port.NotifierPort,
) *RefreshDiscoveredUseCase {
	return &RefreshDiscoveredUseCase{
		sessions:   sessions,
		discovered: discovered,
		notifier:   notifier,
	}
}

func (uc *RefreshDiscoveredUseCase) Execute(ctx context.Context, userID uuid.UUID, transitions ...domain.QueryTransition) (*store.Snapshot[domain.DiscoveredListing], error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "RefreshDiscovered",
		"user_id":  userID,
	})

	session := uc.sessions.Session(userID, "")
	collection := session.Discovered

	var query domain.Query
	var version uint64
	if len(transitions) > 0 {
		query, version = collection.Transition(transitions...)
	} else {
		query, version = collection.BeginRefresh()
	}

	ucLogger.Info("Use case started", port.Fields{
		"page":  query.Page,
		"phone": session.Phone,
	})

	page, err := uc.discovered.List(ctx, session.Phone, query)
	if err != nil {
		ucLogger.Error("Listings service returned an error", err, nil)
		wrapped := domain.QueryError(err)
		if collection.Fail(version, "Failed to load discovered listings") {
			uc.notifier.Notify(ctx, port.SyncEvent{
				Type:       port.SyncEventQueryFailed,
				Collection: "discovered",
				UserID:     userID,
				Message:    "Failed to load discovered listings",
			})
		}
		snapshot := collection.Snapshot()
		return &snapshot, wrapped
	}

	if !collection.Commit(version, page.Items, page.Pagination) {
		ucLogger.Debug("Stale response discarded, descriptor moved on", port.Fields{
			"request_version": version,
		})
	} else {
		ucLogger.Info("Use case finished successfully", port.Fields{
			"items_on_page": len(page.Items),
			"total_found":   page.Pagination.Total,
		})
	}

	snapshot := collection.Snapshot()
	return &snapshot, nil
}
