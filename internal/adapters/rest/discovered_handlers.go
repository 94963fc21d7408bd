package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"console-service/internal/adapters/notifier"
	"console-service/internal/contextkeys"
	"console-service/internal/core/domain"
	"console-service/internal/core/port"
	"console-service/internal/core/port/usecases_port"
	"console-service/internal/core/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type DiscoveredHandler struct {
	sessions            *store.Registry
	refreshDiscoveredUC usecases_port.RefreshDiscoveredUseCasePort
	promoteListingUC    usecases_port.PromoteListingUseCasePort
	notifier            *notifier.SSENotifier
}

// NewDiscoveredHandler - конструктор
func NewDiscoveredHandler(
	sessions *store.Registry,
	refreshUC usecases_port.RefreshDiscoveredUseCasePort,
	promoteUC usecases_port.PromoteListingUseCasePort,
	notifier *notifier.SSENotifier,
) *DiscoveredHandler {
	return &DiscoveredHandler{
		sessions:            sessions,
		refreshDiscoveredUC: refreshUC,
		promoteListingUC:    promoteUC,
		notifier:            notifier,
	}
}

// GetDiscovered - обработчик для GET /api/v1/discovered.
// Отдает текущее состояние кэша найденных объявлений.
func (h *DiscoveredHandler) GetDiscovered(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetDiscovered"})

	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		logger.Error("Invalid or missing user ID in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	session := h.sessions.Session(userID, "")
	snapshot := session.Discovered.Snapshot()

	RespondWithJSON(w, http.StatusOK, toDiscoveredSnapshotResponse(&snapshot))
}

// ChangeDiscoveredQuery - обработчик для PUT /api/v1/discovered/query.
func (h *DiscoveredHandler) ChangeDiscoveredQuery(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ChangeDiscoveredQuery"})

	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		logger.Error("Invalid or missing user ID in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var req QueryChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode query change request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{"user_id": userID.String()})
	handlerLogger.Info("Processing request to change discovered query", nil)

	snapshot, err := h.refreshDiscoveredUC.Execute(r.Context(), userID, toTransitions(req)...)
	if err != nil {
		handlerLogger.Error("RefreshDiscovered use case failed", err, nil)
		RespondWithJSON(w, http.StatusBadGateway, toDiscoveredSnapshotResponse(snapshot))
		return
	}

	RespondWithJSON(w, http.StatusOK, toDiscoveredSnapshotResponse(snapshot))
}

// RefreshDiscovered - обработчик для POST /api/v1/discovered/refresh.
func (h *DiscoveredHandler) RefreshDiscovered(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RefreshDiscovered"})

	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		logger.Error("Invalid or missing user ID in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{"user_id": userID.String()})
	handlerLogger.Info("Processing request to refresh discovered listings", nil)

	snapshot, err := h.refreshDiscoveredUC.Execute(r.Context(), userID)
	if err != nil {
		handlerLogger.Error("RefreshDiscovered use case failed", err, nil)
		RespondWithJSON(w, http.StatusBadGateway, toDiscoveredSnapshotResponse(snapshot))
		return
	}

	RespondWithJSON(w, http.StatusOK, toDiscoveredSnapshotResponse(snapshot))
}

// PromoteListing - обработчик для POST /api/v1/discovered/{listingID}/promote.
// Создает собственное объявление из найденного; кэш найденных не меняется.
func (h *DiscoveredHandler) PromoteListing(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "PromoteListing"})

	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		logger.Error("Invalid or missing user ID in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	listingID, err := uuid.Parse(chi.URLParam(r, "listingID"))
	if err != nil {
		logger.Warn("Invalid listing ID format in URL", port.Fields{"provided_id": chi.URLParam(r, "listingID")})
		WriteJSONError(w, http.StatusBadRequest, "Invalid listing ID in URL")
		return
	}

	var req PromoteRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("Failed to decode promote request body", port.Fields{"error": err.Error()})
			WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	handlerLogger := logger.WithFields(port.Fields{
		"user_id":    userID.String(),
		"listing_id": listingID.String(),
	})
	handlerLogger.Info("Processing request to promote discovered listing", nil)

	overrides := usecases_port.PromoteOverrides{
		Title:       req.Title,
		Description: req.Description,
		PriceUSD:    req.PriceUSD,
	}

	created, err := h.promoteListingUC.Execute(r.Context(), userID, listingID, overrides)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			handlerLogger.Warn("Promote failed: listing not on current page", nil)
			WriteJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		if errors.Is(err, domain.ErrValidation) {
			handlerLogger.Warn("Promote validation failed", port.Fields{"error": err.Error()})
			WriteJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		handlerLogger.Error("PromoteListing use case failed", err, nil)
		WriteJSONError(w, http.StatusBadGateway, "Failed to promote listing")
		return
	}

	handlerLogger.Info("Listing promoted successfully", port.Fields{"property_id": created.ID.String()})
	RespondWithJSON(w, http.StatusCreated, toPropertyResponse(*created))
}

// SubscribeToEvents - обработчик для GET /api/v1/events.
// SSE-поток уведомлений о фоновых ошибках синхронизации.
func (h *DiscoveredHandler) SubscribeToEvents(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SubscribeToEvents"})

	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		logger.Error("User ID in context for SSE subscription invalid or missing", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{"user_id": userID.String()})
	handlerLogger.Info("New client subscribing to SSE events", nil)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := h.notifier.AddClient(userID.String())
	defer h.notifier.RemoveClient(userID.String(), clientChan)

	// Отправляем ping для подтверждения установки соединения
	fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	// Пустой комментарий каждые 15 секунд держит соединение живым
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case data := <-clientChan:
			if _, err := fmt.Fprintf(w, "%s", data); err != nil {
				handlerLogger.Error("Error writing to client, closing SSE connection", err, nil)
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keep-alive\n\n"); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}

		case <-r.Context().Done():
			handlerLogger.Info("SSE client disconnected.", nil)
			return
		}
	}
}
