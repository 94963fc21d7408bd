package rest

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"console-service/internal/contextkeys"
	"console-service/internal/core/domain"
	"console-service/internal/core/port"
	"console-service/internal/core/port/usecases_port"
	"console-service/internal/core/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Лимит multipart-формы создания/обновления объявления (поля + изображения).
const maxUploadSize = 32 << 20

type PropertyHandler struct {
	sessions           *store.Registry
	refreshPropertiesUC usecases_port.RefreshPropertiesUseCasePort
	createPropertyUC   usecases_port.CreatePropertyUseCasePort
	updatePropertyUC   usecases_port.UpdatePropertyUseCasePort
	deletePropertyUC   usecases_port.DeletePropertyUseCasePort
}

// NewPropertyHandler - конструктор
func NewPropertyHandler(
	sessions *store.Registry,
	refreshUC usecases_port.RefreshPropertiesUseCasePort,
	createUC usecases_port.CreatePropertyUseCasePort,
	updateUC usecases_port.UpdatePropertyUseCasePort,
	deleteUC usecases_port.DeletePropertyUseCasePort,
) *PropertyHandler {
	return &PropertyHandler{
		sessions:            sessions,
		refreshPropertiesUC: refreshUC,
		createPropertyUC:    createUC,
		updatePropertyUC:    updateUC,
		deletePropertyUC:    deleteUC,
	}
}

// GetProperties - обработчик для GET /api/v1/properties.
// Отдает текущее состояние кэша без похода в удаленный сервис.
func (h *PropertyHandler) GetProperties(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetProperties"})

	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		logger.Error("Invalid or missing user ID in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	session := h.sessions.Session(userID, "")
	snapshot := session.Properties.Snapshot()

	RespondWithJSON(w, http.StatusOK, toPropertiesSnapshotResponse(&snapshot))
}

// ChangePropertiesQuery - обработчик для PUT /api/v1/properties/query.
// Применяет изменения дескриптора и перечитывает страницу.
func (h *PropertyHandler) ChangePropertiesQuery(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ChangePropertiesQuery"})

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
	handlerLogger.Info("Processing request to change properties query", nil)

	snapshot, err := h.refreshPropertiesUC.Execute(r.Context(), userID, toTransitions(req)...)
	if err != nil {
		handlerLogger.Error("RefreshProperties use case failed", err, nil)
		// Кэш уже помечен ошибкой; отдаем его состояние вместе со статусом.
		RespondWithJSON(w, http.StatusBadGateway, toPropertiesSnapshotResponse(snapshot))
		return
	}

	RespondWithJSON(w, http.StatusOK, toPropertiesSnapshotResponse(snapshot))
}

// RefreshProperties - обработчик для POST /api/v1/properties/refresh.
// Повторяет текущий запрос без изменения дескриптора.
func (h *PropertyHandler) RefreshProperties(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RefreshProperties"})

	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		logger.Error("Invalid or missing user ID in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{"user_id": userID.String()})
	handlerLogger.Info("Processing request to refresh properties", nil)

	snapshot, err := h.refreshPropertiesUC.Execute(r.Context(), userID)
	if err != nil {
		handlerLogger.Error("RefreshProperties use case failed", err, nil)
		RespondWithJSON(w, http.StatusBadGateway, toPropertiesSnapshotResponse(snapshot))
		return
	}

	RespondWithJSON(w, http.StatusOK, toPropertiesSnapshotResponse(snapshot))
}

// CreateProperty - обработчик для POST /api/v1/properties.
// Принимает multipart-форму: текстовые поля черновика плюс файлы images_N.
func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateProperty"})

	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		logger.Error("Invalid or missing user ID in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		logger.Warn("Failed to parse multipart form", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	priceUSD, _ := strconv.ParseFloat(r.FormValue("price_usd"), 64)
	draft := domain.PropertyDraft{
		Title:          r.FormValue("title"),
		Description:    r.FormValue("description"),
		Category:       r.FormValue("category"),
		DealType:       r.FormValue("deal_type"),
		PriceUSD:       priceUSD,
		Address:        r.FormValue("address"),
		Region:         r.FormValue("region"),
		CityOrDistrict: r.FormValue("city_or_district"),
	}

	images, err := readImageUploads(r.MultipartForm)
	if err != nil {
		logger.Warn("Failed to read uploaded images", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Failed to read uploaded images")
		return
	}
	draft.Images = images

	handlerLogger := logger.WithFields(port.Fields{
		"user_id": userID.String(),
		"title":   draft.Title,
		"images":  len(draft.Images),
	})
	handlerLogger.Info("Processing request to create property", nil)

	created, err := h.createPropertyUC.Execute(r.Context(), userID, draft)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			handlerLogger.Warn("Create property validation failed", port.Fields{"error": err.Error()})
			WriteJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		handlerLogger.Error("CreateProperty use case failed", err, nil)
		WriteJSONError(w, http.StatusBadGateway, "Failed to create property")
		return
	}

	handlerLogger.Info("Property created successfully", port.Fields{"property_id": created.ID.String()})
	RespondWithJSON(w, http.StatusCreated, toPropertyResponse(*created))
}

// UpdateProperty - обработчик для PATCH /api/v1/properties/{propertyID}.
// Поле "changes" несет JSON с измененными полями, файлы images_N - новые изображения.
func (h *PropertyHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "UpdateProperty"})

	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		logger.Error("Invalid or missing user ID in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		logger.Warn("Invalid property ID format in URL", port.Fields{"provided_id": chi.URLParam(r, "propertyID")})
		WriteJSONError(w, http.StatusBadRequest, "Invalid property ID in URL")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		logger.Warn("Failed to parse multipart form", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	var change domain.PropertyChange
	if raw := r.FormValue("changes"); raw != "" {
		var req struct {
			Title          *string  `json:"title"`
			Description    *string  `json:"description"`
			Category       *string  `json:"category"`
			DealType       *string  `json:"deal_type"`
			PriceUSD       *float64 `json:"price_usd"`
			Address        *string  `json:"address"`
			Region         *string  `json:"region"`
			CityOrDistrict *string  `json:"city_or_district"`
			RemoveImages   []string `json:"remove_images"`
		}
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			logger.Warn("Invalid 'changes' field format", port.Fields{"error": err.Error()})
			WriteJSONError(w, http.StatusBadRequest, "Invalid 'changes' field format")
			return
		}
		change = domain.PropertyChange{
			Title:          req.Title,
			Description:    req.Description,
			Category:       req.Category,
			DealType:       req.DealType,
			PriceUSD:       req.PriceUSD,
			Address:        req.Address,
			Region:         req.Region,
			CityOrDistrict: req.CityOrDistrict,
			RemoveImages:   req.RemoveImages,
		}
	}

	images, err := readImageUploads(r.MultipartForm)
	if err != nil {
		logger.Warn("Failed to read uploaded images", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Failed to read uploaded images")
		return
	}
	change.AddImages = images

	handlerLogger := logger.WithFields(port.Fields{
		"user_id":     userID.String(),
		"property_id": propertyID.String(),
	})
	handlerLogger.Info("Processing request to update property", nil)

	updated, err := h.updatePropertyUC.Execute(r.Context(), userID, propertyID, change)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			handlerLogger.Warn("Update property validation failed", port.Fields{"error": err.Error()})
			WriteJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		handlerLogger.Error("UpdateProperty use case failed", err, nil)
		WriteJSONError(w, http.StatusBadGateway, "Failed to update property")
		return
	}

	handlerLogger.Info("Property updated successfully", nil)
	RespondWithJSON(w, http.StatusOK, toPropertyResponse(*updated))
}

// DeleteProperty - обработчик для DELETE /api/v1/properties/{propertyID}.
func (h *PropertyHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "DeleteProperty"})

	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		logger.Error("Invalid or missing user ID in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		logger.Warn("Invalid property ID format in URL", port.Fields{"provided_id": chi.URLParam(r, "propertyID")})
		WriteJSONError(w, http.StatusBadRequest, "Invalid property ID in URL")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"user_id":     userID.String(),
		"property_id": propertyID.String(),
	})
	handlerLogger.Info("Processing request to delete property", nil)

	if err := h.deletePropertyUC.Execute(r.Context(), userID, propertyID); err != nil {
		handlerLogger.Error("DeleteProperty use case failed", err, nil)
		WriteJSONError(w, http.StatusBadGateway, "Failed to delete property")
		return
	}

	handlerLogger.Info("Property deleted successfully", nil)
	w.WriteHeader(http.StatusNoContent)
}

// readImageUploads собирает все файловые части формы в бинарные вложения.
func readImageUploads(form *multipart.Form) ([]domain.ImageUpload, error) {
	if form == nil {
		return nil, nil
	}

	var uploads []domain.ImageUpload
	for _, headers := range form.File {
		for _, header := range headers {
			file, err := header.Open()
			if err != nil {
				return nil, err
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, domain.ImageUpload{
				FileName:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}
	return uploads, nil
}
