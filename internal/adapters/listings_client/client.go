package listings_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"console-service/internal/contextkeys"
	"console-service/internal/core/domain"
	"console-service/internal/core/port"

	"github.com/google/uuid"
)

// Client - клиент удаленного listings-service. Реализует оба порта:
// коллекцию собственных объявлений (list/create/update/delete) и
// read-only коллекцию найденных объявлений.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient - конструктор. Таймаут соответствует тому, что обещает
// удаленный сервис: истекший запрос превращается в обычную ошибку fetch.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// doRequest - внутренний хелпер для выполнения запросов.
func (c *Client) doRequest(ctx context.Context, method, url string, userID uuid.UUID, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}
	if userID != uuid.Nil {
		req.Header.Set("X-User-ID", userID.String())
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// readError превращает не-2xx ответ в ошибку с телом ответа.
func readError(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("listings service returned non-success status code %d: %s", resp.StatusCode, string(bodyBytes))
}

// List запрашивает страницу собственных объявлений по сериализованному
// дескриптору.
func (c *Client) List(ctx context.Context, userID uuid.UUID, query domain.Query) (*port.PropertyPage, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	clientLogger := logger.WithFields(port.Fields{
		"component": "ListingsClient",
		"method":    "List",
	})

	url := fmt.Sprintf("%s/api/v1/my-properties?%s", c.baseURL, query.Values().Encode())
	clientLogger.Debug("Sending request to listings-service", port.Fields{"url": url})

	resp, err := c.doRequest(ctx, http.MethodGet, url, userID, "", nil)
	if err != nil {
		clientLogger.Error("Failed to perform request to listings-service", err, nil)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := readError(resp)
		clientLogger.Error("Received error response from listings-service", err, port.Fields{"status_code": resp.StatusCode})
		return nil, err
	}

	var dto PaginatedPropertiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		clientLogger.Error("Failed to decode response from listings-service", err, nil)
		return nil, err
	}
	if dto.Pagination.Total < 0 || dto.Pagination.Limit <= 0 {
		err := fmt.Errorf("listings service returned malformed pagination metadata")
		clientLogger.Error("Malformed pagination in response", err, nil)
		return nil, err
	}

	clientLogger.Info("Successfully received and decoded response", port.Fields{"items_count": len(dto.Items)})

	// Маппим DTO ответа в доменную модель, изолируя ядро от деталей API.
	page := &port.PropertyPage{
		Items: make([]domain.OwnedProperty, len(dto.Items)),
		Pagination: domain.Pagination{
			Total: dto.Pagination.Total,
			Pages: dto.Pagination.Pages,
		},
	}
	for i, item := range dto.Items {
		page.Items[i] = toDomainProperty(item)
	}
	return page, nil
}

// Create отправляет multipart-запрос: JSON-поля черновика и 0..N
// бинарных изображений.
func (c *Client) Create(ctx context.Context, userID uuid.UUID, draft domain.PropertyDraft) (*domain.OwnedProperty, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	clientLogger := logger.WithFields(port.Fields{
		"component": "ListingsClient",
		"method":    "Create",
	})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writeDraftFields(writer, draft); err != nil {
		clientLogger.Error("Failed to build multipart body", err, nil)
		return nil, err
	}
	for i, image := range draft.Images {
		if err := writeImagePart(writer, i, image); err != nil {
			clientLogger.Error("Failed to attach image to multipart body", err, nil)
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := c.baseURL + "/api/v1/my-properties"
	clientLogger.Debug("Sending create request to listings-service", port.Fields{
		"url":          url,
		"images_count": len(draft.Images),
	})

	resp, err := c.doRequest(ctx, http.MethodPost, url, userID, writer.FormDataContentType(), &buf)
	if err != nil {
		clientLogger.Error("Failed to perform request to listings-service", err, nil)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := readError(resp)
		clientLogger.Error("Received error response from listings-service", err, port.Fields{"status_code": resp.StatusCode})
		return nil, err
	}

	var dto PropertyResponse
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		clientLogger.Error("Failed to decode response from listings-service", err, nil)
		return nil, err
	}

	created := toDomainProperty(dto)
	clientLogger.Info("Property created", port.Fields{"property_id": created.ID})
	return &created, nil
}

// Update отправляет измененные поля и новые изображения. JSON-часть идет
// полем "changes", бинарные вложения - файлами images_N.
func (c *Client) Update(ctx context.Context, userID uuid.UUID, propertyID uuid.UUID, change domain.PropertyChange) (*domain.OwnedProperty, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	clientLogger := logger.WithFields(port.Fields{
		"component":   "ListingsClient",
		"method":      "Update",
		"property_id": propertyID,
	})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	changesJSON, err := json.Marshal(UpdatePropertyRequest{
		Title:          change.Title,
		Description:    change.Description,
		Category:       change.Category,
		DealType:       change.DealType,
		PriceUSD:       change.PriceUSD,
		Address:        change.Address,
		Region:         change.Region,
		CityOrDistrict: change.CityOrDistrict,
		RemoveImages:   change.RemoveImages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal changes: %w", err)
	}
	if err := writer.WriteField("changes", string(changesJSON)); err != nil {
		return nil, fmt.Errorf("failed to write changes field: %w", err)
	}
	for i, image := range change.AddImages {
		if err := writeImagePart(writer, i, image); err != nil {
			clientLogger.Error("Failed to attach image to multipart body", err, nil)
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/my-properties/%s", c.baseURL, propertyID)
	clientLogger.Debug("Sending update request to listings-service", port.Fields{"url": url})

	resp, err := c.doRequest(ctx, http.MethodPatch, url, userID, writer.FormDataContentType(), &buf)
	if err != nil {
		clientLogger.Error("Failed to perform request to listings-service", err, nil)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := readError(resp)
		clientLogger.Error("Received error response from listings-service", err, port.Fields{"status_code": resp.StatusCode})
		return nil, err
	}

	var dto PropertyResponse
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		clientLogger.Error("Failed to decode response from listings-service", err, nil)
		return nil, err
	}

	updated := toDomainProperty(dto)
	clientLogger.Info("Property updated", nil)
	return &updated, nil
}

// Delete удаляет объявление. 404 считается успехом: контракт удаленного
// сервиса идемпотентен, и повторное удаление не ошибка.
func (c *Client) Delete(ctx context.Context, userID uuid.UUID, propertyID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	clientLogger := logger.WithFields(port.Fields{
		"component":   "ListingsClient",
		"method":      "Delete",
		"property_id": propertyID,
	})

	url := fmt.Sprintf("%s/api/v1/my-properties/%s", c.baseURL, propertyID)
	clientLogger.Debug("Sending delete request to listings-service", port.Fields{"url": url})

	resp, err := c.doRequest(ctx, http.MethodDelete, url, userID, "", nil)
	if err != nil {
		clientLogger.Error("Failed to perform request to listings-service", err, nil)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		clientLogger.Debug("Property already deleted on the remote side", nil)
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := readError(resp)
		clientLogger.Error("Received error response from listings-service", err, port.Fields{"status_code": resp.StatusCode})
		return err
	}

	clientLogger.Info("Property deleted", nil)
	return nil
}

// ListDiscovered запрашивает страницу найденных объявлений по номеру
// телефона пользователя.
func (c *Client) ListDiscovered(ctx context.Context, phone string, query domain.Query) (*port.DiscoveredPage, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	clientLogger := logger.WithFields(port.Fields{
		"component": "ListingsClient",
		"method":    "ListDiscovered",
	})

	values := query.Values()
	values.Set("phone", phone)
	url := fmt.Sprintf("%s/api/v1/discovered-listings?%s", c.baseURL, values.Encode())
	clientLogger.Debug("Sending request to listings-service", port.Fields{"url": url})

	resp, err := c.doRequest(ctx, http.MethodGet, url, uuid.Nil, "", nil)
	if err != nil {
		clientLogger.Error("Failed to perform request to listings-service", err, nil)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := readError(resp)
		clientLogger.Error("Received error response from listings-service", err, port.Fields{"status_code": resp.StatusCode})
		return nil, err
	}

	var dto PaginatedDiscoveredResponse
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		clientLogger.Error("Failed to decode response from listings-service", err, nil)
		return nil, err
	}
	if dto.Pagination.Total < 0 || dto.Pagination.Limit <= 0 {
		err := fmt.Errorf("listings service returned malformed pagination metadata")
		clientLogger.Error("Malformed pagination in response", err, nil)
		return nil, err
	}

	clientLogger.Info("Successfully received and decoded response", port.Fields{"items_count": len(dto.Items)})

	page := &port.DiscoveredPage{
		Items: make([]domain.DiscoveredListing, len(dto.Items)),
		Pagination: domain.Pagination{
			Total: dto.Pagination.Total,
			Pages: dto.Pagination.Pages,
		},
	}
	for i, item := range dto.Items {
		page.Items[i] = toDomainListing(item)
	}
	return page, nil
}

// writeDraftFields пишет скалярные поля черновика в multipart-форму.
func writeDraftFields(writer *multipart.Writer, draft domain.PropertyDraft) error {
	fields := map[string]string{
		"title":            draft.Title,
		"description":      draft.Description,
		"category":         draft.Category,
		"deal_type":        draft.DealType,
		"price_usd":        strconv.FormatFloat(draft.PriceUSD, 'f', -1, 64),
		"address":          draft.Address,
		"region":           draft.Region,
		"city_or_district": draft.CityOrDistrict,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}
	return nil
}

// writeImagePart пишет одно бинарное вложение в multipart-форму.
func writeImagePart(writer *multipart.Writer, index int, image domain.ImageUpload) error {
	part, err := writer.CreateFormFile(fmt.Sprintf("images_%d", index), image.FileName)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(image.Data); err != nil {
		return fmt.Errorf("failed to write image payload: %w", err)
	}
	return nil
}

func toDomainProperty(dto PropertyResponse) domain.OwnedProperty {
	id, _ := uuid.Parse(dto.ID)
	return domain.OwnedProperty{
		ID:                id,
		Title:             dto.Title,
		Description:       dto.Description,
		Category:          dto.Category,
		DealType:          dto.DealType,
		PriceUSD:          dto.PriceUSD,
		Address:           dto.Address,
		Region:            dto.Region,
		CityOrDistrict:    dto.CityOrDistrict,
		Images:            dto.Images,
		Status:            dto.Status,
		ModerationComment: dto.ModerationComment,
		CreatedAt:         dto.CreatedAt,
		UpdatedAt:         dto.UpdatedAt,
	}
}

func toDomainListing(dto DiscoveredListingResponse) domain.DiscoveredListing {
	id, _ := uuid.Parse(dto.ID)
	return domain.DiscoveredListing{
		ID:             id,
		Source:         dto.Source,
		AdLink:         dto.AdLink,
		Title:          dto.Title,
		Description:    dto.Description,
		Category:       dto.Category,
		DealType:       dto.DealType,
		PriceUSD:       dto.PriceUSD,
		Address:        dto.Address,
		Region:         dto.Region,
		CityOrDistrict: dto.CityOrDistrict,
		Images:         dto.Images,
		SellerPhone:    dto.SellerPhone,
		ListTime:       dto.ListTime,
	}
}
