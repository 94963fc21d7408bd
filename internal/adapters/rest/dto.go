package rest

import "time"

// QueryResponse - дескриптор коллекции, как его видит view.
type QueryResponse struct {
	Page      int               `json:"page"`
	Limit     int               `json:"limit"`
	SortBy    string            `json:"sort_by"`
	SortOrder string            `json:"sort_order"`
	Search    string            `json:"search"`
	Filters   map[string]string `json:"filters,omitempty"`
}

// PaginationResponse - метаданные пагинации.
type PaginationResponse struct {
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// PropertyResponse - карточка собственного объявления.
type PropertyResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	DealType          string    `json:"deal_type"`
	PriceUSD          float64   `json:"price_usd"`
	Address           string    `json:"address"`
	Region            string    `json:"region"`
	CityOrDistrict    string    `json:"city_or_district"`
	Images            []string  `json:"images"`
	Status            string    `json:"status"`
	ModerationComment string    `json:"moderation_comment,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DiscoveredListingResponse - карточка найденного объявления.
type DiscoveredListingResponse struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	AdLink         string    `json:"ad_link"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	DealType       string    `json:"deal_type"`
	PriceUSD       float64   `json:"price_usd"`
	Address        string    `json:"address"`
	Region         string    `json:"region"`
	CityOrDistrict string    `json:"city_or_district"`
	Images         []string  `json:"images"`
	ListTime       time.Time `json:"list_time"`
}

// PropertiesSnapshotResponse - состояние коллекции собственных объявлений.
type PropertiesSnapshotResponse struct {
	Items        []PropertyResponse `json:"items"`
	Query        QueryResponse      `json:"query"`
	Pagination   PaginationResponse `json:"pagination"`
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message,omitempty"`
}

// DiscoveredSnapshotResponse - состояние коллекции найденных объявлений.
type DiscoveredSnapshotResponse struct {
	Items        []DiscoveredListingResponse `json:"items"`
	Query        QueryResponse               `json:"query"`
	Pagination   PaginationResponse          `json:"pagination"`
	Status       string                      `json:"status"`
	ErrorMessage string                      `json:"error_message,omitempty"`
}

// QueryChangeRequest - частичное изменение дескриптора. Переданные поля
// применяются как транзишены; правила сброса страницы живут в домене,
// а не здесь.
type QueryChangeRequest struct {
	Page      *int               `json:"page,omitempty"`
	Limit     *int               `json:"limit,omitempty"`
	SortBy    *string            `json:"sort_by,omitempty"`
	SortOrder *string            `json:"sort_order,omitempty"`
	Search    *string            `json:"search,omitempty"`
	Filters   map[string]*string `json:"filters,omitempty"`
}

// PromoteRequest - поля, которыми пользователь перекрывает значения
// найденного объявления при создании собственного.
type PromoteRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	PriceUSD    *float64 `json:"price_usd,omitempty"`
}

// ErrorResponse - стандартная структура для ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}
