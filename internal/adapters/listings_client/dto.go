package listings_client

import "time"

// PropertyResponse - DTO собственного объявления, как его отдает
// listings-service.
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
	ModerationComment string    `json:"moderation_comment"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DiscoveredListingResponse - DTO найденного парсерами объявления.
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
	SellerPhone    string    `json:"seller_phone"`
	ListTime       time.Time `json:"list_time"`
}

// PaginationResponse - метаданные пагинации в ответе списка.
type PaginationResponse struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// PaginatedPropertiesResponse - страница собственных объявлений.
type PaginatedPropertiesResponse struct {
	Items      []PropertyResponse `json:"items"`
	Pagination PaginationResponse `json:"pagination"`
}

// PaginatedDiscoveredResponse - страница найденных объявлений.
type PaginatedDiscoveredResponse struct {
	Items      []DiscoveredListingResponse `json:"items"`
	Pagination PaginationResponse          `json:"pagination"`
}

// UpdatePropertyRequest - JSON-часть запроса обновления: только
// измененные поля плюс список удаляемых изображений.
type UpdatePropertyRequest struct {
	Title          *string  `json:"title,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Category       *string  `json:"category,omitempty"`
	DealType       *string  `json:"deal_type,omitempty"`
	PriceUSD       *float64 `json:"price_usd,omitempty"`
	Address        *string  `json:"address,omitempty"`
	Region         *string  `json:"region,omitempty"`
	CityOrDistrict *string  `json:"city_or_district,omitempty"`
	RemoveImages   []string `json:"remove_images,omitempty"`
}
