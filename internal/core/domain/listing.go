package domain

import (
	"time"

	"github.com/google/uuid"
)

// DiscoveredListing - объявление, найденное парсерами внешних площадок
// по номеру телефона пользователя. Только для чтения: кэш таких объявлений
// никогда не мутируется, его можно только перечитать с сервера.
type DiscoveredListing struct {
	ID             uuid.UUID
	Source         string
	AdLink         string
	Title          string
	Description    string
	Category       string
	DealType       string
	PriceUSD       float64
	Address        string
	Region         string
	CityOrDistrict string
	Images         []string
	SellerPhone    string
	ListTime       time.Time
}

// DraftDefaults переносит поля найденного объявления в черновик нового
// собственного объявления. Изображения переносятся ссылками, без бинарных
// вложений - файлы остаются на стороне источника.
func (l DiscoveredListing) DraftDefaults() PropertyDraft {
	return PropertyDraft{
		Title:          l.Title,
		Description:    l.Description,
		Category:       l.Category,
		DealType:       l.DealType,
		PriceUSD:       l.PriceUSD,
		Address:        l.Address,
		Region:         l.Region,
		CityOrDistrict: l.CityOrDistrict,
	}
}
