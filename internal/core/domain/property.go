package domain

import (
	"time"

	"github.com/google/uuid"
)

// Статусы модерации объявления.
const (
	PropertyStatusDraft    = "draft"
	PropertyStatusPending  = "pending"
	PropertyStatusApproved = "approved"
	PropertyStatusRejected = "rejected"
)

// OwnedProperty - объявление текущего пользователя. Редактируемое,
// проходит модерацию (draft -> pending -> approved/rejected).
type OwnedProperty struct {
	ID                uuid.UUID
	Title             string
	Description       string
	Category          string
	DealType          string
	PriceUSD          float64
	Address           string
	Region            string
	CityOrDistrict    string
	Images            []string
	Status            string
	ModerationComment string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ImageUpload - бинарное вложение для multipart-запроса создания/обновления.
type ImageUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// PropertyDraft - поля нового объявления плюс 0..N изображений.
type PropertyDraft struct {
	Title          string
	Description    string
	Category       string
	DealType       string
	PriceUSD       float64
	Address        string
	Region         string
	CityOrDistrict string
	Images         []ImageUpload
}

// PropertyChange - измененные поля для обновления. Указатели, потому что
// отправлять нужно только то, что реально поменялось.
type PropertyChange struct {
	Title          *string
	Description    *string
	Category       *string
	DealType       *string
	PriceUSD       *float64
	Address        *string
	Region         *string
	CityOrDistrict *string
	AddImages      []ImageUpload
	RemoveImages   []string
}
