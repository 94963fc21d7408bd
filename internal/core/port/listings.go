package port

import (
	"context"

	"console-service/internal/core/domain"

	"github.com/google/uuid"
)

// PropertyPage - страница собственных объявлений вместе с метаданными
// пагинации, как их вернул удаленный сервис.
type PropertyPage struct {
	Items      []domain.OwnedProperty
	Pagination domain.Pagination
}

// DiscoveredPage - страница найденных объявлений.
type DiscoveredPage struct {
	Items      []domain.DiscoveredListing
	Pagination domain.Pagination
}

// OwnedListingsPort - контракт удаленного сервиса объявлений для коллекции
// собственных объявлений пользователя.
type OwnedListingsPort interface {
	// List выполняет идемпотентный запрос страницы по сериализованному
	// дескриптору.
	List(ctx context.Context, userID uuid.UUID, query domain.Query) (*PropertyPage, error)

	// Create отправляет multipart-запрос с полями и изображениями,
	// возвращает созданное объявление с серверным ID и таймстемпами.
	Create(ctx context.Context, userID uuid.UUID, draft domain.PropertyDraft) (*domain.OwnedProperty, error)

	// Update отправляет только измененные поля, возвращает обновленное
	// объявление.
	Update(ctx context.Context, userID uuid.UUID, propertyID uuid.UUID, change domain.PropertyChange) (*domain.OwnedProperty, error)

	// Delete удаляет объявление. Удаление уже отсутствующего ID не является
	// ошибкой - контракт удаленного сервиса идемпотентен.
	Delete(ctx context.Context, userID uuid.UUID, propertyID uuid.UUID) error
}

// DiscoveredListingsPort - контракт удаленного сервиса для коллекции
// объявлений, найденных парсерами по номеру телефона. Только чтение.
type DiscoveredListingsPort interface {
	List(ctx context.Context, phone string, query domain.Query) (*DiscoveredPage, error)
}
