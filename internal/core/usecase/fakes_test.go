package usecase

import (
	"context"
	"fmt"
	"sync"

	"console-service/internal/core/domain"
	"console-service/internal/core/port"

	"github.com/google/uuid"
)

// fakeOwnedListings - управляемый дублер удаленного сервиса объявлений.
type fakeOwnedListings struct {
	listFn   func(query domain.Query) (*port.PropertyPage, error)
	createFn func(draft domain.PropertyDraft) (*domain.OwnedProperty, error)
	updateFn func(propertyID uuid.UUID, change domain.PropertyChange) (*domain.OwnedProperty, error)
	deleteFn func(propertyID uuid.UUID) error

	listCalls []domain.Query
}

func (f *fakeOwnedListings) List(ctx context.Context, userID uuid.UUID, query domain.Query) (*port.PropertyPage, error) {
	f.listCalls = append(f.listCalls, query)
	if f.listFn == nil {
		return &port.PropertyPage{}, nil
	}
	return f.listFn(query)
}

func (f *fakeOwnedListings) Create(ctx context.Context, userID uuid.UUID, draft domain.PropertyDraft) (*domain.OwnedProperty, error) {
	if f.createFn == nil {
		return nil, fmt.Errorf("unexpected Create call")
	}
	return f.createFn(draft)
}

func (f *fakeOwnedListings) Update(ctx context.Context, userID uuid.UUID, propertyID uuid.UUID, change domain.PropertyChange) (*domain.OwnedProperty, error) {
	if f.updateFn == nil {
		return nil, fmt.Errorf("unexpected Update call")
	}
	return f.updateFn(propertyID, change)
}

func (f *fakeOwnedListings) Delete(ctx context.Context, userID uuid.UUID, propertyID uuid.UUID) error {
	if f.deleteFn == nil {
		return fmt.Errorf("unexpected Delete call")
	}
	return f.deleteFn(propertyID)
}

// fakeDiscoveredListings - дублер read-only сервиса найденных объявлений.
type fakeDiscoveredListings struct {
	listFn func(phone string, query domain.Query) (*port.DiscoveredPage, error)
}

func (f *fakeDiscoveredListings) List(ctx context.Context, phone string, query domain.Query) (*port.DiscoveredPage, error) {
	if f.listFn == nil {
		return &port.DiscoveredPage{}, nil
	}
	return f.listFn(phone, query)
}

// fakeNotifier накапливает события синхронизации.
type fakeNotifier struct {
	mu     sync.Mutex
	events []port.SyncEvent
}

func (f *fakeNotifier) Notify(ctx context.Context, event port.SyncEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) Events() []port.SyncEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]port.SyncEvent(nil), f.events...)
}

// fakeValidator пропускает все или отклоняет все.
type fakeValidator struct {
	err error
}

func (f *fakeValidator) ValidateDraft(draft domain.PropertyDraft) error   { return f.err }
func (f *fakeValidator) ValidateChange(change domain.PropertyChange) error { return f.err }

func ownedProperty(title string) domain.OwnedProperty {
	return domain.OwnedProperty{
		ID:       uuid.New(),
		Title:    title,
		Category: "apartment",
		DealType: "sale",
		PriceUSD: 50000,
	}
}

func ownedPage(total, pages int, items ...domain.OwnedProperty) *port.PropertyPage {
	return &port.PropertyPage{
		Items:      items,
		Pagination: domain.Pagination{Total: total, Pages: pages},
	}
}
