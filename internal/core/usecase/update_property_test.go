package usecase

import (
	"context"
	"errors"
	"testing"

	"console-service/internal/core/domain"
	"console-service/internal/core/port"
	"console-service/internal/core/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatePropertyReplacesInPlace(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()
	first := ownedProperty("first")
	second := ownedProperty("second")
	third := ownedProperty("third")
	seedProperties(t, sessions, userID, nil, ownedPage(3, 1, first, second, third))

	renamed := second
	renamed.Title = "renamed"
	listings := &fakeOwnedListings{
		updateFn: func(propertyID uuid.UUID, change domain.PropertyChange) (*domain.OwnedProperty, error) {
			return &renamed, nil
		},
	}
	uc := NewUpdatePropertyUseCase(sessions, listings, &fakeValidator{}, &fakeNotifier{})

	got, err := uc.Execute(context.Background(), userID, second.ID, domain.PropertyChange{Title: strPtr("renamed")})

	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)

	snapshot := sessions.Session(userID, "").Properties.Snapshot()
	require.Len(t, snapshot.Items, 3)
	// Тот же индекс, никакой локальной пересортировки.
	assert.Equal(t, first.ID, snapshot.Items[0].ID)
	assert.Equal(t, "renamed", snapshot.Items[1].Title)
	assert.Equal(t, third.ID, snapshot.Items[2].ID)
	assert.Equal(t, 3, snapshot.Pagination.Total)
}

func TestUpdatePropertyNotOnPageIsNotAnError(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()
	seedProperties(t, sessions, userID, nil, ownedPage(1, 1, ownedProperty("visible")))

	elsewhere := ownedProperty("elsewhere")
	listings := &fakeOwnedListings{
		updateFn: func(propertyID uuid.UUID, change domain.PropertyChange) (*domain.OwnedProperty, error) {
			return &elsewhere, nil
		},
	}
	uc := NewUpdatePropertyUseCase(sessions, listings, &fakeValidator{}, &fakeNotifier{})

	got, err := uc.Execute(context.Background(), userID, elsewhere.ID, domain.PropertyChange{})

	require.NoError(t, err)
	assert.Equal(t, elsewhere.ID, got.ID)
	assert.Len(t, sessions.Session(userID, "").Properties.Snapshot().Items, 1)
}

func TestUpdatePropertyFailureLeavesCacheUntouched(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()
	target := ownedProperty("target")
	seedProperties(t, sessions, userID, nil, ownedPage(1, 1, target))

	listings := &fakeOwnedListings{
		updateFn: func(propertyID uuid.UUID, change domain.PropertyChange) (*domain.OwnedProperty, error) {
			return nil, errors.New("conflict")
		},
	}
	notifier := &fakeNotifier{}
	uc := NewUpdatePropertyUseCase(sessions, listings, &fakeValidator{}, notifier)

	_, err := uc.Execute(context.Background(), userID, target.ID, domain.PropertyChange{Title: strPtr("nope")})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMutation)

	snapshot := sessions.Session(userID, "").Properties.Snapshot()
	assert.Equal(t, "target", snapshot.Items[0].Title)

	events := notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, port.SyncEventMutationFailed, events[0].Type)
}

func TestUpdatePropertyValidationFailureSkipsNetwork(t *testing.T) {
	sessions := store.NewRegistry()
	validator := &fakeValidator{err: errors.New("negative price")}
	uc := NewUpdatePropertyUseCase(sessions, &fakeOwnedListings{}, validator, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), uuid.New(), uuid.New(), domain.PropertyChange{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func strPtr(s string) *string { return &s }
