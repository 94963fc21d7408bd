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

func TestDeletePropertyRemovesFromPageAndRecomputes(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()
	doomed := ownedProperty("doomed")
	kept := ownedProperty("kept")
	seedProperties(t, sessions, userID, nil, ownedPage(21, 3, doomed, kept))

	listings := &fakeOwnedListings{
		deleteFn: func(propertyID uuid.UUID) error { return nil },
	}
	uc := NewDeletePropertyUseCase(sessions, listings, &fakeNotifier{})

	err := uc.Execute(context.Background(), userID, doomed.ID)

	require.NoError(t, err)
	snapshot := sessions.Session(userID, "").Properties.Snapshot()
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, kept.ID, snapshot.Items[0].ID)
	assert.Equal(t, 20, snapshot.Pagination.Total)
	assert.Equal(t, 2, snapshot.Pagination.Pages)
	// Страница не опустела - повторный List не нужен.
	assert.Empty(t, listings.listCalls)
}

func TestDeletePropertyFetchesPreviousPageWhenPageEmpties(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()
	last := ownedProperty("last on page three")
	seedProperties(t, sessions, userID,
		[]domain.QueryTransition{func(q domain.Query) domain.Query { return q.WithPage(3) }},
		ownedPage(21, 3, last))

	listings := &fakeOwnedListings{
		deleteFn: func(propertyID uuid.UUID) error { return nil },
		listFn: func(query domain.Query) (*port.PropertyPage, error) {
			return ownedPage(20, 2,
				ownedProperty("page2-a"),
				ownedProperty("page2-b"),
			), nil
		},
	}
	uc := NewDeletePropertyUseCase(sessions, listings, &fakeNotifier{})

	err := uc.Execute(context.Background(), userID, last.ID)

	require.NoError(t, err)
	require.Len(t, listings.listCalls, 1)
	assert.Equal(t, 2, listings.listCalls[0].Page)

	snapshot := sessions.Session(userID, "").Properties.Snapshot()
	assert.Equal(t, 2, snapshot.Query.Page)
	assert.Len(t, snapshot.Items, 2)
	assert.Equal(t, 20, snapshot.Pagination.Total)
}

func TestDeletePropertyOnLastItemOfFirstPageStaysPut(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()
	only := ownedProperty("only")
	seedProperties(t, sessions, userID, nil, ownedPage(1, 1, only))

	listings := &fakeOwnedListings{
		deleteFn: func(propertyID uuid.UUID) error { return nil },
	}
	uc := NewDeletePropertyUseCase(sessions, listings, &fakeNotifier{})

	err := uc.Execute(context.Background(), userID, only.ID)

	require.NoError(t, err)
	snapshot := sessions.Session(userID, "").Properties.Snapshot()
	assert.Empty(t, snapshot.Items)
	assert.Equal(t, 0, snapshot.Pagination.Total)
	assert.Equal(t, 1, snapshot.Query.Page)
	assert.Empty(t, listings.listCalls)
}

func TestDeletePropertyNotOnPageStillSucceeds(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()
	seedProperties(t, sessions, userID, nil, ownedPage(5, 1, ownedProperty("visible")))

	listings := &fakeOwnedListings{
		deleteFn: func(propertyID uuid.UUID) error { return nil },
	}
	uc := NewDeletePropertyUseCase(sessions, listings, &fakeNotifier{})

	err := uc.Execute(context.Background(), userID, uuid.New())

	require.NoError(t, err)
	snapshot := sessions.Session(userID, "").Properties.Snapshot()
	assert.Len(t, snapshot.Items, 1)
	assert.Equal(t, 5, snapshot.Pagination.Total)
}

func TestDeletePropertyFailureLeavesCacheUntouched(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()
	target := ownedProperty("target")
	seedProperties(t, sessions, userID, nil, ownedPage(1, 1, target))

	listings := &fakeOwnedListings{
		deleteFn: func(propertyID uuid.UUID) error { return errors.New("forbidden") },
	}
	notifier := &fakeNotifier{}
	uc := NewDeletePropertyUseCase(sessions, listings, notifier)

	err := uc.Execute(context.Background(), userID, target.ID)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMutation)

	snapshot := sessions.Session(userID, "").Properties.Snapshot()
	assert.Len(t, snapshot.Items, 1)
	assert.Equal(t, 1, snapshot.Pagination.Total)

	events := notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, port.SyncEventMutationFailed, events[0].Type)
}

func TestDeletePropertyPostDeleteRefreshErrorDoesNotFailMutation(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()
	last := ownedProperty("last")
	seedProperties(t, sessions, userID,
		[]domain.QueryTransition{func(q domain.Query) domain.Query { return q.WithPage(2) }},
		ownedPage(11, 2, last))

	listings := &fakeOwnedListings{
		deleteFn: func(propertyID uuid.UUID) error { return nil },
		listFn: func(query domain.Query) (*port.PropertyPage, error) {
			return nil, errors.New("refresh failed")
		},
	}
	uc := NewDeletePropertyUseCase(sessions, listings, &fakeNotifier{})

	err := uc.Execute(context.Background(), userID, last.ID)

	// Удаление на сервере прошло; неудачный re-fetch лишь помечает кэш ошибкой.
	require.NoError(t, err)
	snapshot := sessions.Session(userID, "").Properties.Snapshot()
	assert.Equal(t, store.StatusError, snapshot.Status)
}
