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

func seedProperties(t *testing.T, sessions *store.Registry, userID uuid.UUID, transitions []domain.QueryTransition, page *port.PropertyPage) {
	t.Helper()
	collection := sessions.Session(userID, "").Properties
	var version uint64
	if len(transitions) > 0 {
		_, version = collection.Transition(transitions...)
	} else {
		_, version = collection.BeginRefresh()
	}
	require.True(t, collection.Commit(version, page.Items, page.Pagination))
}

func TestCreatePropertyPrependsOnFirstPageNewestFirst(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()
	seedProperties(t, sessions, userID, nil, ownedPage(2, 1, ownedProperty("a"), ownedProperty("b")))

	created := ownedProperty("created")
	listings := &fakeOwnedListings{
		createFn: func(draft domain.PropertyDraft) (*domain.OwnedProperty, error) {
			return &created, nil
		},
	}
	uc := NewCreatePropertyUseCase(sessions, listings, &fakeValidator{}, &fakeNotifier{})

	got, err := uc.Execute(context.Background(), userID, domain.PropertyDraft{Title: "created"})

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	snapshot := sessions.Session(userID, "").Properties.Snapshot()
	require.Len(t, snapshot.Items, 3)
	assert.Equal(t, created.ID, snapshot.Items[0].ID)
	assert.Equal(t, 3, snapshot.Pagination.Total)
	// Prepend обходится без List-запроса.
	assert.Empty(t, listings.listCalls)
}

func TestCreatePropertyRefetchesOffFirstPage(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()
	seedProperties(t, sessions, userID,
		[]domain.QueryTransition{func(q domain.Query) domain.Query { return q.WithPage(2) }},
		ownedPage(13, 2, ownedProperty("p2-a"), ownedProperty("p2-b"), ownedProperty("p2-c")))

	created := ownedProperty("created")
	listings := &fakeOwnedListings{
		createFn: func(draft domain.PropertyDraft) (*domain.OwnedProperty, error) {
			return &created, nil
		},
		listFn: func(query domain.Query) (*port.PropertyPage, error) {
			return ownedPage(14, 2, ownedProperty("server-a"), ownedProperty("server-b")), nil
		},
	}
	uc := NewCreatePropertyUseCase(sessions, listings, &fakeValidator{}, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), userID, domain.PropertyDraft{Title: "created"})

	require.NoError(t, err)
	require.Len(t, listings.listCalls, 1)
	assert.Equal(t, 2, listings.listCalls[0].Page)

	snapshot := sessions.Session(userID, "").Properties.Snapshot()
	assert.Equal(t, 14, snapshot.Pagination.Total)
	require.Len(t, snapshot.Items, 2)
	assert.Equal(t, "server-a", snapshot.Items[0].Title)
}

func TestCreatePropertyRefetchesOnNonNewestFirstSort(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()
	seedProperties(t, sessions, userID,
		[]domain.QueryTransition{func(q domain.Query) domain.Query { return q.WithSort("price_usd", domain.SortAsc) }},
		ownedPage(2, 1, ownedProperty("cheap"), ownedProperty("pricey")))

	created := ownedProperty("created")
	listings := &fakeOwnedListings{
		createFn: func(draft domain.PropertyDraft) (*domain.OwnedProperty, error) {
			return &created, nil
		},
		listFn: func(query domain.Query) (*port.PropertyPage, error) {
			return ownedPage(3, 1, ownedProperty("cheap"), ownedProperty("created"), ownedProperty("pricey")), nil
		},
	}
	uc := NewCreatePropertyUseCase(sessions, listings, &fakeValidator{}, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), userID, domain.PropertyDraft{Title: "created"})

	require.NoError(t, err)
	require.Len(t, listings.listCalls, 1)
	assert.Len(t, sessions.Session(userID, "").Properties.Snapshot().Items, 3)
}

func TestCreatePropertyFailureLeavesCacheUntouched(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()
	seedProperties(t, sessions, userID, nil, ownedPage(1, 1, ownedProperty("existing")))
	before := sessions.Session(userID, "").Properties.Snapshot()

	listings := &fakeOwnedListings{
		createFn: func(draft domain.PropertyDraft) (*domain.OwnedProperty, error) {
			return nil, errors.New("rejected upstream")
		},
	}
	notifier := &fakeNotifier{}
	uc := NewCreatePropertyUseCase(sessions, listings, &fakeValidator{}, notifier)

	_, err := uc.Execute(context.Background(), userID, domain.PropertyDraft{Title: "doomed"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMutation)
	assert.NotErrorIs(t, err, domain.ErrQuery)

	after := sessions.Session(userID, "").Properties.Snapshot()
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.Pagination, after.Pagination)
	assert.Equal(t, store.StatusIdle, after.Status)

	events := notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, port.SyncEventMutationFailed, events[0].Type)
}

func TestCreatePropertyValidationFailureSkipsNetwork(t *testing.T) {
	sessions := store.NewRegistry()
	listings := &fakeOwnedListings{} // createFn отсутствует: вызов был бы ошибкой
	validator := &fakeValidator{err: errors.New("title is required")}
	uc := NewCreatePropertyUseCase(sessions, listings, validator, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), uuid.New(), domain.PropertyDraft{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrMutation)
}

func TestCreatePropertyStalePatchDiscardedAfterDescriptorChange(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()
	seedProperties(t, sessions, userID, nil, ownedPage(1, 1, ownedProperty("existing")))
	collection := sessions.Session(userID, "").Properties

	created := ownedProperty("created")
	listings := &fakeOwnedListings{
		createFn: func(draft domain.PropertyDraft) (*domain.OwnedProperty, error) {
			// Пока создание в полете, пользователь меняет фильтры.
			collection.Transition(func(q domain.Query) domain.Query {
				return q.WithSearch("elsewhere")
			})
			return &created, nil
		},
		listFn: func(query domain.Query) (*port.PropertyPage, error) {
			return ownedPage(2, 1, ownedProperty("stale")), nil
		},
	}
	uc := NewCreatePropertyUseCase(sessions, listings, &fakeValidator{}, &fakeNotifier{})

	got, err := uc.Execute(context.Background(), userID, domain.PropertyDraft{Title: "created"})

	// Мутация успешна, но ни prepend, ни re-fetch не должны перезаписать
	// состояние более нового дескриптора.
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	snapshot := collection.Snapshot()
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, "existing", snapshot.Items[0].Title)
	assert.Equal(t, "elsewhere", snapshot.Query.Search)
}
