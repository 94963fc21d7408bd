package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"console-service/internal/core/domain"
	"console-service/internal/core/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRefreshProperties - дублер fetch-оркестратора для тестов хендлеров.
type fakeRefreshProperties struct {
	executeFn func(userID uuid.UUID, transitions ...domain.QueryTransition) (*store.Snapshot[domain.OwnedProperty], error)
}

func (f *fakeRefreshProperties) Execute(ctx context.Context, userID uuid.UUID, transitions ...domain.QueryTransition) (*store.Snapshot[domain.OwnedProperty], error) {
	return f.executeFn(userID, transitions...)
}

func seedSession(t *testing.T, sessions *store.Registry, userID uuid.UUID, items ...domain.OwnedProperty) {
	t.Helper()
	collection := sessions.Session(userID, "").Properties
	_, version := collection.BeginRefresh()
	require.True(t, collection.Commit(version, items, domain.Pagination{Total: len(items), Pages: 1}))
}

func authed(r *http.Request, userID uuid.UUID) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
}

func TestGetPropertiesReturnsCacheSnapshot(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()
	seedSession(t, sessions, userID, domain.OwnedProperty{ID: uuid.New(), Title: "my flat", Status: "approved"})

	h := NewPropertyHandler(sessions, nil, nil, nil, nil)
	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/properties", nil), userID)
	rec := httptest.NewRecorder()

	h.GetProperties(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PropertiesSnapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "my flat", resp.Items[0].Title)
	assert.Equal(t, "idle", resp.Status)
	assert.Equal(t, 1, resp.Pagination.Total)
}

func TestGetPropertiesWithoutUserIDIsUnauthorized(t *testing.T) {
	h := NewPropertyHandler(store.NewRegistry(), nil, nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties", nil)
	rec := httptest.NewRecorder()

	h.GetProperties(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePropertiesQueryPassesTransitions(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()

	var gotTransitions int
	refresh := &fakeRefreshProperties{
		executeFn: func(id uuid.UUID, transitions ...domain.QueryTransition) (*store.Snapshot[domain.OwnedProperty], error) {
			assert.Equal(t, userID, id)
			gotTransitions = len(transitions)
			snapshot := sessions.Session(id, "").Properties.Snapshot()
			return &snapshot, nil
		},
	}
	h := NewPropertyHandler(sessions, refresh, nil, nil, nil)

	body := strings.NewReader(`{"search": "loft", "page": 2}`)
	req := authed(httptest.NewRequest(http.MethodPut, "/api/v1/properties/query", body), userID)
	rec := httptest.NewRecorder()

	h.ChangePropertiesQuery(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, gotTransitions)
}

func TestChangePropertiesQueryRejectsBadBody(t *testing.T) {
	h := NewPropertyHandler(store.NewRegistry(), nil, nil, nil, nil)
	req := authed(httptest.NewRequest(http.MethodPut, "/api/v1/properties/query", strings.NewReader("{broken")), uuid.New())
	rec := httptest.NewRecorder()

	h.ChangePropertiesQuery(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangePropertiesQueryFailureReturnsSnapshotWithError(t *testing.T) {
	sessions := store.NewRegistry()
	userID := uuid.New()

	refresh := &fakeRefreshProperties{
		executeFn: func(id uuid.UUID, transitions ...domain.QueryTransition) (*store.Snapshot[domain.OwnedProperty], error) {
			collection := sessions.Session(id, "").Properties
			_, version := collection.BeginRefresh()
			collection.Fail(version, "Failed to load properties")
			snapshot := collection.Snapshot()
			return &snapshot, domain.QueryError(errors.New("listings down"))
		},
	}
	h := NewPropertyHandler(sessions, refresh, nil, nil, nil)

	req := authed(httptest.NewRequest(http.MethodPut, "/api/v1/properties/query", strings.NewReader(`{"page": 2}`)), userID)
	rec := httptest.NewRecorder()

	h.ChangePropertiesQuery(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var resp PropertiesSnapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "Failed to load properties", resp.ErrorMessage)
}
