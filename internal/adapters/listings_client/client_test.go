package listings_client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"console-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSerializesQueryDescriptor(t *testing.T) {
	userID := uuid.New()
	var gotRequest *http.Request

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequest = r.Clone(r.Context())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [{"id": "` + uuid.NewString() + `", "title": "loft in minsk"}],
			"pagination": {"page": 2, "limit": 25, "total": 26, "pages": 2}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	query := domain.DefaultQuery().
		WithLimit(25).
		WithSearch("loft").
		WithFilter("region", "minsk").
		WithPage(2)

	page, err := client.List(context.Background(), userID, query)

	require.NoError(t, err)
	assert.Equal(t, "/api/v1/my-properties", gotRequest.URL.Path)
	assert.Equal(t, userID.String(), gotRequest.Header.Get("X-User-ID"))

	params := gotRequest.URL.Query()
	assert.Equal(t, "2", params.Get("page"))
	assert.Equal(t, "25", params.Get("limit"))
	assert.Equal(t, "created_at", params.Get("sort_by"))
	assert.Equal(t, "desc", params.Get("sort_order"))
	assert.Equal(t, "loft", params.Get("search"))
	assert.Equal(t, "minsk", params.Get("region"))

	require.Len(t, page.Items, 1)
	assert.Equal(t, "loft in minsk", page.Items[0].Title)
	assert.Equal(t, 26, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Pages)
}

func TestListRejectsMalformedPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [], "pagination": {"page": 1, "limit": 0, "total": -1, "pages": 0}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.List(context.Background(), uuid.New(), domain.DefaultQuery())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed pagination")
}

func TestListNonSuccessStatusIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "tea time", http.StatusTeapot)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.List(context.Background(), uuid.New(), domain.DefaultQuery())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "418")
}

func TestCreateSendsMultipartDraftWithImages(t *testing.T) {
	created := uuid.NewString()
	var form struct {
		title    string
		price    string
		fileName string
		fileData []byte
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		form.title = r.FormValue("title")
		form.price = r.FormValue("price_usd")

		file, header, err := r.FormFile("images_0")
		require.NoError(t, err)
		defer file.Close()
		form.fileName = header.Filename
		buf := make([]byte, header.Size)
		file.Read(buf)
		form.fileData = buf

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "` + created + `", "title": "new flat", "status": "pending"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	property, err := client.Create(context.Background(), uuid.New(), domain.PropertyDraft{
		Title:    "new flat",
		Category: "apartment",
		DealType: "sale",
		PriceUSD: 55000.5,
		Images: []domain.ImageUpload{
			{FileName: "front.jpg", ContentType: "image/jpeg", Data: []byte("jpeg-bytes")},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, created, property.ID.String())
	assert.Equal(t, "pending", property.Status)
	assert.Equal(t, "new flat", form.title)
	assert.Equal(t, "55000.5", form.price)
	assert.Equal(t, "front.jpg", form.fileName)
	assert.Equal(t, []byte("jpeg-bytes"), form.fileData)
}

func TestUpdateSendsOnlyChangedFields(t *testing.T) {
	propertyID := uuid.New()
	var changes string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/my-properties/"+propertyID.String(), r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		changes = r.FormValue("changes")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "` + propertyID.String() + `", "title": "renamed"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	title := "renamed"
	updated, err := client.Update(context.Background(), uuid.New(), propertyID, domain.PropertyChange{
		Title:        &title,
		RemoveImages: []string{"old.jpg"},
	})

	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	// Незатронутые поля не сериализуются вовсе.
	assert.JSONEq(t, `{"title": "renamed", "remove_images": ["old.jpg"]}`, changes)
}

func TestDeleteTreatsNotFoundAsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such property", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.Delete(context.Background(), uuid.New(), uuid.New())

	assert.NoError(t, err)
}

func TestDeletePropagatesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.Delete(context.Background(), uuid.New(), uuid.New())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestListDiscoveredSendsPhone(t *testing.T) {
	var params map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/discovered-listings", r.URL.Path)
		params = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [{"id": "` + uuid.NewString() + `", "source": "kufar", "seller_phone": "+375291234567"}],
			"pagination": {"page": 1, "limit": 10, "total": 1, "pages": 1}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	discovered := NewDiscovered(client)

	page, err := discovered.List(context.Background(), "+375291234567", domain.DefaultQuery().WithSort("list_time", domain.SortDesc))

	require.NoError(t, err)
	assert.Equal(t, []string{"+375291234567"}, params["phone"])
	assert.Equal(t, []string{"list_time"}, params["sort_by"])
	require.Len(t, page.Items, 1)
	assert.Equal(t, "kufar", page.Items[0].Source)
}
