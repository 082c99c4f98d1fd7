package listing_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"

	"uslugo/internal/common"
	"uslugo/internal/dbmysql"
	"uslugo/internal/listing"
	"uslugo/internal/listing/mocks"
)

func newListingRouter(t *testing.T, userID string) (*mux.Router, *mocks.MockService) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockService(ctrl)
	handler := listing.NewHandler(service)

	r := mux.NewRouter()
	public := r.PathPrefix("/api").Subrouter()
	protected := r.PathPrefix("/api").Subrouter()
	if userID != "" {
		protected.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(common.WithUserID(req.Context(), userID)))
			})
		})
	}
	handler.Register(public, protected)

	return r, service
}

func TestGetPost_PausedRespondsNotAvailable(t *testing.T) {
	router, service := newListingRouter(t, "")

	service.EXPECT().GetPost(gomock.Any(), "post-1", "").
		Return(nil, listing.ErrNotAvailable)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/post-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "this listing is not available", body["error"])
}

func TestGetPost_Missing(t *testing.T) {
	router, service := newListingRouter(t, "")

	service.EXPECT().GetPost(gomock.Any(), "ghost", "").
		Return(nil, gorm.ErrRecordNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/ghost", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "listing not found", body["error"])
}

func TestGetPost_Active(t *testing.T) {
	router, service := newListingRouter(t, "")

	service.EXPECT().GetPost(gomock.Any(), "post-1", "").
		Return(&dbmysql.Post{ID: "post-1", Title: "Dog walking", Status: dbmysql.PostStatusActive}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/post-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var post dbmysql.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, "Dog walking", post.Title)
}

func TestListPosts_ParsesFilter(t *testing.T) {
	router, service := newListingRouter(t, "")

	service.EXPECT().
		ListPosts(gomock.Any(), listing.Filter{Type: "offer", CategoryID: 3, City: "Riga", Query: "clean", Limit: 10}).
		Return([]*dbmysql.Post{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/posts?type=offer&category_id=3&city=Riga&q=clean&limit=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreatePost_Handler(t *testing.T) {
	router, service := newListingRouter(t, "user-1")

	service.EXPECT().CreatePost(gomock.Any(), "user-1", gomock.Any()).
		Return(&dbmysql.Post{ID: "post-1", UserID: "user-1", Title: "Apartment cleaning"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/posts",
		strings.NewReader(`{"type":"offer","category_id":3,"city":"Riga","title":"Apartment cleaning"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSetStatus_Forbidden(t *testing.T) {
	router, service := newListingRouter(t, "intruder")

	service.EXPECT().SetStatus(gomock.Any(), "post-1", "intruder", "paused").
		Return(listing.ErrNotOwner)

	req := httptest.NewRequest(http.MethodPatch, "/api/posts/post-1/status",
		strings.NewReader(`{"status":"paused"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
