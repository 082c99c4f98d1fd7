package chat_test

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

	"uslugo/internal/chat"
	"uslugo/internal/chat/mocks"
	"uslugo/internal/common"
	"uslugo/internal/dbmysql"
	"uslugo/internal/realtime"
)

// newChatRouter mounts the handler behind a middleware that injects a
// fixed user identity, standing in for the real auth layer.
func newChatRouter(t *testing.T, userID string) (*mux.Router, *mocks.MockChatService) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockChatService(ctrl)
	handler := chat.NewHandler(service, realtime.NewHub())

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(common.WithUserID(req.Context(), userID)))
		})
	})
	handler.Register(api, api)

	return r, service
}

func TestHandler_UnreadCount(t *testing.T) {
	router, service := newChatRouter(t, "user-1")

	service.EXPECT().UnreadCount(gomock.Any(), "user-1").Return(int64(5))

	req := httptest.NewRequest(http.MethodGet, "/api/unread-count", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(5), body["count"])
}

func TestHandler_Contact(t *testing.T) {
	router, service := newChatRouter(t, "viewer-1")

	service.EXPECT().StartConversation(gomock.Any(), "post-1", "viewer-1").
		Return(&dbmysql.Conversation{ID: "convo-1"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/posts/post-1/contact", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "convo-1", body["conversation_id"])
}

func TestHandler_Contact_OwnPost(t *testing.T) {
	router, service := newChatRouter(t, "owner-1")

	service.EXPECT().StartConversation(gomock.Any(), "post-1", "owner-1").
		Return(nil, chat.ErrOwnPost)

	req := httptest.NewRequest(http.MethodPost, "/api/posts/post-1/contact", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["own_post"])
}

func TestHandler_Contact_PostGone(t *testing.T) {
	router, service := newChatRouter(t, "viewer-1")

	service.EXPECT().StartConversation(gomock.Any(), "missing", "viewer-1").
		Return(nil, gorm.ErrRecordNotFound)

	req := httptest.NewRequest(http.MethodPost, "/api/posts/missing/contact", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Thread_Forbidden(t *testing.T) {
	router, service := newChatRouter(t, "stranger")

	service.EXPECT().Thread(gomock.Any(), "convo-1", "stranger", 200).
		Return(nil, chat.ErrNotParticipant)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/convo-1/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_Send(t *testing.T) {
	router, service := newChatRouter(t, "user-1")

	service.EXPECT().SendMessage(gomock.Any(), "convo-1", "user-1", "hello").
		Return(&dbmysql.Message{ID: 1, ConversationID: "convo-1", SenderID: "user-1", Body: "hello"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/conversations/convo-1/messages",
		strings.NewReader(`{"body":"hello"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var msg dbmysql.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, "hello", msg.Body)
	assert.False(t, msg.IsRead)
}

func TestHandler_Send_BadJSON(t *testing.T) {
	router, _ := newChatRouter(t, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/api/conversations/convo-1/messages",
		strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_MarkRead(t *testing.T) {
	router, service := newChatRouter(t, "user-1")

	service.EXPECT().MarkConversationRead(gomock.Any(), "user-1", "convo-1").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/conversations/convo-1/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_Feed_UnsupportedTable(t *testing.T) {
	router, _ := newChatRouter(t, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/api/ws?table=profiles", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Feed_MessagesScopeChecked(t *testing.T) {
	router, service := newChatRouter(t, "stranger")

	service.EXPECT().Conversation(gomock.Any(), "convo-1", "stranger").
		Return(nil, chat.ErrNotParticipant)

	req := httptest.NewRequest(http.MethodGet, "/api/ws?table=messages&conversation_id=convo-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProtectedRoutes_RedirectHintWhenAnonymous(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockChatService(ctrl)
	handler := chat.NewHandler(service, realtime.NewHub())

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(common.AuthMiddleware)
	handler.Register(api, api)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/login?next=%2Fapi%2Fconversations", rec.Header().Get("Location"))
}
