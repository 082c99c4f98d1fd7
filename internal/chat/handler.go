package chat

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"uslugo/internal/common"
	"uslugo/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	service ChatService
	hub     *realtime.Hub
}

func NewHandler(service ChatService, hub *realtime.Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

// Register mounts the chat routes. Everything here requires a session.
func (h *Handler) Register(public, protected *mux.Router) {
	protected.HandleFunc("/posts/{id}/contact", h.contact).Methods("POST")
	protected.HandleFunc("/conversations", h.inbox).Methods("GET")
	protected.HandleFunc("/conversations/{id}/messages", h.thread).Methods("GET")
	protected.HandleFunc("/conversations/{id}/messages", h.send).Methods("POST")
	protected.HandleFunc("/conversations/{id}/read", h.markRead).Methods("POST")
	protected.HandleFunc("/unread-count", h.unreadCount).Methods("GET")
	protected.HandleFunc("/ws", h.feed).Methods("GET")
}

type contactResponse struct {
	ConversationID string `json:"conversation_id,omitempty"`
	OwnPost        bool   `json:"own_post,omitempty"`
}

func (h *Handler) contact(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFrom(r.Context())
	postID := mux.Vars(r)["id"]

	convo, err := h.service.StartConversation(r.Context(), postID, userID)
	if errors.Is(err, ErrOwnPost) {
		// The owner lands in the inbox instead; nothing was created.
		common.RespondJSON(w, http.StatusOK, contactResponse{OwnPost: true})
		return
	}
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, contactResponse{ConversationID: convo.ID})
}

func (h *Handler) inbox(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFrom(r.Context())

	entries, err := h.service.Inbox(r.Context(), userID, 50)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, entries)
}

func (h *Handler) thread(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFrom(r.Context())
	conversationID := mux.Vars(r)["id"]

	messages, err := h.service.Thread(r.Context(), conversationID, userID, 200)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, messages)
}

type sendRequest struct {
	Body string `json:"body"`
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFrom(r.Context())
	conversationID := mux.Vars(r)["id"]

	var req sendRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.service.SendMessage(r.Context(), conversationID, userID, req.Body)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, msg)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFrom(r.Context())
	conversationID := mux.Vars(r)["id"]

	if err := h.service.MarkConversationRead(r.Context(), userID, conversationID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusNoContent, nil)
}

type unreadResponse struct {
	Count int64 `json:"count"`
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFrom(r.Context())
	common.RespondJSON(w, http.StatusOK, unreadResponse{Count: h.service.UnreadCount(r.Context(), userID)})
}

// feed bridges hub subscriptions to a WebSocket. Supported scopes:
//
//	/api/ws?table=messages&conversation_id=<id>   new messages in a thread
//	/api/ws?table=conversations                   the caller's inbox updates
func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFrom(r.Context())

	table := r.URL.Query().Get("table")
	var key string
	switch table {
	case "messages":
		conversationID := r.URL.Query().Get("conversation_id")
		if _, err := h.service.Conversation(r.Context(), conversationID, userID); err != nil {
			h.respondServiceError(w, err)
			return
		}
		key = conversationID
	case "conversations":
		key = userID
	default:
		common.RespondError(w, http.StatusBadRequest, "unsupported table")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	sub := h.hub.Subscribe(table, key)
	defer sub.Unsubscribe()
	defer conn.Close()

	// Reader only detects the close; clients never push on the feed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		common.RespondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrNotParticipant):
		common.RespondError(w, http.StatusForbidden, err.Error())
	default:
		common.RespondError(w, http.StatusBadRequest, err.Error())
	}
}
