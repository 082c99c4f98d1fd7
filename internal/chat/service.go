package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"uslugo/internal/dbmysql"
	"uslugo/internal/realtime"
)

var (
	// ErrOwnPost means the viewer owns the listing; no conversation is
	// created and the caller routes to the inbox instead.
	ErrOwnPost = errors.New("cannot start a conversation on your own post")
	// ErrNotParticipant means the user is not one of the two parties.
	ErrNotParticipant = errors.New("not a participant of this conversation")
)

// PostLookup is the slice of the listing store the chat flow needs.
type PostLookup interface {
	GetByID(ctx context.Context, id string) (*dbmysql.Post, error)
	ListByIDs(ctx context.Context, ids []string) ([]*dbmysql.Post, error)
}

// ProfileLookup resolves display names for inbox rendering.
type ProfileLookup interface {
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

// InboxEntry is one conversation as shown in the inbox.
type InboxEntry struct {
	Conversation     *dbmysql.Conversation `json:"conversation"`
	PostTitle        string                `json:"post_title"`
	PostCity         string                `json:"post_city"`
	OtherUserID      string                `json:"other_user_id"`
	OtherDisplayName string                `json:"other_display_name"`
	UnreadCount      int64                 `json:"unread_count"`
}

// ChatService defines the interface exposed to the handler layer.
type ChatService interface {
	// StartConversation finds or creates the thread between the post owner
	// and the viewer. Returns ErrOwnPost when the viewer owns the post.
	StartConversation(ctx context.Context, postID, viewerID string) (*dbmysql.Conversation, error)
	SendMessage(ctx context.Context, conversationID, senderID, body string) (*dbmysql.Message, error)
	// Thread returns the messages of a conversation ascending by time and
	// marks incoming messages read, best-effort.
	Thread(ctx context.Context, conversationID, userID string, limit int) ([]*dbmysql.Message, error)
	Inbox(ctx context.Context, userID string, limit int) ([]InboxEntry, error)
	// Conversation fetches a thread the user participates in.
	Conversation(ctx context.Context, conversationID, userID string) (*dbmysql.Conversation, error)
	MarkConversationRead(ctx context.Context, userID, conversationID string) error
	UnreadCount(ctx context.Context, userID string) int64
}

type chatService struct {
	convos   ConversationRepository
	messages MessageRepository
	posts    PostLookup
	profiles ProfileLookup
	unread   UnreadCounter
	hub      *realtime.Hub
}

func NewChatService(
	convos ConversationRepository,
	messages MessageRepository,
	posts PostLookup,
	profiles ProfileLookup,
	unread UnreadCounter,
	hub *realtime.Hub,
) ChatService {
	return &chatService{
		convos:   convos,
		messages: messages,
		posts:    posts,
		profiles: profiles,
		unread:   unread,
		hub:      hub,
	}
}

func (s *chatService) StartConversation(ctx context.Context, postID, viewerID string) (*dbmysql.Conversation, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID == viewerID {
		return nil, ErrOwnPost
	}

	convo, _, err := s.convos.FindOrCreate(ctx, post.ID, post.UserID, viewerID)
	return convo, err
}

func (s *chatService) SendMessage(ctx context.Context, conversationID, senderID, body string) (*dbmysql.Message, error) {
	body = strings.TrimSpace(body)
	if conversationID == "" {
		return nil, errors.New("conversation ID cannot be empty")
	}
	if senderID == "" {
		return nil, errors.New("sender ID cannot be empty")
	}
	if body == "" {
		return nil, errors.New("message body cannot be empty")
	}

	convo, err := s.convos.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !convo.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}

	msg := &dbmysql.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.hub.Publish(realtime.Event{
		Table:   "messages",
		Action:  realtime.ActionInsert,
		Key:     conversationID,
		Payload: msg,
	})
	// One conversation UPDATE per participant so inbox subscriptions
	// keyed by user id reorder and badge counts refresh.
	for _, uid := range []string{convo.UserAID, convo.UserBID} {
		s.hub.Publish(realtime.Event{
			Table:   "conversations",
			Action:  realtime.ActionUpdate,
			Key:     uid,
			Payload: convo,
		})
	}

	return msg, nil
}

func (s *chatService) Thread(ctx context.Context, conversationID, userID string, limit int) ([]*dbmysql.Message, error) {
	convo, err := s.convos.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !convo.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	if limit <= 0 || limit > 200 {
		limit = 200
	}
	messages, err := s.messages.History(ctx, conversationID, limit)
	if err != nil {
		return nil, err
	}

	// Opening the thread marks incoming messages read. Best-effort: a
	// failure is logged and must never block rendering the thread.
	if _, err := s.messages.MarkRead(ctx, userID, []string{conversationID}); err != nil {
		log.Printf("mark-as-read failed: conversation=%s user=%s err=%v", conversationID, userID, err)
	}

	return messages, nil
}

func (s *chatService) Inbox(ctx context.Context, userID string, limit int) ([]InboxEntry, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	convos, err := s.convos.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(convos) == 0 {
		return []InboxEntry{}, nil
	}

	postIDs := make([]string, 0, len(convos))
	otherIDs := make([]string, 0, len(convos))
	convoIDs := make([]string, 0, len(convos))
	for _, c := range convos {
		postIDs = append(postIDs, c.PostID)
		otherIDs = append(otherIDs, c.OtherParticipant(userID))
		convoIDs = append(convoIDs, c.ID)
	}

	posts, err := s.posts.ListByIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	postsByID := make(map[string]*dbmysql.Post, len(posts))
	for _, p := range posts {
		postsByID[p.ID] = p
	}

	names, err := s.profiles.DisplayNames(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	// Per-conversation unread counts are inbox decoration; degrade to
	// zero like the badge does rather than failing the whole view.
	unread, err := s.messages.UnreadByConversation(ctx, userID, convoIDs)
	if err != nil {
		log.Printf("inbox unread counts degraded to 0: user=%s err=%v", userID, err)
		unread = map[string]int64{}
	}

	entries := make([]InboxEntry, 0, len(convos))
	for _, c := range convos {
		other := c.OtherParticipant(userID)
		entry := InboxEntry{
			Conversation:     c,
			OtherUserID:      other,
			OtherDisplayName: names[other],
			UnreadCount:      unread[c.ID],
		}
		if p, ok := postsByID[c.PostID]; ok {
			entry.PostTitle = p.Title
			entry.PostCity = p.City
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *chatService) Conversation(ctx context.Context, conversationID, userID string) (*dbmysql.Conversation, error) {
	convo, err := s.convos.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !convo.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return convo, nil
}

func (s *chatService) MarkConversationRead(ctx context.Context, userID, conversationID string) error {
	convo, err := s.convos.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !convo.HasParticipant(userID) {
		return ErrNotParticipant
	}
	_, err = s.messages.MarkRead(ctx, userID, []string{conversationID})
	return err
}

func (s *chatService) UnreadCount(ctx context.Context, userID string) int64 {
	return s.unread.UnreadCount(ctx, userID)
}
