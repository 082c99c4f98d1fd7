package chat

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"uslugo/internal/dbmysql"
)

// ConversationRepository persists two-party threads.
type ConversationRepository interface {
	// FindOrCreate returns the conversation for (postID, ownerID, viewerID),
	// creating it atomically if absent. The bool reports whether a row was
	// created by this call.
	FindOrCreate(ctx context.Context, postID, ownerID, viewerID string) (*dbmysql.Conversation, bool, error)
	GetByID(ctx context.Context, id string) (*dbmysql.Conversation, error)
	// ListForUser returns the user's conversations newest-activity first,
	// conversations that never got a message sorting last.
	ListForUser(ctx context.Context, userID string, limit int) ([]*dbmysql.Conversation, error)
}

// MessageRepository persists messages and their read state.
type MessageRepository interface {
	// Create inserts the message and bumps the conversation's
	// last_message_at in the same transaction.
	Create(ctx context.Context, msg *dbmysql.Message) error
	History(ctx context.Context, conversationID string, limit int) ([]*dbmysql.Message, error)
	// MarkRead flips is_read and stamps read_at on every unread message in
	// the given conversations not sent by userID. Idempotent; returns the
	// number of rows touched.
	MarkRead(ctx context.Context, userID string, conversationIDs []string) (int64, error)
	// UnreadByConversation counts unread incoming messages per conversation.
	UnreadByConversation(ctx context.Context, userID string, conversationIDs []string) (map[string]int64, error)
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) FindOrCreate(ctx context.Context, postID, ownerID, viewerID string) (*dbmysql.Conversation, bool, error) {
	// Role assignment is fixed: the post owner is always user_a. Creation
	// only ever flows from the listing page, so a reversed-role duplicate
	// cannot be produced in-process; the unique key on
	// (post_id, user_a_id, user_b_id) handles concurrent first contacts.
	convo := &dbmysql.Conversation{
		PostID:  postID,
		UserAID: ownerID,
		UserBID: viewerID,
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(convo)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return convo, true, nil
	}

	var existing dbmysql.Conversation
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_a_id = ? AND user_b_id = ?", postID, ownerID, viewerID).
		First(&existing).Error
	if err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

func (r *conversationRepo) GetByID(ctx context.Context, id string) (*dbmysql.Conversation, error) {
	var convo dbmysql.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&convo).Error
	if err != nil {
		return nil, err
	}
	return &convo, nil
}

func (r *conversationRepo) ListForUser(ctx context.Context, userID string, limit int) ([]*dbmysql.Conversation, error) {
	var convos []*dbmysql.Conversation
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("last_message_at IS NULL, last_message_at DESC").
		Limit(limit).
		Find(&convos).Error
	return convos, err
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, msg *dbmysql.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&dbmysql.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("last_message_at", msg.CreatedAt).Error
	})
}

func (r *messageRepo) History(ctx context.Context, conversationID string, limit int) ([]*dbmysql.Message, error) {
	var messages []*dbmysql.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *messageRepo) MarkRead(ctx context.Context, userID string, conversationIDs []string) (int64, error) {
	if len(conversationIDs) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&dbmysql.Message{}).
		Where("conversation_id IN ?", conversationIDs).
		Where("sender_id <> ?", userID).
		Where("is_read = ?", false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	return res.RowsAffected, res.Error
}

func (r *messageRepo) UnreadByConversation(ctx context.Context, userID string, conversationIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return counts, nil
	}

	type row struct {
		ConversationID string
		N              int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&dbmysql.Message{}).
		Select("conversation_id, COUNT(*) AS n").
		Where("conversation_id IN ?", conversationIDs).
		Where("sender_id <> ?", userID).
		Where("is_read = ?", false).
		Group("conversation_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.ConversationID] = r.N
	}
	return counts, nil
}
