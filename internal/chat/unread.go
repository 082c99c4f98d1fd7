package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"uslugo/internal/dbmysql"
)

// participantColumnPairs lists every participant-pair naming convention
// the conversations table has carried across schema versions, in probe
// order. The resolver pins the first pair whose columns exist.
var participantColumnPairs = [][2]string{
	{"user1_id", "user2_id"},
	{"user_a_id", "user_b_id"},
	{"user_id_1", "user_id_2"},
	{"participant1_id", "participant2_id"},
	{"buyer_id", "seller_id"},
}

var errNoParticipantColumns = errors.New("no participant column pair resolved")

// UnreadCounter yields the badge count for a user.
type UnreadCounter interface {
	// UnreadCount never fails: any underlying fault degrades to 0. A
	// broken badge must not take the navigation bar down with it.
	UnreadCount(ctx context.Context, userID string) int64
}

// UnreadResolver computes the unread-message count: messages in
// conversations the user participates in, unread, not sent by the user.
// The participant columns are probed once and cached for the process
// lifetime, so steady-state cost is two id queries plus one count.
type UnreadResolver struct {
	db *gorm.DB

	mu   sync.Mutex
	pair *[2]string // pinned after the first successful probe
}

func NewUnreadResolver(db *gorm.DB) *UnreadResolver {
	return &UnreadResolver{db: db}
}

func (r *UnreadResolver) UnreadCount(ctx context.Context, userID string) int64 {
	count, err := r.count(ctx, userID)
	if err != nil {
		// Degradation stays invisible to the user but not to us.
		log.Printf("unread resolver degraded to 0: user=%s err=%v", userID, err)
		return 0
	}
	return count
}

func (r *UnreadResolver) count(ctx context.Context, userID string) (int64, error) {
	ids, err := r.conversationIDs(ctx, userID)
	if err != nil {
		if errors.Is(err, errNoParticipantColumns) {
			// Schema mismatch is not an error condition, just zero unread.
			return 0, nil
		}
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var n int64
	err = r.db.WithContext(ctx).Model(&dbmysql.Message{}).
		Where("conversation_id IN ?", ids).
		Where("is_read = ?", false).
		Where("sender_id <> ?", userID).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}

// conversationIDs queries each participant column independently and
// unions the deduplicated id sets.
func (r *UnreadResolver) conversationIDs(ctx context.Context, userID string) ([]string, error) {
	pair, err := r.resolvePair(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, col := range pair {
		var side []string
		err := r.db.WithContext(ctx).Table("conversations").
			Where(fmt.Sprintf("%s = ?", col), userID).
			Pluck("id", &side).Error
		if err != nil {
			return nil, err
		}
		for _, id := range side {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// resolvePair probes candidate column pairs in order and pins the first
// one that resolves. Transient failures leave the pair unresolved so a
// later call can retry; only a clean unknown-column result moves the
// probe on to the next candidate.
func (r *UnreadResolver) resolvePair(ctx context.Context) ([2]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pair != nil {
		return *r.pair, nil
	}

	for _, pair := range participantColumnPairs {
		var probe []map[string]interface{}
		err := r.db.WithContext(ctx).Table("conversations").
			Select(pair[0] + ", " + pair[1]).
			Limit(1).
			Find(&probe).Error
		if err == nil {
			pinned := pair
			r.pair = &pinned
			return pinned, nil
		}
		if isUnknownColumn(err) {
			continue
		}
		return [2]string{}, err
	}
	return [2]string{}, errNoParticipantColumns
}

// isUnknownColumn reports whether err is the "column does not exist"
// class of error (MySQL 1054).
func isUnknownColumn(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1054
	}
	return strings.Contains(err.Error(), "Unknown column")
}
