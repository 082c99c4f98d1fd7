package chat

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return gormDB, mock, cleanup
}

func expectProbe(mock sqlmock.Sqlmock, col1, col2 string) *sqlmock.ExpectedQuery {
	return mock.ExpectQuery(regexp.QuoteMeta("SELECT " + col1 + ", " + col2 + " FROM `conversations`"))
}

func expectSide(mock sqlmock.Sqlmock, col string, ids ...string) {
	rows := sqlmock.NewRows([]string{"id"})
	for _, id := range ids {
		rows.AddRow(id)
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id` FROM `conversations` WHERE "+col+" = ?")).
		WillReturnRows(rows)
}

func TestUnreadResolver_CountsAcrossBothColumns(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	resolver := NewUnreadResolver(db)

	expectProbe(mock, "user1_id", "user2_id").
		WillReturnRows(sqlmock.NewRows([]string{"user1_id", "user2_id"}))
	// conv-2 shows up on both sides and must be deduplicated.
	expectSide(mock, "user1_id", "conv-1", "conv-2")
	expectSide(mock, "user2_id", "conv-2", "conv-3")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `messages`")).
		WithArgs("conv-1", "conv-2", "conv-3", false, "user-a").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(4))

	assert.Equal(t, int64(4), resolver.UnreadCount(context.Background(), "user-a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnreadResolver_PinsPairAfterFirstProbe(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	resolver := NewUnreadResolver(db)

	expectProbe(mock, "user1_id", "user2_id").
		WillReturnRows(sqlmock.NewRows([]string{"user1_id", "user2_id"}))
	expectSide(mock, "user1_id", "conv-1")
	expectSide(mock, "user2_id")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `messages`")).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	// Second call must reuse the pinned pair: no probe query expected.
	expectSide(mock, "user1_id", "conv-1")
	expectSide(mock, "user2_id")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `messages`")).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(2))

	assert.Equal(t, int64(1), resolver.UnreadCount(context.Background(), "user-a"))
	assert.Equal(t, int64(2), resolver.UnreadCount(context.Background(), "user-a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnreadResolver_FallsThroughOnUnknownColumn(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	resolver := NewUnreadResolver(db)

	expectProbe(mock, "user1_id", "user2_id").
		WillReturnError(&mysqldriver.MySQLError{Number: 1054, Message: "Unknown column 'user1_id' in 'field list'"})
	expectProbe(mock, "user_a_id", "user_b_id").
		WillReturnRows(sqlmock.NewRows([]string{"user_a_id", "user_b_id"}))
	expectSide(mock, "user_a_id", "conv-1")
	expectSide(mock, "user_b_id")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `messages`")).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(7))

	assert.Equal(t, int64(7), resolver.UnreadCount(context.Background(), "user-a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnreadResolver_NoPairResolvesToZero(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	resolver := NewUnreadResolver(db)

	for _, pair := range participantColumnPairs {
		expectProbe(mock, pair[0], pair[1]).
			WillReturnError(errors.New("Error 1054 (42S22): Unknown column '" + pair[0] + "' in 'field list'"))
	}

	// Schema mismatch is not an error: zero unread, nothing raised.
	assert.Equal(t, int64(0), resolver.UnreadCount(context.Background(), "user-a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnreadResolver_EmptyParticipantSetSkipsCount(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	resolver := NewUnreadResolver(db)

	expectProbe(mock, "user1_id", "user2_id").
		WillReturnRows(sqlmock.NewRows([]string{"user1_id", "user2_id"}))
	expectSide(mock, "user1_id")
	expectSide(mock, "user2_id")

	assert.Equal(t, int64(0), resolver.UnreadCount(context.Background(), "lonely-user"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnreadResolver_TransientFailuresDegradeToZero(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(sqlmock.Sqlmock)
	}{
		{
			name: "probe fails with non-schema error",
			mockSetup: func(mock sqlmock.Sqlmock) {
				expectProbe(mock, "user1_id", "user2_id").
					WillReturnError(errors.New("connection refused"))
			},
		},
		{
			name: "participant query fails",
			mockSetup: func(mock sqlmock.Sqlmock) {
				expectProbe(mock, "user1_id", "user2_id").
					WillReturnRows(sqlmock.NewRows([]string{"user1_id", "user2_id"}))
				mock.ExpectQuery(regexp.QuoteMeta("SELECT `id` FROM `conversations` WHERE user1_id = ?")).
					WillReturnError(errors.New("connection refused"))
			},
		},
		{
			name: "count query fails",
			mockSetup: func(mock sqlmock.Sqlmock) {
				expectProbe(mock, "user1_id", "user2_id").
					WillReturnRows(sqlmock.NewRows([]string{"user1_id", "user2_id"}))
				expectSide(mock, "user1_id", "conv-1")
				expectSide(mock, "user2_id")
				mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `messages`")).
					WillReturnError(errors.New("connection refused"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()

			tt.mockSetup(mock)

			resolver := NewUnreadResolver(db)
			assert.Equal(t, int64(0), resolver.UnreadCount(context.Background(), "user-a"))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
