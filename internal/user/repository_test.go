package user

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
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

func TestProfileRepo_GetByEmail_ActiveOnly(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `profiles` WHERE email = ? AND status = ?")).
		WithArgs("anna@example.com", "active", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "display_name", "status"}).
			AddRow("user-1", "anna@example.com", "Anna", "active"))

	repo := NewProfileRepository(db)
	profile, err := repo.GetByEmail(context.Background(), "anna@example.com")

	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_GetByID_BannedInvisible(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	// The status filter hides banned and deleted accounts.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `profiles` WHERE id = ? AND status = ?")).
		WithArgs("user-1", "active", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewProfileRepository(db)
	_, err := repo.GetByID(context.Background(), "user-1")

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_EmailExists(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `profiles` WHERE email = ?")).
		WithArgs("anna@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	repo := NewProfileRepository(db)
	exists, err := repo.EmailExists(context.Background(), "anna@example.com")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_DisplayNames(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id`,`display_name` FROM `profiles` WHERE id IN (?,?)")).
		WithArgs("user-1", "user-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name"}).
			AddRow("user-1", "Anna").
			AddRow("user-2", "Boris"))

	repo := NewProfileRepository(db)
	names, err := repo.DisplayNames(context.Background(), []string{"user-1", "user-2"})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user-1": "Anna", "user-2": "Boris"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_DisplayNames_EmptySet(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProfileRepository(db)
	names, err := repo.DisplayNames(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, names)
}
