package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"

	"uslugo/internal/common"
	"uslugo/internal/dbmysql"
	"uslugo/internal/user"
	"uslugo/internal/user/mocks"
)

func newService(t *testing.T) (user.Service, *mocks.MockProfileRepository) {
	t.Setenv("JWT_SECRET", "test-secret")
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileRepository(ctrl)
	return user.NewService(profiles), profiles
}

func TestRegister(t *testing.T) {
	svc, profiles := newService(t)
	ctx := context.Background()

	profiles.EXPECT().EmailExists(ctx, "anna@example.com").Return(false, nil)
	profiles.EXPECT().Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, p *dbmysql.Profile) error {
			p.ID = "user-1"
			return nil
		})

	profile, token, err := svc.Register(ctx, "  Anna@Example.com ", "secret123", "Anna")
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", profile.Email)
	assert.NotEqual(t, "secret123", profile.PasswordHash)

	claims, err := common.ValidToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestRegister_EmailTaken(t *testing.T) {
	svc, profiles := newService(t)
	ctx := context.Background()

	profiles.EXPECT().EmailExists(ctx, "anna@example.com").Return(true, nil)

	_, _, err := svc.Register(ctx, "anna@example.com", "secret123", "Anna")
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		password    string
		displayName string
	}{
		{"bad email", "not-an-email", "secret123", "Anna"},
		{"short password", "anna@example.com", "123", "Anna"},
		{"short display name", "anna@example.com", "secret123", "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t)
			_, _, err := svc.Register(context.Background(), tt.email, tt.password, tt.displayName)
			assert.Error(t, err)
		})
	}
}

func TestLogin(t *testing.T) {
	svc, profiles := newService(t)
	ctx := context.Background()

	hash, err := common.HashPassword("secret123")
	require.NoError(t, err)

	profiles.EXPECT().GetByEmail(ctx, "anna@example.com").
		Return(&dbmysql.Profile{ID: "user-1", Email: "anna@example.com", PasswordHash: hash}, nil)

	profile, token, err := svc.Login(ctx, "anna@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.ID)
	assert.NotEmpty(t, token)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, profiles := newService(t)
	ctx := context.Background()

	hash, err := common.HashPassword("secret123")
	require.NoError(t, err)

	profiles.EXPECT().GetByEmail(ctx, "anna@example.com").
		Return(&dbmysql.Profile{ID: "user-1", Email: "anna@example.com", PasswordHash: hash}, nil)

	_, _, err = svc.Login(ctx, "anna@example.com", "wrong")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, profiles := newService(t)
	ctx := context.Background()

	profiles.EXPECT().GetByEmail(ctx, "ghost@example.com").
		Return(nil, gorm.ErrRecordNotFound)

	// Unknown account and wrong password are indistinguishable.
	_, _, err := svc.Login(ctx, "ghost@example.com", "secret123")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	svc, profiles := newService(t)
	ctx := context.Background()

	profiles.EXPECT().GetByID(ctx, "user-1").
		Return(&dbmysql.Profile{ID: "user-1", DisplayName: "Anna"}, nil)
	profiles.EXPECT().Update(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, p *dbmysql.Profile) error {
			assert.Equal(t, "Anna K", p.DisplayName)
			return nil
		})

	assert.NoError(t, svc.UpdateProfile(ctx, "user-1", " Anna K "))
}
