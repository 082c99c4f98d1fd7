package user

import (
	"context"
	"errors"
	"strings"

	"uslugo/internal/common"
	"uslugo/internal/dbmysql"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Service interface {
	Register(ctx context.Context, email, password, displayName string) (*dbmysql.Profile, string, error)
	Login(ctx context.Context, email, password string) (*dbmysql.Profile, string, error)
	GetProfile(ctx context.Context, userID string) (*dbmysql.Profile, error)
	UpdateProfile(ctx context.Context, userID, displayName string) error
}

type userService struct {
	profiles ProfileRepository
}

func NewService(profiles ProfileRepository) Service {
	return &userService{profiles: profiles}
}

func (s *userService) Register(ctx context.Context, email, password, displayName string) (*dbmysql.Profile, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := common.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := common.ValidatePassword(password); err != nil {
		return nil, "", err
	}
	if err := common.ValidateDisplayName(displayName); err != nil {
		return nil, "", err
	}

	exists, err := s.profiles.EmailExists(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", ErrEmailTaken
	}

	hashed, err := common.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	profile := &dbmysql.Profile{
		Email:        email,
		PasswordHash: hashed,
		DisplayName:  strings.TrimSpace(displayName),
		Status:       "active",
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, "", err
	}

	token, err := common.GenerateToken(profile.ID, profile.Email)
	if err != nil {
		return nil, "", err
	}
	return profile, token, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*dbmysql.Profile, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", errors.New("email and password required")
	}

	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := common.CheckPassword(password, profile.PasswordHash); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := common.GenerateToken(profile.ID, profile.Email)
	if err != nil {
		return nil, "", err
	}
	return profile, token, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*dbmysql.Profile, error) {
	return s.profiles.GetByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID, displayName string) error {
	if err := common.ValidateDisplayName(displayName); err != nil {
		return err
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	profile.DisplayName = strings.TrimSpace(displayName)
	return s.profiles.Update(ctx, profile)
}
