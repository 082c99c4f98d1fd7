package listing

import (
	"context"
	"errors"
	"strings"

	"uslugo/internal/common"
	"uslugo/internal/dbmysql"
)

var (
	// ErrNotAvailable marks a listing that exists but is paused or
	// deleted: an explicit "not available" state, not a generic error.
	ErrNotAvailable = errors.New("this listing is not available")
	// ErrNotOwner means the caller does not own the listing.
	ErrNotOwner = errors.New("not the owner of this listing")
)

// CreateInput carries the fields for a new listing.
type CreateInput struct {
	Type        string  `json:"type"`
	CategoryID  uint    `json:"category_id"`
	City        string  `json:"city"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	PriceCents  *int64  `json:"price_cents"`
	PriceUnit   *string `json:"price_unit"`
	ImageID     *string `json:"image_id"`
}

type Service interface {
	CreatePost(ctx context.Context, userID string, in CreateInput) (*dbmysql.Post, error)
	// GetPost returns ErrNotAvailable for paused or deleted listings
	// unless the viewer owns them.
	GetPost(ctx context.Context, id, viewerID string) (*dbmysql.Post, error)
	ListPosts(ctx context.Context, f Filter) ([]*dbmysql.Post, error)
	// SetStatus soft-transitions a listing; owner only. Listings are
	// never hard-deleted.
	SetStatus(ctx context.Context, id, userID, status string) error
	Categories(ctx context.Context) ([]*dbmysql.Category, error)
}

type listingService struct {
	posts      PostRepository
	categories CategoryRepository
}

func NewService(posts PostRepository, categories CategoryRepository) Service {
	return &listingService{posts: posts, categories: categories}
}

func (s *listingService) CreatePost(ctx context.Context, userID string, in CreateInput) (*dbmysql.Post, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	if in.Type != dbmysql.PostTypeOffer && in.Type != dbmysql.PostTypeRequest {
		return nil, errors.New("type must be offer or request")
	}
	if err := common.ValidateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := common.ValidateCity(in.City); err != nil {
		return nil, err
	}
	if in.PriceCents != nil && *in.PriceCents < 0 {
		return nil, errors.New("price cannot be negative")
	}

	ok, err := s.categories.Exists(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("unknown category")
	}

	post := &dbmysql.Post{
		UserID:      userID,
		Type:        in.Type,
		CategoryID:  in.CategoryID,
		City:        strings.TrimSpace(in.City),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		PriceUnit:   in.PriceUnit,
		ImageID:     in.ImageID,
		Status:      dbmysql.PostStatusActive,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *listingService) GetPost(ctx context.Context, id, viewerID string) (*dbmysql.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status != dbmysql.PostStatusActive && post.UserID != viewerID {
		return nil, ErrNotAvailable
	}
	return post, nil
}

func (s *listingService) ListPosts(ctx context.Context, f Filter) ([]*dbmysql.Post, error) {
	return s.posts.ListActive(ctx, f)
}

func (s *listingService) SetStatus(ctx context.Context, id, userID, status string) error {
	switch status {
	case dbmysql.PostStatusActive, dbmysql.PostStatusPaused, dbmysql.PostStatusDeleted:
	default:
		return errors.New("invalid status")
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrNotOwner
	}
	return s.posts.UpdateStatus(ctx, id, status)
}

func (s *listingService) Categories(ctx context.Context) ([]*dbmysql.Category, error) {
	return s.categories.List(ctx)
}
