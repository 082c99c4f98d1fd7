package listing

import (
	"context"

	"gorm.io/gorm"

	"uslugo/internal/dbmysql"
)

// Filter narrows the public listing feed. Zero values mean "any".
type Filter struct {
	Type       string
	CategoryID uint
	City       string
	Query      string
	Limit      int
}

type PostRepository interface {
	Create(ctx context.Context, post *dbmysql.Post) error
	GetByID(ctx context.Context, id string) (*dbmysql.Post, error)
	ListByIDs(ctx context.Context, ids []string) ([]*dbmysql.Post, error)
	// ListActive returns active listings newest first.
	ListActive(ctx context.Context, f Filter) ([]*dbmysql.Post, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]*dbmysql.Category, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

type postRepo struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepo{db: db}
}

func (r *postRepo) Create(ctx context.Context, post *dbmysql.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepo) GetByID(ctx context.Context, id string) (*dbmysql.Post, error) {
	var post dbmysql.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepo) ListByIDs(ctx context.Context, ids []string) ([]*dbmysql.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var posts []*dbmysql.Post
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error
	return posts, err
}

func (r *postRepo) ListActive(ctx context.Context, f Filter) ([]*dbmysql.Post, error) {
	q := r.db.WithContext(ctx).Where("status = ?", dbmysql.PostStatusActive)
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var posts []*dbmysql.Post
	err := q.Order("created_at DESC").Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *postRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&dbmysql.Post{}).
		Where("id = ?", id).
		Update("status", status).Error
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) List(ctx context.Context) ([]*dbmysql.Category, error) {
	var categories []*dbmysql.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Category{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
