package user

import (
	"context"

	"gorm.io/gorm"

	"uslugo/internal/dbmysql"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *dbmysql.Profile) error
	GetByID(ctx context.Context, id string) (*dbmysql.Profile, error)
	GetByEmail(ctx context.Context, email string) (*dbmysql.Profile, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, profile *dbmysql.Profile) error
	// DisplayNames resolves display names for a set of user ids.
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

type profileRepo struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Create(ctx context.Context, profile *dbmysql.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*dbmysql.Profile, error) {
	var profile dbmysql.Profile
	err := r.db.WithContext(ctx).Where("id = ? AND status = ?", id, "active").First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*dbmysql.Profile, error) {
	var profile dbmysql.Profile
	err := r.db.WithContext(ctx).Where("email = ? AND status = ?", email, "active").First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Profile{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *profileRepo) Update(ctx context.Context, profile *dbmysql.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *profileRepo) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var profiles []dbmysql.Profile
	err := r.db.WithContext(ctx).Select("id", "display_name").Where("id IN ?", ids).Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		names[p.ID] = p.DisplayName
	}
	return names, nil
}
