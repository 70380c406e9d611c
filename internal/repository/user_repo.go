package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/you/smart-dobi/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.User{}, &domain.Session{})
}

// UpsertByEmail refreshes name/picture for a returning user or creates a
// new one on first login.
func (r *UserRepo) UpsertByEmail(ctx context.Context, email, name string, picture *string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	switch {
	case err == nil:
		u.Name = name
		u.Picture = picture
		if err := r.db.WithContext(ctx).Save(&u).Error; err != nil {
			return nil, err
		}
		return &u, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = domain.User{
			UserID:    fmt.Sprintf("user_%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:12]),
			Email:     email,
			Name:      name,
			Picture:   picture,
			CreatedAt: time.Now().UTC(),
		}
		return &u, r.db.WithContext(ctx).Create(&u).Error
	default:
		return nil, err
	}
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "user_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveSession stores a session, refreshing owner and expiry when the
// identity provider re-issues a token it handed out before.
func (r *UserRepo) SaveSession(ctx context.Context, s *domain.Session) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "expires_at"}),
	}).Create(s).Error
}

func (r *UserRepo) SessionByToken(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	if err := r.db.WithContext(ctx).First(&s, "session_token = ?", token).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *UserRepo) DeleteSession(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Delete(&domain.Session{}, "session_token = ?", token).Error
}
