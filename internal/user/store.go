package user

import (
	"context"
	"errors"

	"github.com/botforge-ai/botforge/internal/shared"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&User{})
}

func (s *Store) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = shared.NewID("user_")
	}
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &u, err
}

// SyncFromJWT mirrors the identity service's view of a user into the local
// table. Identity is resolved upstream; this keeps email/name current.
func (s *Store) SyncFromJWT(ctx context.Context, userID, email, name string) error {
	u, err := s.GetByID(ctx, userID)
	if err == nil {
		if u.Email != email || u.Name != name {
			u.Email = email
			u.Name = name
			return s.db.WithContext(ctx).Save(u).Error
		}
		return nil
	}

	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	return s.db.WithContext(ctx).Create(&User{
		ID:    userID,
		Email: email,
		Name:  name,
	}).Error
}
