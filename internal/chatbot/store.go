package chatbot

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
	return s.db.AutoMigrate(&Chatbot{})
}

func (s *Store) Create(ctx context.Context, b *Chatbot) error {
	if b.ID == "" {
		b.ID = shared.NewID("bot_")
	}
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *Store) GetByID(ctx context.Context, id string) (*Chatbot, error) {
	var b Chatbot
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &b, err
}

// GetOwned fetches a chatbot only if it belongs to the given user. A chatbot
// owned by someone else is indistinguishable from a missing one.
func (s *Store) GetOwned(ctx context.Context, id, userID string) (*Chatbot, error) {
	var b Chatbot
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &b, err
}

func (s *Store) GetByUser(ctx context.Context, userID string) ([]*Chatbot, error) {
	var bots []*Chatbot
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&bots).Error
	return bots, err
}

func (s *Store) Update(ctx context.Context, b *Chatbot) error {
	return s.db.WithContext(ctx).Save(b).Error
}

func (s *Store) Delete(ctx context.Context, id, userID string) error {
	result := s.db.WithContext(ctx).Delete(&Chatbot{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
