package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/warblerhq/warbler/internal/models"
)

// MessageService handles creating, fetching, and deleting messages.
type MessageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// Create validates and persists a new message for the given author.
func (s *MessageService) Create(ctx context.Context, userID uint, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if len([]rune(text)) > models.MaxMessageLength {
		return nil, ErrTextTooLong
	}

	msg := models.Message{Text: text, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// Get retrieves a message with its author.
func (s *MessageService) Get(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := s.db.WithContext(ctx).Preload("User").First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// Delete removes a message and its like edges. Only the author may delete;
// anyone else gets ErrNotOwner.
func (s *MessageService) Delete(ctx context.Context, actorID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg models.Message
		if err := tx.First(&msg, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if msg.UserID != actorID {
			return ErrNotOwner
		}

		if err := tx.Where("message_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&msg).Error
	})
}

// RecentByUser returns the user's most recent messages, newest first, capped
// at limit.
func (s *MessageService) RecentByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Preload("User").
		Find(&msgs).Error
	return msgs, err
}
