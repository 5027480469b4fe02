package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/warblerhq/warbler/internal/models"
)

// LikeService handles the like edge between users and messages.
type LikeService struct {
	db *gorm.DB
}

func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{db: db}
}

// Toggle flips the like state for (actor, message) inside one transaction and
// reports the resulting state. Liking your own message returns ErrSelfLike
// with no state change; applying Toggle twice restores the prior state.
func (s *LikeService) Toggle(ctx context.Context, actorID, messageID uint) (liked bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg models.Message
		if err := tx.First(&msg, messageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if msg.UserID == actorID {
			return ErrSelfLike
		}

		var existing models.Like
		findErr := tx.Where("user_id = ? AND message_id = ?", actorID, messageID).First(&existing).Error
		if findErr == nil {
			liked = false
			return tx.Delete(&existing).Error
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		like := models.Like{UserID: actorID, MessageID: messageID}
		if err := tx.Create(&like).Error; err != nil {
			// A concurrent toggle won the insert; the edge exists either way.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				liked = true
				return nil
			}
			return err
		}
		liked = true
		return nil
	})
	return liked, err
}

// ListLiked returns the messages the user has liked, most recently liked
// first, with their authors.
func (s *LikeService) ListLiked(ctx context.Context, userID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Order("likes.created_at DESC, likes.id DESC").
		Preload("User").
		Find(&msgs).Error
	return msgs, err
}

// LikedMessageIDs returns the set of message ids the user has liked.
func (s *LikeService) LikedMessageIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).
		Pluck("message_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// CountByUser returns how many messages the user has liked.
func (s *LikeService) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
