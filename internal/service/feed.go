package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/warblerhq/warbler/internal/models"
)

// FeedLimit caps the home feed at the 100 most recent messages.
const FeedLimit = 100

// FeedMessage is a message annotated with the viewer's like state.
type FeedMessage struct {
	models.Message
	Liked bool
}

// FeedService assembles the home feed.
type FeedService struct {
	db    *gorm.DB
	likes *LikeService
}

func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{db: db, likes: NewLikeService(db)}
}

// Home returns the FeedLimit most recent messages authored by users the
// viewer follows, newest first. Filtering, ordering, and the cap all happen
// in a single storage-side query; at the boundary (100 or more candidate
// messages) exactly the 100 most recent are returned.
func (s *FeedService) Home(ctx context.Context, viewerID uint) ([]FeedMessage, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followed_id = messages.user_id").
		Where("follows.follower_id = ?", viewerID).
		Order("messages.created_at DESC, messages.id DESC").
		Limit(FeedLimit).
		Preload("User").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}

	likedIDs, err := s.likes.LikedMessageIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	feed := make([]FeedMessage, len(msgs))
	for i, msg := range msgs {
		feed[i] = FeedMessage{Message: msg, Liked: likedIDs[msg.ID]}
	}
	return feed, nil
}
