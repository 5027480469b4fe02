package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/warblerhq/warbler/internal/models"
)

// UserService handles profile lookups, profile edits, account deletion, and
// the social graph (follow edges).
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Get retrieves a user by id.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns all users, optionally filtered by a username substring.
func (s *UserService) List(ctx context.Context, search string) ([]models.User, error) {
	var users []models.User
	query := s.db.WithContext(ctx).Order("username")
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ?", like)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfileParams carries the editable profile fields.
type UpdateProfileParams struct {
	Username       string
	Email          string
	ImageURL       string
	HeaderImageURL string
	Bio            string
	Location       string
}

// UpdateProfile applies a profile edit. Username and email uniqueness
// conflicts come back as typed errors.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, params UpdateProfileParams) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if params.Username != "" && params.Username != user.Username {
		var existing models.User
		if err := db.Where("username = ? AND id <> ?", params.Username, userID).First(&existing).Error; err == nil {
			return nil, ErrUsernameTaken
		}
		user.Username = params.Username
	}
	if params.Email != "" && params.Email != user.Email {
		var existing models.User
		if err := db.Where("email = ? AND id <> ?", params.Email, userID).First(&existing).Error; err == nil {
			return nil, ErrEmailTaken
		}
		user.Email = params.Email
	}
	if params.ImageURL != "" {
		user.ImageURL = params.ImageURL
	}
	if params.HeaderImageURL != "" {
		user.HeaderImageURL = params.HeaderImageURL
	}
	user.Bio = params.Bio
	user.Location = params.Location

	if err := db.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return &user, nil
}

// SetImageURL stores a new profile image URL, used after an S3 upload.
func (s *UserService) SetImageURL(ctx context.Context, userID uint, url string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("image_url", url)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user together with all messages, follow edges in both
// directions, and like edges, in one transaction. No orphan rows remain.
func (s *UserService) Delete(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// Likes on this user's messages, then the user's own likes.
		if err := tx.Where("message_id IN (?)",
			tx.Model(&models.Message{}).Select("id").Where("user_id = ?", userID),
		).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Like{}).Error; err != nil {
			return err
		}

		if err := tx.Where("follower_id = ? OR followed_id = ?", userID, userID).Delete(&models.Follow{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Message{}).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
}

// Follow inserts a directed follow edge. A duplicate attempt, including one
// lost to a concurrent request, comes back as ErrDuplicateFollow.
func (s *UserService) Follow(ctx context.Context, followerID, followedID uint) error {
	if _, err := s.Get(ctx, followedID); err != nil {
		return err
	}

	edge := models.Follow{FollowerID: followerID, FollowedID: followedID}
	if err := s.db.WithContext(ctx).Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateFollow
		}
		return err
	}
	return nil
}

// Unfollow removes the matching edge. Removing a non-existent edge is a
// no-op, not an error.
func (s *UserService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	return s.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{}).Error
}

// Following returns the users this user follows, ordered by username.
func (s *UserService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	return users, err
}

// Followers returns the users following this user, ordered by username.
func (s *UserService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	return users, err
}

// IsFollowing reports whether a follows b.
func (s *UserService) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", a, b).
		Count(&count).Error
	return count > 0, err
}

// IsFollowedBy reports whether a is followed by b.
func (s *UserService) IsFollowedBy(ctx context.Context, a, b uint) (bool, error) {
	return s.IsFollowing(ctx, b, a)
}
