package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warblerhq/warbler/internal/models"
	"github.com/warblerhq/warbler/internal/service"
	"github.com/warblerhq/warbler/internal/testhelpers"
)

func TestMessageCreate(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	messages := service.NewMessageService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")

	msg, err := messages.Create(ctx, alice.ID, "  hello world  ")
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, "hello world", msg.Text)
	assert.Equal(t, alice.ID, msg.UserID)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestMessageCreateValidation(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	messages := service.NewMessageService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")

	_, err := messages.Create(ctx, alice.ID, "")
	assert.ErrorIs(t, err, service.ErrEmptyText)

	_, err = messages.Create(ctx, alice.ID, "   \n\t  ")
	assert.ErrorIs(t, err, service.ErrEmptyText)

	_, err = messages.Create(ctx, alice.ID, strings.Repeat("a", models.MaxMessageLength+1))
	assert.ErrorIs(t, err, service.ErrTextTooLong)

	// Length is counted in characters, not bytes.
	msg, err := messages.Create(ctx, alice.ID, strings.Repeat("ø", models.MaxMessageLength))
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
}

func TestMessageGet(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	messages := service.NewMessageService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	created := createMessage(t, db, alice.ID, "hello", time.Now())

	msg, err := messages.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, "alice", msg.User.Username)

	_, err = messages.Get(ctx, 99999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestMessageDeleteOwnership(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	messages := service.NewMessageService(db)
	likes := service.NewLikeService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	msg := createMessage(t, db, alice.ID, "mine", time.Now())

	_, err := likes.Toggle(ctx, bob.ID, msg.ID)
	require.NoError(t, err)

	err = messages.Delete(ctx, bob.ID, msg.ID)
	assert.ErrorIs(t, err, service.ErrNotOwner)

	// Still present after the rejected delete.
	_, err = messages.Get(ctx, msg.ID)
	require.NoError(t, err)

	require.NoError(t, messages.Delete(ctx, alice.ID, msg.ID))

	_, err = messages.Get(ctx, msg.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	var likeCount int64
	db.Model(&models.Like{}).Where("message_id = ?", msg.ID).Count(&likeCount)
	assert.Zero(t, likeCount)
}

func TestMessageDeleteNotFound(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	messages := service.NewMessageService(db)

	alice := createUser(t, db, "alice")

	err := messages.Delete(context.Background(), alice.ID, 99999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRecentByUser(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	messages := service.NewMessageService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	base := time.Now().Add(-time.Hour)
	createMessage(t, db, alice.ID, "first", base)
	createMessage(t, db, alice.ID, "second", base.Add(time.Minute))
	createMessage(t, db, alice.ID, "third", base.Add(2*time.Minute))
	createMessage(t, db, bob.ID, "not hers", base.Add(3*time.Minute))

	recent, err := messages.RecentByUser(ctx, alice.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Text)
	assert.Equal(t, "second", recent[1].Text)
}
