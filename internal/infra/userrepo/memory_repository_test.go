package userrepo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/coinboard/coinboard/internal/domain/account"
)

func seedUser(t *testing.T, repo *MemoryRepository, username, email string) account.User {
	t.Helper()
	user, err := repo.Create(context.Background(), account.User{
		ID:           uuid.New(),
		Username:     username,
		EmailAddress: email,
		Password:     "$2a$10$hash",
		IsOnline:     true,
		MyCoins:      []string{},
		JoinedDate:   time.Now().UTC(),
	})
	require.NoError(t, err)
	return user
}

func TestMemoryRepository_UniqueConstraints(t *testing.T) {
	repo := NewMemoryRepository()
	seedUser(t, repo, "alice01", "alice@example.com")

	_, err := repo.Create(context.Background(), account.User{
		ID:           uuid.New(),
		Username:     "alice01",
		EmailAddress: "other@example.com",
	})
	require.ErrorIs(t, err, account.ErrUsernameExists)

	_, err = repo.Create(context.Background(), account.User{
		ID:           uuid.New(),
		Username:     "bobby22",
		EmailAddress: "alice@example.com",
	})
	require.ErrorIs(t, err, account.ErrEmailExists)
}

func TestMemoryRepository_GetByUsernameOrEmail(t *testing.T) {
	repo := NewMemoryRepository()
	created := seedUser(t, repo, "alice01", "alice@example.com")

	byName, found, err := repo.GetByUsernameOrEmail(context.Background(), "alice01")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, created.ID, byName.ID)

	byEmail, found, err := repo.GetByUsernameOrEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, created.ID, byEmail.ID)

	// Exact match only; no case folding.
	_, found, err = repo.GetByUsernameOrEmail(context.Background(), "ALICE01")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryRepository_AppendPostKeepsOrder(t *testing.T) {
	repo := NewMemoryRepository()
	created := seedUser(t, repo, "alice01", "alice@example.com")

	first := account.Post{ID: uuid.New(), Author: "alice01", Text: "first", Likes: []string{}, PostTime: time.Now().UTC()}
	second := account.Post{ID: uuid.New(), Author: "alice01", Text: "second", Likes: []string{}, PostTime: time.Now().UTC()}

	posts, found, err := repo.AppendPost(context.Background(), created.ID, first)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, posts, 1)

	posts, found, err = repo.AppendPost(context.Background(), created.ID, second)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, posts, 2)
	require.Equal(t, "first", posts[0].Text)
	require.Equal(t, "second", posts[1].Text)

	_, found, err = repo.AppendPost(context.Background(), uuid.New(), first)
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryRepository_DeleteRemovesPostsAndIndexes(t *testing.T) {
	repo := NewMemoryRepository()
	created := seedUser(t, repo, "alice01", "alice@example.com")

	_, found, err := repo.AppendPost(context.Background(), created.ID, account.Post{ID: uuid.New(), Author: "alice01", Text: "bye"})
	require.NoError(t, err)
	require.True(t, found)

	deleted, found, err := repo.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "alice01", deleted.Username)

	_, found, err = repo.GetByUsername(context.Background(), "alice01")
	require.NoError(t, err)
	require.False(t, found)

	// The username and email are free for a new registration.
	seedUser(t, repo, "alice01", "alice@example.com")

	_, found, err = repo.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryRepository_ProfileProjection(t *testing.T) {
	repo := NewMemoryRepository()
	created := seedUser(t, repo, "alice01", "alice@example.com")

	ok, err := repo.SetProfilePicture(context.Background(), created.ID, "avatars/a/b")
	require.NoError(t, err)
	require.True(t, ok)

	profile, found, err := repo.GetProfile(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "alice01", profile.Username)
	require.Equal(t, "avatars/a/b", profile.ProfilePicture)
	require.NotNil(t, profile.MyCoins)
}
