package account_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coinboard/coinboard/internal/domain/account"
	"github.com/coinboard/coinboard/internal/infra/avatarstore"
	"github.com/coinboard/coinboard/internal/infra/tokenstore"
	"github.com/coinboard/coinboard/internal/infra/userrepo"
	apperrors "github.com/coinboard/coinboard/pkg/errors"
)

func newTestService(t *testing.T, ttl time.Duration) (account.Service, *userrepo.MemoryRepository) {
	t.Helper()
	repo := userrepo.NewMemoryRepository()
	svc := account.NewService(account.Config{
		Secret:   "test-secret",
		TokenTTL: ttl,
	}, repo, tokenstore.NewMemoryStore(), avatarstore.NewMemoryStore(), newTestLogger())
	return svc, repo
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func register(t *testing.T, svc account.Service, username, email string) account.RegisterResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), account.RegisterRequest{
		Username:     username,
		Password:     "Secret1",
		EmailAddress: email,
	})
	require.NoError(t, err)
	return resp
}

func TestService_RegisterIssuesTokenAndDefaults(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	resp := register(t, svc, "alice01", "alice@example.com")
	require.Equal(t, "alice01", resp.Username)
	require.Equal(t, "alice@example.com", resp.EmailAddress)
	require.True(t, resp.IsOnline)
	require.Empty(t, resp.Posts)
	require.NotEmpty(t, resp.Token)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	require.Equal(t, resp.ID, claims.UserID)
	require.Equal(t, "alice01", claims.Username)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestService_RegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	register(t, svc, "alice01", "alice@example.com")

	_, err := svc.Register(context.Background(), account.RegisterRequest{
		Username:     "alice01",
		Password:     "Other99",
		EmailAddress: "other@example.com",
	})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "username_exists"))
	require.Contains(t, err.Error(), "Someone is already registered with that username.")
}

func TestService_RegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	register(t, svc, "alice01", "alice@example.com")

	_, err := svc.Register(context.Background(), account.RegisterRequest{
		Username:     "bobby22",
		Password:     "Other99",
		EmailAddress: "alice@example.com",
	})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "email_exists"))
	require.Contains(t, err.Error(), "email address")
}

func TestService_RegisterValidation(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	cases := []struct {
		name string
		req  account.RegisterRequest
		want string
	}{
		{
			name: "short username",
			req:  account.RegisterRequest{Username: "al", Password: "Secret1", EmailAddress: "alice@example.com"},
			want: "username must be between 6 and 18 characters",
		},
		{
			name: "long username",
			req:  account.RegisterRequest{Username: "averyveryverylongusername", Password: "Secret1", EmailAddress: "alice@example.com"},
			want: "username must be between 6 and 18 characters",
		},
		{
			name: "missing password",
			req:  account.RegisterRequest{Username: "alice01", EmailAddress: "alice@example.com"},
			want: "password is required",
		},
		{
			name: "malformed email",
			req:  account.RegisterRequest{Username: "alice01", Password: "Secret1", EmailAddress: "not-an-email"},
			want: "emailAddress must be a valid email address",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.req)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, "invalid_input"))
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestService_LoginByUsernameOrEmail(t *testing.T) {
	svc, repo := newTestService(t, time.Hour)
	register(t, svc, "alice01", "alice@example.com")

	byName, err := svc.Login(context.Background(), account.LoginRequest{
		UsernameOrEmailAddress: "alice01",
		Password:               "Secret1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, byName)

	byEmail, err := svc.Login(context.Background(), account.LoginRequest{
		UsernameOrEmailAddress: "alice@example.com",
		Password:               "Secret1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, byEmail)

	user, found, err := repo.GetByUsername(context.Background(), "alice01")
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, user.IsOnline)
}

func TestService_LoginFailuresShareOneMessage(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	register(t, svc, "alice01", "alice@example.com")

	_, wrongPassword := svc.Login(context.Background(), account.LoginRequest{
		UsernameOrEmailAddress: "alice01",
		Password:               "Secret2",
	})
	require.Error(t, wrongPassword)
	require.True(t, apperrors.IsCode(wrongPassword, "invalid_credentials"))

	_, unknownUser := svc.Login(context.Background(), account.LoginRequest{
		UsernameOrEmailAddress: "nobody99",
		Password:               "Secret1",
	})
	require.Error(t, unknownUser)
	require.True(t, apperrors.IsCode(unknownUser, "invalid_credentials"))

	// Identical messages keep account existence unguessable.
	require.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestService_LoginValidation(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	_, err := svc.Login(context.Background(), account.LoginRequest{
		UsernameOrEmailAddress: "al",
		Password:               "Secret1",
	})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.Login(context.Background(), account.LoginRequest{
		UsernameOrEmailAddress: "alice01",
		Password:               "short",
	})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestService_LogoutRevokesTokenAndMarksOffline(t *testing.T) {
	svc, repo := newTestService(t, time.Hour)
	resp := register(t, svc, "alice01", "alice@example.com")

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)

	message, err := svc.Logout(context.Background(), claims, resp.Token)
	require.NoError(t, err)
	require.Contains(t, message, `"alice01" logged out successfully`)

	revoked, err := svc.IsTokenRevoked(context.Background(), resp.Token)
	require.NoError(t, err)
	require.True(t, revoked)

	// The token itself still verifies; only the blacklist rejects it.
	_, err = svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)

	user, found, err := repo.GetByUsername(context.Background(), "alice01")
	require.NoError(t, err)
	require.True(t, found)
	require.False(t, user.IsOnline)
}

func TestService_CreatePostForcesAuthor(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	resp := register(t, svc, "alice01", "alice@example.com")
	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)

	posts, err := svc.CreatePost(context.Background(), claims, "gm, bullish on everything")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, "alice01", posts[0].Author)
	require.Equal(t, "gm, bullish on everything", posts[0].Text)
	require.Empty(t, posts[0].Likes)
	require.NotNil(t, posts[0].Likes)

	posts, err = svc.CreatePost(context.Background(), claims, "second thoughts")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, "second thoughts", posts[1].Text)
}

func TestService_ProfileExcludesSensitiveFields(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	resp := register(t, svc, "alice01", "alice@example.com")

	profile, err := svc.Profile(context.Background(), resp.ID)
	require.NoError(t, err)
	require.Equal(t, "alice01", profile.Username)
	require.Equal(t, "alice@example.com", profile.EmailAddress)
	require.True(t, profile.IsOnline)
	require.NotNil(t, profile.MyCoins)
	require.False(t, profile.JoinedDate.IsZero())
}

func TestService_DeleteAccount(t *testing.T) {
	svc, repo := newTestService(t, time.Hour)
	resp := register(t, svc, "alice01", "alice@example.com")
	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)

	message, err := svc.DeleteAccount(context.Background(), claims, resp.Token)
	require.NoError(t, err)
	require.Contains(t, message, `"alice01" deleted successfully`)

	_, found, err := repo.GetByUsername(context.Background(), "alice01")
	require.NoError(t, err)
	require.False(t, found)

	revoked, err := svc.IsTokenRevoked(context.Background(), resp.Token)
	require.NoError(t, err)
	require.True(t, revoked)

	// Deleting again is a soft miss, not an error.
	message, err = svc.DeleteAccount(context.Background(), claims, resp.Token)
	require.NoError(t, err)
	require.Equal(t, "User not found.", message)

	_, err = svc.Profile(context.Background(), claims.UserID)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "user_not_found"))
}

func TestService_SetProfilePicture(t *testing.T) {
	svc, repo := newTestService(t, time.Hour)
	resp := register(t, svc, "alice01", "alice@example.com")
	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)

	ref, err := svc.SetProfilePicture(context.Background(), claims, []byte{0x89, 0x50, 0x4e, 0x47}, "image/png")
	require.NoError(t, err)
	require.NotEmpty(t, ref)

	profile, found, err := repo.GetProfile(context.Background(), claims.UserID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, ref, profile.ProfilePicture)

	_, err = svc.SetProfilePicture(context.Background(), claims, nil, "image/png")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestService_ExpiredTokenRejected(t *testing.T) {
	svc, _ := newTestService(t, -time.Minute)
	resp := register(t, svc, "alice01", "alice@example.com")

	_, err := svc.ValidateToken(context.Background(), resp.Token)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_token"))
}

func TestService_MissingTokenRejected(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	_, err := svc.ValidateToken(context.Background(), "   ")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_token"))

	_, err = svc.ValidateToken(context.Background(), "not.a.token")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_token"))
}
