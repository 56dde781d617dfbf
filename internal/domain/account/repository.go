package account

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository abstracts user and post persistence.
type Repository interface {
	Create(ctx context.Context, user User) (User, error)
	GetByUsername(ctx context.Context, username string) (User, bool, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	GetByUsernameOrEmail(ctx context.Context, value string) (User, bool, error)
	GetProfile(ctx context.Context, id uuid.UUID) (Profile, bool, error)
	SetOnline(ctx context.Context, id uuid.UUID, online bool) (User, bool, error)
	SetProfilePicture(ctx context.Context, id uuid.UUID, key string) (bool, error)
	AppendPost(ctx context.Context, id uuid.UUID, post Post) ([]Post, bool, error)
	Delete(ctx context.Context, id uuid.UUID) (User, bool, error)
}

// TokenBlacklist records revoked tokens. Entries only matter until the
// token's own expiry passes, so stores may drop them after ttl.
type TokenBlacklist interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

// AvatarStorage persists profile-picture bytes and returns the stored
// object reference.
type AvatarStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
