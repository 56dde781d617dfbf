package userrepo

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/coinboard/coinboard/internal/domain/account"
)

// MemoryRepository provides an in-memory user store for tests/dev.
type MemoryRepository struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]account.User
	usernameIndex map[string]uuid.UUID
	emailIndex    map[string]uuid.UUID
	posts         map[uuid.UUID][]account.Post
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:         make(map[uuid.UUID]account.User),
		usernameIndex: make(map[string]uuid.UUID),
		emailIndex:    make(map[string]uuid.UUID),
		posts:         make(map[uuid.UUID][]account.Post),
	}
}

// Create stores the user record.
func (r *MemoryRepository) Create(_ context.Context, user account.User) (account.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.usernameIndex[user.Username]; exists {
		return account.User{}, account.ErrUsernameExists
	}
	if _, exists := r.emailIndex[user.EmailAddress]; exists {
		return account.User{}, account.ErrEmailExists
	}
	user.Posts = []account.Post{}
	r.users[user.ID] = user
	r.usernameIndex[user.Username] = user.ID
	r.emailIndex[user.EmailAddress] = user.ID
	r.posts[user.ID] = []account.Post{}
	return user, nil
}

// GetByUsername returns a user by exact username.
func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (account.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.usernameIndex[username]; ok {
		return r.users[id], true, nil
	}
	return account.User{}, false, nil
}

// GetByEmail returns a user by email address.
func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (account.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.emailIndex[email]; ok {
		return r.users[id], true, nil
	}
	return account.User{}, false, nil
}

// GetByUsernameOrEmail resolves the login field against both indexes.
func (r *MemoryRepository) GetByUsernameOrEmail(_ context.Context, value string) (account.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.usernameIndex[value]; ok {
		return r.users[id], true, nil
	}
	if id, ok := r.emailIndex[value]; ok {
		return r.users[id], true, nil
	}
	return account.User{}, false, nil
}

// GetProfile returns the projected profile view.
func (r *MemoryRepository) GetProfile(_ context.Context, id uuid.UUID) (account.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return account.Profile{}, false, nil
	}
	coins := user.MyCoins
	if coins == nil {
		coins = []string{}
	}
	return account.Profile{
		Username:       user.Username,
		EmailAddress:   user.EmailAddress,
		IsOnline:       user.IsOnline,
		ProfilePicture: user.ProfilePicture,
		AboutMe:        user.AboutMe,
		Bullish:        user.Bullish,
		MyCoins:        coins,
		JoinedDate:     user.JoinedDate,
	}, true, nil
}

// SetOnline flips the online flag.
func (r *MemoryRepository) SetOnline(_ context.Context, id uuid.UUID, online bool) (account.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return account.User{}, false, nil
	}
	user.IsOnline = online
	r.users[id] = user
	return user, true, nil
}

// SetProfilePicture records the stored object reference.
func (r *MemoryRepository) SetProfilePicture(_ context.Context, id uuid.UUID, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return false, nil
	}
	user.ProfilePicture = key
	r.users[id] = user
	return true, nil
}

// AppendPost appends to the owner's post list and returns the result.
func (r *MemoryRepository) AppendPost(_ context.Context, id uuid.UUID, post account.Post) ([]account.Post, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return nil, false, nil
	}
	r.posts[id] = append(r.posts[id], post)
	out := make([]account.Post, len(r.posts[id]))
	copy(out, r.posts[id])
	return out, true, nil
}

// Delete removes the user and its posts.
func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) (account.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return account.User{}, false, nil
	}
	delete(r.users, id)
	delete(r.usernameIndex, user.Username)
	delete(r.emailIndex, user.EmailAddress)
	delete(r.posts, id)
	return user, true, nil
}

var _ account.Repository = (*MemoryRepository)(nil)
