package account

import (
	"time"

	"github.com/google/uuid"
)

// Config drives account and token behavior.
type Config struct {
	Secret   string
	TokenTTL time.Duration
}

// User represents a persisted account with its embedded posts.
type User struct {
	ID             uuid.UUID `json:"_id"`
	Username       string    `json:"username"`
	EmailAddress   string    `json:"emailAddress"`
	Password       string    `json:"-"`
	IsOnline       bool      `json:"isOnline"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	AboutMe        string    `json:"aboutMe"`
	Bullish        string    `json:"bullish"`
	MyCoins        []string  `json:"myCoins"`
	Posts          []Post    `json:"posts"`
	JoinedDate     time.Time `json:"joinedDate"`
}

// Post is owned by exactly one user. Posts are only ever appended.
type Post struct {
	ID       uuid.UUID `json:"_id"`
	Author   string    `json:"author"`
	PostTime time.Time `json:"postTime"`
	Text     string    `json:"text"`
	Likes    []string  `json:"likes"`
}

// RegisterRequest captures the registration payload.
type RegisterRequest struct {
	Username     string   `json:"username"`
	Password     string   `json:"password"`
	EmailAddress string   `json:"emailAddress"`
	IsOnline     *bool    `json:"isOnline,omitempty"`
	AboutMe      string   `json:"aboutMe,omitempty"`
	Bullish      string   `json:"bullish,omitempty"`
	MyCoins      []string `json:"myCoins,omitempty"`
	Posts        []Post   `json:"posts,omitempty"`
}

// RegisterResponse is the user summary returned on signup. The token
// travels in the x-auth-token header, not the body.
type RegisterResponse struct {
	ID           uuid.UUID `json:"_id"`
	Username     string    `json:"username"`
	EmailAddress string    `json:"emailAddress"`
	IsOnline     bool      `json:"isOnline"`
	Posts        []Post    `json:"posts"`
	Token        string    `json:"-"`
}

// LoginRequest captures login details. The single field matches either
// a username or an email address.
type LoginRequest struct {
	UsernameOrEmailAddress string `json:"usernameOrEmailAddress"`
	Password               string `json:"password"`
}

// Profile trims sensitive and internal fields from the user record.
type Profile struct {
	Username       string    `json:"username"`
	EmailAddress   string    `json:"emailAddress"`
	IsOnline       bool      `json:"isOnline"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	AboutMe        string    `json:"aboutMe"`
	Bullish        string    `json:"bullish"`
	MyCoins        []string  `json:"myCoins"`
	JoinedDate     time.Time `json:"joinedDate"`
}

// Claims are extracted from a verified token.
type Claims struct {
	UserID    uuid.UUID
	Username  string
	ExpiresAt time.Time
}
