package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"path"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/coinboard/coinboard/pkg/errors"
)

// Service exposes the account workflows.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error)
	Login(ctx context.Context, req LoginRequest) (string, error)
	Logout(ctx context.Context, claims Claims, token string) (string, error)
	Profile(ctx context.Context, userID uuid.UUID) (Profile, error)
	DeleteAccount(ctx context.Context, claims Claims, token string) (string, error)
	CreatePost(ctx context.Context, claims Claims, text string) ([]Post, error)
	SetProfilePicture(ctx context.Context, claims Claims, data []byte, contentType string) (string, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
	IsTokenRevoked(ctx context.Context, token string) (bool, error)
}

type service struct {
	cfg       Config
	repo      Repository
	blacklist TokenBlacklist
	avatars   AvatarStorage
	logger    *slog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg Config, repo Repository, blacklist TokenBlacklist, avatars AvatarStorage, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		repo:      repo,
		blacklist: blacklist,
		avatars:   avatars,
		logger:    logger.With("component", "account.service"),
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	if err := validateRegistration(req); err != nil {
		return RegisterResponse{}, apperrors.Wrap("invalid_input", err.Error(), nil)
	}
	if _, taken, err := s.repo.GetByUsername(ctx, req.Username); err != nil {
		return RegisterResponse{}, apperrors.Wrap("account_error", "failed to check username", err)
	} else if taken {
		return RegisterResponse{}, apperrors.Wrap("username_exists", "Someone is already registered with that username.", nil)
	}
	if _, taken, err := s.repo.GetByEmail(ctx, req.EmailAddress); err != nil {
		return RegisterResponse{}, apperrors.Wrap("account_error", "failed to check email address", err)
	} else if taken {
		return RegisterResponse{}, apperrors.Wrap("email_exists", "Someone is already registered with that email address.", nil)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return RegisterResponse{}, apperrors.Wrap("account_error", "failed to hash password", err)
	}
	user, err := s.repo.Create(ctx, User{
		ID:           uuid.New(),
		Username:     req.Username,
		EmailAddress: req.EmailAddress,
		Password:     string(hashed),
		IsOnline:     true,
		AboutMe:      "",
		Bullish:      "",
		MyCoins:      []string{},
		Posts:        []Post{},
		JoinedDate:   time.Now().UTC(),
	})
	if err != nil {
		// The unique constraints backstop a racing registration.
		switch {
		case errors.Is(err, ErrUsernameExists):
			return RegisterResponse{}, apperrors.Wrap("username_exists", "Someone is already registered with that username.", err)
		case errors.Is(err, ErrEmailExists):
			return RegisterResponse{}, apperrors.Wrap("email_exists", "Someone is already registered with that email address.", err)
		}
		return RegisterResponse{}, apperrors.Wrap("account_error", "failed to create user", err)
	}
	token, err := s.generateToken(user)
	if err != nil {
		return RegisterResponse{}, err
	}
	return RegisterResponse{
		ID:           user.ID,
		Username:     user.Username,
		EmailAddress: user.EmailAddress,
		IsOnline:     user.IsOnline,
		Posts:        user.Posts,
		Token:        token,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (string, error) {
	if err := validateLogin(req); err != nil {
		return "", apperrors.Wrap("invalid_input", err.Error(), nil)
	}
	user, found, err := s.repo.GetByUsernameOrEmail(ctx, req.UsernameOrEmailAddress)
	if err != nil {
		return "", apperrors.Wrap("account_error", "failed to fetch user", err)
	}
	// One message for unknown user and wrong password; no account probing.
	if !found {
		return "", apperrors.Wrap("invalid_credentials", "Invalid login. Please try again.", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", apperrors.Wrap("invalid_credentials", "Invalid login. Please try again.", nil)
	}
	if _, _, err := s.repo.SetOnline(ctx, user.ID, true); err != nil {
		return "", apperrors.Wrap("account_error", "failed to mark user online", err)
	}
	return s.generateToken(user)
}

func (s *service) Logout(ctx context.Context, claims Claims, token string) (string, error) {
	user, found, err := s.repo.SetOnline(ctx, claims.UserID, false)
	if err != nil {
		return "", apperrors.Wrap("account_error", "failed to mark user offline", err)
	}
	if !found {
		return "", apperrors.Wrap("account_error", "user no longer exists", nil)
	}
	if err := s.revokeToken(ctx, claims, token); err != nil {
		return "", err
	}
	return fmt.Sprintf("User %q logged out successfully.", user.Username), nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	profile, found, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return Profile{}, apperrors.Wrap("account_error", "failed to load profile", err)
	}
	if !found {
		return Profile{}, apperrors.Wrap("user_not_found", "user not found", nil)
	}
	return profile, nil
}

func (s *service) DeleteAccount(ctx context.Context, claims Claims, token string) (string, error) {
	user, found, err := s.repo.Delete(ctx, claims.UserID)
	if err != nil {
		return "", apperrors.Wrap("account_error", "failed to delete user", err)
	}
	// An already-absent account is a soft miss, not an error.
	if !found {
		return "User not found.", nil
	}
	if err := s.revokeToken(ctx, claims, token); err != nil {
		return "", err
	}
	return fmt.Sprintf("User %q deleted successfully.", user.Username), nil
}

func (s *service) CreatePost(ctx context.Context, claims Claims, text string) ([]Post, error) {
	post := Post{
		ID:       uuid.New(),
		Author:   claims.Username, // never trust a client-supplied author
		PostTime: time.Now().UTC(),
		Text:     text,
		Likes:    []string{},
	}
	posts, found, err := s.repo.AppendPost(ctx, claims.UserID, post)
	if err != nil {
		return nil, apperrors.Wrap("account_error", "failed to append post", err)
	}
	if !found {
		return nil, apperrors.Wrap("user_not_found", "user not found", nil)
	}
	return posts, nil
}

func (s *service) SetProfilePicture(ctx context.Context, claims Claims, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", apperrors.Wrap("invalid_input", "image data cannot be empty", nil)
	}
	key := path.Join("avatars", claims.UserID.String(), uuid.NewString())
	ref, err := s.avatars.Put(ctx, key, data, contentType)
	if err != nil {
		return "", apperrors.Wrap("storage_error", "failed to store profile picture", err)
	}
	found, err := s.repo.SetProfilePicture(ctx, claims.UserID, ref)
	if err != nil {
		return "", apperrors.Wrap("account_error", "failed to record profile picture", err)
	}
	if !found {
		return "", apperrors.Wrap("user_not_found", "user not found", nil)
	}
	return ref, nil
}

func (s *service) ValidateToken(ctx context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap("invalid_token", "token missing", nil)
	}
	return s.parseToken(token)
}

func (s *service) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	revoked, err := s.blacklist.Contains(ctx, token)
	if err != nil {
		return false, apperrors.Wrap("account_error", "failed to check token blacklist", err)
	}
	return revoked, nil
}

func (s *service) revokeToken(ctx context.Context, claims Claims, token string) error {
	ttl := time.Until(claims.ExpiresAt)
	if ttl < time.Minute {
		ttl = time.Minute
	}
	if err := s.blacklist.Add(ctx, token, ttl); err != nil {
		return apperrors.Wrap("account_error", "failed to blacklist token", err)
	}
	return nil
}

func (s *service) generateToken(user User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID:   user.ID.String(),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", apperrors.Wrap("account_error", "failed to sign token", err)
	}
	return signed, nil
}

func (s *service) parseToken(token string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, apperrors.Wrap("invalid_token", "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap("invalid_token", "token invalid", nil)
	}
	if claims.ExpiresAt == nil {
		return Claims{}, apperrors.Wrap("invalid_token", "token missing expiry", nil)
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Claims{}, apperrors.Wrap("invalid_token", "token subject invalid", err)
	}
	return Claims{
		UserID:    userID,
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func validateRegistration(req RegisterRequest) error {
	if err := boundedString("username", req.Username, 6, 18); err != nil {
		return err
	}
	if req.Password == "" {
		return errors.New("password is required")
	}
	if err := boundedString("emailAddress", req.EmailAddress, 6, 255); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(req.EmailAddress); err != nil {
		return errors.New("emailAddress must be a valid email address")
	}
	if len([]rune(req.AboutMe)) > 4096 {
		return errors.New("aboutMe cannot exceed 4096 characters")
	}
	return nil
}

func validateLogin(req LoginRequest) error {
	if err := boundedString("usernameOrEmailAddress", req.UsernameOrEmailAddress, 6, 255); err != nil {
		return err
	}
	return boundedString("password", req.Password, 6, 255)
}

func boundedString(field, value string, min, max int) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	if n := len([]rune(value)); n < min || n > max {
		return fmt.Errorf("%s must be between %d and %d characters", field, min, max)
	}
	return nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"_id"`
	Username string `json:"username"`
}
