package userrepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coinboard/coinboard/internal/domain/account"
)

// PostgresRepository persists users and their posts in Postgres. Posts
// live in a child table with ON DELETE CASCADE, so deleting a user row
// removes the embedded post list with it.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const userColumns = `id, username, email_address, password_hash, is_online, profile_picture, about_me, bullish, my_coins, joined_date`

// Create inserts a new user row.
func (r *PostgresRepository) Create(ctx context.Context, user account.User) (account.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, email_address, password_hash, is_online, profile_picture, about_me, bullish, my_coins, joined_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+userColumns+`
	`, user.ID, user.Username, user.EmailAddress, user.Password, user.IsOnline,
		user.ProfilePicture, user.AboutMe, user.Bullish, user.MyCoins, user.JoinedDate)
	created, err := scanUser(row)
	if err != nil {
		return account.User{}, mapUniqueViolation(err)
	}
	created.Posts = []account.Post{}
	return created, nil
}

// GetByUsername fetches a user by exact username.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (account.User, bool, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 LIMIT 1`, username)
}

// GetByEmail fetches a user by email address.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (account.User, bool, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email_address = $1 LIMIT 1`, email)
}

// GetByUsernameOrEmail resolves the single login field against either
// column in one disjunctive lookup.
func (r *PostgresRepository) GetByUsernameOrEmail(ctx context.Context, value string) (account.User, bool, error) {
	return r.getOne(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1 OR email_address = $1
		LIMIT 1
	`, value)
}

// GetProfile fetches the projected profile, excluding the password
// hash, the post list, and the row id.
func (r *PostgresRepository) GetProfile(ctx context.Context, id uuid.UUID) (account.Profile, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT username, email_address, is_online, profile_picture, about_me, bullish, my_coins, joined_date
		FROM users
		WHERE id = $1
		LIMIT 1
	`, id)
	if err != nil {
		return account.Profile{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return account.Profile{}, false, rows.Err()
	}
	var profile account.Profile
	var joined time.Time
	if err := rows.Scan(&profile.Username, &profile.EmailAddress, &profile.IsOnline,
		&profile.ProfilePicture, &profile.AboutMe, &profile.Bullish, &profile.MyCoins, &joined); err != nil {
		return account.Profile{}, false, err
	}
	profile.JoinedDate = joined.UTC()
	if profile.MyCoins == nil {
		profile.MyCoins = []string{}
	}
	return profile, true, rows.Err()
}

// SetOnline flips the online flag in a single statement.
func (r *PostgresRepository) SetOnline(ctx context.Context, id uuid.UUID, online bool) (account.User, bool, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET is_online = $2 WHERE id = $1
		RETURNING `+userColumns+`
	`, id, online)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return account.User{}, false, nil
	}
	if err != nil {
		return account.User{}, false, err
	}
	return user, true, nil
}

// SetProfilePicture records the stored object reference.
func (r *PostgresRepository) SetProfilePicture(ctx context.Context, id uuid.UUID, key string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET profile_picture = $2 WHERE id = $1`, id, key)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AppendPost inserts one post row and returns the refreshed ordered
// list. The single insert is the atomic append; a missing owner
// surfaces as a foreign-key violation.
func (r *PostgresRepository) AppendPost(ctx context.Context, id uuid.UUID, post account.Post) ([]account.Post, bool, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO posts (id, user_id, author, post_time, body, likes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, post.ID, id, post.Author, post.PostTime, post.Text, post.Likes)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, false, nil
		}
		return nil, false, err
	}
	posts, err := r.listPosts(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return posts, true, nil
}

// Delete removes the user row; posts cascade with it.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) (account.User, bool, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM users WHERE id = $1
		RETURNING `+userColumns+`
	`, id)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return account.User{}, false, nil
	}
	if err != nil {
		return account.User{}, false, err
	}
	return user, true, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (account.User, bool, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return account.User{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return account.User{}, false, rows.Err()
	}
	user, err := scanUser(rows)
	if err != nil {
		return account.User{}, false, err
	}
	return user, true, rows.Err()
}

func (r *PostgresRepository) listPosts(ctx context.Context, userID uuid.UUID) ([]account.Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, author, post_time, body, likes
		FROM posts
		WHERE user_id = $1
		ORDER BY post_time, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	posts := []account.Post{}
	for rows.Next() {
		var post account.Post
		var postTime time.Time
		if err := rows.Scan(&post.ID, &post.Author, &postTime, &post.Text, &post.Likes); err != nil {
			return nil, err
		}
		post.PostTime = postTime.UTC()
		if post.Likes == nil {
			post.Likes = []string{}
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (account.User, error) {
	var user account.User
	var joined time.Time
	if err := row.Scan(&user.ID, &user.Username, &user.EmailAddress, &user.Password, &user.IsOnline,
		&user.ProfilePicture, &user.AboutMe, &user.Bullish, &user.MyCoins, &joined); err != nil {
		return account.User{}, err
	}
	user.JoinedDate = joined.UTC()
	if user.MyCoins == nil {
		user.MyCoins = []string{}
	}
	return user, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "username"):
			return account.ErrUsernameExists
		case strings.Contains(pgErr.ConstraintName, "email"):
			return account.ErrEmailExists
		}
	}
	return err
}

var _ account.Repository = (*PostgresRepository)(nil)
