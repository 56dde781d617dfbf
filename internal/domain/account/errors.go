package account

import "errors"

// ErrUsernameExists indicates a duplicate username.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists indicates a duplicate email address.
var ErrEmailExists = errors.New("email address already exists")

// ErrNotFound indicates the user row is gone.
var ErrNotFound = errors.New("user not found")
