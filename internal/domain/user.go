package domain

import "errors"

var (
	// ErrUserAlreadyExists is returned when trying to register an email that is already taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the email/password combination is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is the identity of the signed-in user as held by the web front.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Account is a stored user record on the API side.
type Account struct {
	ID           string // UUIDv7
	Name         string // Display name
	Email        string // Login email, unique
	PasswordHash []byte // bcrypt hash
	CreatedAt    int64  // Unix timestamp of account creation
}

// User returns the public part of the account.
func (a Account) User() User {
	return User{
		ID:    a.ID,
		Name:  a.Name,
		Email: a.Email,
	}
}
