// Package auth verifies user credentials against the account store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vdblog/vdblog-backend/internal/db/entities"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
)

// ErrInvalidCredentials covers unknown users, wrong passwords and inactive accounts alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Cost is the bcrypt work factor used by HashPassword.
var Cost = bcrypt.DefaultCost

var (
	dummyHash     []byte
	dummyHashOnce sync.Once
)

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// burnCompare spends the time of one bcrypt comparison so unknown usernames
// take as long to reject as wrong passwords.
func burnCompare(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), Cost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Authenticator checks credentials and loads users for sessions
type Authenticator struct {
	users  interfaces.UserRepository
	logger *zap.SugaredLogger
}

func NewAuthenticator(users interfaces.UserRepository, logger *zap.SugaredLogger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Authenticator{users: users, logger: logger}
}

// Authenticate returns the active user identified by username and password
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*entities.User, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if errors.Is(err, interfaces.ErrNotFound) {
		burnCompare(password)
		a.logger.Infow("Login failed", "username", username, "reason", "unknown_user")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user %q: %w", username, err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		a.logger.Infow("Login failed", "username", username, "reason", "bad_password")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		a.logger.Infow("Login failed", "username", username, "reason", "inactive")
		return nil, ErrInvalidCredentials
	}

	a.logger.Infow("Login succeeded", "username", username, "user_id", user.ID)
	return user, nil
}

// ActiveUser loads a user for an existing session. Deleted and inactive users
// yield ErrInvalidCredentials.
func (a *Authenticator) ActiveUser(ctx context.Context, id int64) (*entities.User, error) {
	user, err := a.users.Get(ctx, id)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CreateUser hashes password and stores a new account
func (a *Authenticator) CreateUser(ctx context.Context, u *entities.User, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	if err := a.users.Create(ctx, u); err != nil {
		return fmt.Errorf("create user %q: %w", u.Username, err)
	}
	a.logger.Infow("User created", "username", u.Username, "user_id", u.ID, "staff", u.IsStaff)
	return nil
}
