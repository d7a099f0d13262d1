// Package initializer bootstraps a fresh blog: accounts first, then the demo
// content owned by the first account.
package initializer

import (
	"context"
	"errors"
	"fmt"

	"github.com/vdblog/vdblog-backend/internal/auth"
	"github.com/vdblog/vdblog-backend/internal/db"
	"github.com/vdblog/vdblog-backend/internal/db/entities"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
)

// UserSpec describes an account to create.
type UserSpec struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Staff     bool   `json:"staff"`
}

type Options struct {
	Users []UserSpec
	// Fixtures loads demo categories, posts and comments when the store has no categories yet.
	Fixtures bool
}

type Result struct {
	UserIDs        map[string]int64 `json:"user_ids"`
	ExistingUsers  []string         `json:"existing_users,omitempty"`
	FixturesLoaded bool             `json:"fixtures_loaded"`
}

// Initialize creates the requested users, skipping usernames that already
// exist, and optionally seeds demo content authored by the first user.
func Initialize(ctx context.Context, database interfaces.Database, authenticator *auth.Authenticator, opts Options) (Result, error) {
	result := Result{UserIDs: make(map[string]int64)}

	var authorID int64
	for _, spec := range opts.Users {
		if spec.Username == "" || spec.Password == "" {
			return result, fmt.Errorf("user %q needs a username and a password", spec.Username)
		}

		existing, err := database.Users().GetByUsername(ctx, spec.Username)
		switch {
		case err == nil:
			result.UserIDs[spec.Username] = existing.ID
			result.ExistingUsers = append(result.ExistingUsers, spec.Username)
		case errors.Is(err, interfaces.ErrNotFound):
			u := &entities.User{
				Username:  spec.Username,
				Email:     spec.Email,
				FirstName: spec.FirstName,
				LastName:  spec.LastName,
				IsStaff:   spec.Staff,
				IsActive:  true,
			}
			if err := authenticator.CreateUser(ctx, u, spec.Password); err != nil {
				return result, err
			}
			result.UserIDs[spec.Username] = u.ID
		default:
			return result, fmt.Errorf("look up user %q: %w", spec.Username, err)
		}

		if authorID == 0 {
			authorID = result.UserIDs[spec.Username]
		}
	}

	if !opts.Fixtures {
		return result, nil
	}
	if authorID == 0 {
		return result, errors.New("fixtures need at least one user to author them")
	}

	count, err := database.Categories().Count(ctx)
	if err != nil {
		return result, fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return result, nil
	}
	if err := db.SeedFixtures(ctx, database, authorID); err != nil {
		return result, fmt.Errorf("seed fixtures: %w", err)
	}
	result.FixturesLoaded = true
	return result, nil
}
