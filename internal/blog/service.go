// Package blog implements the content rules of the API: who may read or
// change categories, posts and comments, and which records each caller sees.
package blog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vdblog/vdblog-backend/internal/authz"
	"github.com/vdblog/vdblog-backend/internal/db/interfaces"
	"github.com/vdblog/vdblog-backend/internal/util"
	"github.com/vdblog/vdblog-backend/internal/validation"
)

var (
	ErrNotFound         = errors.New("Not found.")
	ErrNotAuthenticated = errors.New("Authentication credentials were not provided.")
	ErrPermissionDenied = errors.New("You do not have permission to perform this action.")
)

// ValidationError carries field level messages for a rejected payload.
type ValidationError struct {
	Fields validation.FieldErrors
}

func (e *ValidationError) Error() string {
	return e.Fields.Error()
}

func invalid(fields validation.FieldErrors) error {
	return &ValidationError{Fields: fields}
}

func invalidPK(id int64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

// Viewer identifies the caller of an operation. The zero value is anonymous.
type Viewer struct {
	UserID   int64
	Username string
	IsStaff  bool
}

func (v Viewer) Authenticated() bool {
	return v.UserID != 0
}

func (v Viewer) Role() authz.Role {
	switch {
	case !v.Authenticated():
		return authz.RoleAnonymous
	case v.IsStaff:
		return authz.RoleStaff
	default:
		return authz.RoleUser
	}
}

// Authorizer decides whether a role may perform an action on an object.
type Authorizer interface {
	Allowed(role authz.Role, obj authz.Object, act authz.Action) (bool, error)
}

// Recorder receives domain counters. A nil Recorder disables them.
type Recorder interface {
	RecordPostCreated(ctx context.Context, published bool)
	RecordCommentCreated(ctx context.Context)
	RecordModeration(ctx context.Context, approved bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordPostCreated(context.Context, bool) {}
func (nopRecorder) RecordCommentCreated(context.Context)    {}
func (nopRecorder) RecordModeration(context.Context, bool)  {}

// Service applies permissions and visibility on top of the repositories.
type Service struct {
	db      interfaces.Database
	authz   Authorizer
	metrics Recorder
	logger  *zap.SugaredLogger

	stats util.Group[*Stats]
}

func NewService(db interfaces.Database, authorizer Authorizer, recorder Recorder, logger *zap.SugaredLogger) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		db:      db,
		authz:   authorizer,
		metrics: recorder,
		logger:  logger,
	}
}

func (s *Service) can(v Viewer, obj authz.Object, act authz.Action) (bool, error) {
	ok, err := s.authz.Allowed(v.Role(), obj, act)
	if err != nil {
		return false, fmt.Errorf("authorize %s %s: %w", act, obj, err)
	}
	return ok, nil
}

// authorize fails with ErrNotAuthenticated for anonymous callers and
// ErrPermissionDenied for signed in ones.
func (s *Service) authorize(v Viewer, obj authz.Object, act authz.Action) error {
	ok, err := s.can(v, obj, act)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if !v.Authenticated() {
		return ErrNotAuthenticated
	}
	return ErrPermissionDenied
}

// lookup maps a missing record to ErrNotFound and wraps anything else.
func lookup(op string, err error) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func updateAction(partial bool) authz.Action {
	if partial {
		return authz.ActPartialUpdate
	}
	return authz.ActUpdate
}

// check validates in fully or, for partial updates, only its present fields.
func check(in any, partial bool) validation.FieldErrors {
	if partial {
		return validation.Partial(in)
	}
	return validation.Struct(in)
}
