// Package session keeps server-side login state in a kv.Store and carries the
// opaque session ID in a signed cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/vdblog/vdblog-backend/pkg/kv"
)

// CookieName is the name of the session cookie
const CookieName = "sessionid"

const (
	keyPrefix = "session:"
	idValue   = "sid"
)

// ErrNoSession is returned when the request carries no valid session
var ErrNoSession = errors.New("no session")

// Data is the server-side state of a login
type Data struct {
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Options configures cookies and lifetime
type Options struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// Manager creates, resolves and destroys sessions
type Manager struct {
	store   kv.Store
	cookies *sessions.CookieStore
	ttl     time.Duration
	logger  *zap.SugaredLogger
}

func NewManager(store kv.Store, opts Options, logger *zap.SugaredLogger) *Manager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	cookies := sessions.NewCookieStore([]byte(opts.Secret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	// Also bounds the age accepted when decoding signed values.
	cookies.MaxAge(int(opts.TTL.Seconds()))

	return &Manager{
		store:   store,
		cookies: cookies,
		ttl:     opts.TTL,
		logger:  logger,
	}
}

// sessionID extracts the verified session ID from the request cookie.
func (m *Manager) sessionID(r *http.Request) (string, bool) {
	sess, err := m.cookies.New(r, CookieName)
	if err != nil || sess.IsNew {
		return "", false
	}
	id, ok := sess.Values[idValue].(string)
	return id, ok && id != ""
}

// Start creates a session for userID, replacing any session the request
// already carries, and writes the cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, r *http.Request, userID int64) error {
	if old, ok := m.sessionID(r); ok {
		if _, err := m.store.Del(ctx, keyPrefix+old); err != nil {
			return fmt.Errorf("drop previous session: %w", err)
		}
	}

	id := uuid.NewString()
	payload, err := json.Marshal(Data{UserID: userID, CreatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Set(ctx, keyPrefix+id, payload, m.ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	sess := sessions.NewSession(m.cookies, CookieName)
	opts := *m.cookies.Options
	sess.Options = &opts
	sess.IsNew = true
	sess.Values[idValue] = id
	if err := m.cookies.Save(r, w, sess); err != nil {
		return fmt.Errorf("write session cookie: %w", err)
	}

	m.logger.Debugw("Session started", "user_id", userID)
	return nil
}

// Lookup returns the session state referenced by the request cookie
func (m *Manager) Lookup(ctx context.Context, r *http.Request) (*Data, error) {
	id, ok := m.sessionID(r)
	if !ok {
		return nil, ErrNoSession
	}

	payload, err := m.store.Get(ctx, keyPrefix+id)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		m.logger.Warnw("Discarding corrupt session", "error", err)
		return nil, ErrNoSession
	}
	return &data, nil
}

// Destroy deletes the server state, if any, and expires the cookie
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if id, ok := m.sessionID(r); ok {
		if _, err := m.store.Del(ctx, keyPrefix+id); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}

	sess := sessions.NewSession(m.cookies, CookieName)
	opts := *m.cookies.Options
	opts.MaxAge = -1
	sess.Options = &opts
	if err := m.cookies.Save(r, w, sess); err != nil {
		return fmt.Errorf("expire session cookie: %w", err)
	}
	return nil
}
