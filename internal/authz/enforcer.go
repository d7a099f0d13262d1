// Package authz decides which role may perform which action on which resource.
// Decisions come from a Casbin RBAC model; the embedded policy can be replaced
// by files on disk.
package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Role is the subject of a policy line
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleUser      Role = "user"
	RoleStaff     Role = "staff"
)

// Object names the protected resource
type Object string

const (
	ObjCategories Object = "categories"
	ObjPosts      Object = "posts"
	ObjComments   Object = "comments"
	ObjHome       Object = "home"
)

// Action is a resource operation or a visibility privilege
type Action string

const (
	ActList            Action = "list"
	ActRetrieve        Action = "retrieve"
	ActCreate          Action = "create"
	ActUpdate          Action = "update"
	ActPartialUpdate   Action = "partial_update"
	ActDestroy         Action = "destroy"
	ActAddComment      Action = "add_comment"
	ActApprove         Action = "approve"
	ActViewUnpublished Action = "view_unpublished"
	ActViewUnapproved  Action = "view_unapproved"
)

// Config selects policy files. Empty paths use the embedded defaults.
type Config struct {
	ModelPath  string
	PolicyPath string
}

// Enforcer wraps a synced Casbin enforcer
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer loads the model and policy
func NewEnforcer(cfg Config) (*Enforcer, error) {
	var (
		m   model.Model
		err error
	)
	if cfg.ModelPath != "" {
		if !fileExists(cfg.ModelPath) {
			return nil, fmt.Errorf("casbin model %s not found", cfg.ModelPath)
		}
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" {
		if !fileExists(cfg.PolicyPath) {
			return nil, fmt.Errorf("casbin policy %s not found", cfg.PolicyPath)
		}
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	return &Enforcer{enforcer: enforcer}, nil
}

// loadPolicy parses policy CSV lines into the enforcer.
func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// Allowed reports whether role may perform act on obj
func (e *Enforcer) Allowed(role Role, obj Object, act Action) (bool, error) {
	ok, err := e.enforcer.Enforce(string(role), string(obj), string(act))
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return ok, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
