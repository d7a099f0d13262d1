package authz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedPolicy(t *testing.T) {
	e, err := NewEnforcer(Config{})
	require.NoError(t, err)

	tests := []struct {
		role Role
		obj  Object
		act  Action
		want bool
	}{
		{RoleAnonymous, ObjCategories, ActCreate, true},
		{RoleAnonymous, ObjCategories, ActDestroy, true},
		{RoleAnonymous, ObjPosts, ActList, true},
		{RoleAnonymous, ObjPosts, ActAddComment, true},
		{RoleAnonymous, ObjPosts, ActCreate, false},
		{RoleAnonymous, ObjPosts, ActViewUnpublished, false},
		{RoleUser, ObjPosts, ActCreate, true},
		{RoleUser, ObjPosts, ActDestroy, true},
		{RoleUser, ObjPosts, ActRetrieve, true},
		{RoleUser, ObjPosts, ActViewUnpublished, false},
		{RoleStaff, ObjPosts, ActViewUnpublished, true},
		{RoleStaff, ObjPosts, ActPartialUpdate, true},
		{RoleAnonymous, ObjComments, ActCreate, true},
		{RoleAnonymous, ObjComments, ActUpdate, false},
		{RoleUser, ObjComments, ActApprove, false},
		{RoleStaff, ObjComments, ActApprove, true},
		{RoleStaff, ObjComments, ActViewUnapproved, true},
		{RoleAnonymous, ObjHome, ActList, true},
	}

	for _, tt := range tests {
		got, err := e.Allowed(tt.role, tt.obj, tt.act)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s %s", tt.role, tt.obj, tt.act)
	}
}

func TestPolicyFromFile(t *testing.T) {
	dir := t.TempDir()
	policy := filepath.Join(dir, "policy.csv")
	// Closes the categories to anonymous writers.
	require.NoError(t, os.WriteFile(policy, []byte(
		"p, anonymous, categories, list\n"+
			"p, anonymous, categories, retrieve\n"+
			"p, staff, categories, *\n"+
			"g, user, anonymous\n"+
			"g, staff, user\n"), 0o600))

	e, err := NewEnforcer(Config{PolicyPath: policy})
	require.NoError(t, err)

	ok, err := e.Allowed(RoleUser, ObjCategories, ActCreate)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.Allowed(RoleStaff, ObjCategories, ActCreate)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMissingPolicyFile(t *testing.T) {
	_, err := NewEnforcer(Config{PolicyPath: filepath.Join(t.TempDir(), "nope.csv")})
	assert.Error(t, err)
}

func TestMalformedPolicy(t *testing.T) {
	e, err := NewEnforcer(Config{})
	require.NoError(t, err)
	assert.Error(t, loadPolicy(e.enforcer, "p, only-two"))
}
