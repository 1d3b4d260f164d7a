package ownership

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/user"
)

type testResource struct {
	ownerUserID    *uuid.UUID
	ownerSessionID *string
}

func (r *testResource) Owner() (*uuid.UUID, *string) {
	return r.ownerUserID, r.ownerSessionID
}

func TestRequire(t *testing.T) {
	require.ErrorIs(t, Require(Principal{}), ErrMissingSession)
	require.NoError(t, Require(Principal{SessionID: "abc"}))
	require.NoError(t, Require(Principal{User: &user.User{ID: uuid.New()}}))
}

func TestAuthorize_SessionOwner(t *testing.T) {
	sid := "abc"
	res := &testResource{ownerSessionID: &sid}

	require.NoError(t, Authorize(Principal{SessionID: "abc"}, res))
	require.ErrorIs(t, Authorize(Principal{SessionID: "xyz"}, res), ErrAccessDenied)
	require.ErrorIs(t, Authorize(Principal{}, res), ErrAccessDenied)
}

func TestAuthorize_IdentityOwner(t *testing.T) {
	ownerID := uuid.New()
	res := &testResource{ownerUserID: &ownerID}

	owner := &user.User{ID: ownerID, Role: user.RoleUser}
	require.NoError(t, Authorize(Principal{User: owner}, res))

	stranger := &user.User{ID: uuid.New(), Role: user.RoleUser}
	require.ErrorIs(t, Authorize(Principal{User: stranger}, res), ErrAccessDenied)

	// A session identifier never matches an identity-owned resource.
	require.ErrorIs(t, Authorize(Principal{SessionID: "abc"}, res), ErrAccessDenied)
}

func TestAuthorize_AdminOverride(t *testing.T) {
	sid := "abc"
	res := &testResource{ownerSessionID: &sid}

	admin := &user.User{ID: uuid.New(), Role: user.RoleAdmin}
	require.NoError(t, Authorize(Principal{User: admin}, res))
}

func TestAuthorize_OwnerlessResourceIsAdminOnly(t *testing.T) {
	res := &testResource{}

	admin := &user.User{ID: uuid.New(), Role: user.RoleAdmin}
	require.NoError(t, Authorize(Principal{User: admin}, res))

	regular := &user.User{ID: uuid.New(), Role: user.RoleUser}
	require.ErrorIs(t, Authorize(Principal{User: regular}, res), ErrAccessDenied)
	require.ErrorIs(t, Authorize(Principal{SessionID: "abc"}, res), ErrAccessDenied)
}
