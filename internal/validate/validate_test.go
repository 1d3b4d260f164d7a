package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrors_Required(t *testing.T) {
	v := &Errors{}
	v.Required("name", "")
	v.Required("email", "   ")
	v.Required("ok", "value")

	require.True(t, v.HasErrors())
	require.Len(t, v.Fields(), 2)
	require.Equal(t, "name", v.Fields()[0].Field)
}

func TestErrors_Email(t *testing.T) {
	v := &Errors{}
	v.Email("email", "not-an-email")
	require.True(t, v.HasErrors())

	v = &Errors{}
	v.Email("email", "ada@example.com")
	require.False(t, v.HasErrors())

	// Empty values are Required's job.
	v = &Errors{}
	v.Email("email", "")
	require.False(t, v.HasErrors())

	v = &Errors{}
	v.Email("email", strings.Repeat("a", 250)+"@example.com")
	require.True(t, v.HasErrors())
}

func TestErrors_Lengths(t *testing.T) {
	v := &Errors{}
	v.MinLength("password", "short", 8)
	v.MaxLength("title", strings.Repeat("x", 201), 200)
	require.Len(t, v.Fields(), 2)

	v = &Errors{}
	v.MinLength("password", "", 8) // empty skipped
	v.MaxLength("title", "fine", 200)
	require.False(t, v.HasErrors())
}

func TestErrors_OneOf(t *testing.T) {
	v := &Errors{}
	v.OneOf("role", "superuser", "admin", "user")
	require.True(t, v.HasErrors())

	v = &Errors{}
	v.OneOf("role", "admin", "admin", "user")
	v.OneOf("role", "", "admin", "user") // empty skipped
	require.False(t, v.HasErrors())
}
