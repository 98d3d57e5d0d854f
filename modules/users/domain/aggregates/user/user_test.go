package user

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRole(t *testing.T) {
	for _, r := range []string{"buyer", "supplier", "admin", "admin-ccs"} {
		role, err := NewRole(r)
		require.NoError(t, err)
		require.Equal(t, Role(r), role)
	}

	_, err := NewRole("invalid")
	require.Error(t, err)
	_, err = NewRole("")
	require.Error(t, err)
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "joeblogs@email.com", NormalizeEmail("  JOEBLOGS@email.com "))
}
