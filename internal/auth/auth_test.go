package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticAuthenticatorDefaults(t *testing.T) {
	a := NewStaticAuthenticator("", "")
	assert.NoError(t, a.Authenticate("admin", "123"))
}

func TestLoginOnlyForExactPair(t *testing.T) {
	cases := []struct {
		user, pass string
	}{
		{"admin", "1234"},
		{"Admin", "123"},
		{"admin ", "123"},
		{"", ""},
		{"root", "123"},
		{"admin", ""},
	}
	for _, tc := range cases {
		g := NewGate(NewStaticAuthenticator("", ""), nil)
		err := g.Login(tc.user, tc.pass)
		assert.ErrorIs(t, err, ErrInvalidCredentials, "%q/%q", tc.user, tc.pass)
		assert.False(t, g.Authenticated())
	}

	g := NewGate(NewStaticAuthenticator("", ""), nil)
	require.NoError(t, g.Login("admin", "123"))
	assert.True(t, g.Authenticated())
}

func TestFailedLoginKeepsExistingSession(t *testing.T) {
	g := NewGate(NewStaticAuthenticator("", ""), nil)
	require.NoError(t, g.Login("admin", "123"))

	assert.Error(t, g.Login("admin", "nope"))
	assert.True(t, g.Authenticated())
}

func TestLogoutIsUnconditional(t *testing.T) {
	g := NewGate(NewStaticAuthenticator("", ""), nil)
	g.Logout()
	assert.False(t, g.Authenticated())

	require.NoError(t, g.Login("admin", "123"))
	g.Logout()
	assert.False(t, g.Authenticated())
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Invalid credentials. Please try again.", ErrInvalidCredentials.Error())
}

type denyAll struct{}

func (denyAll) Authenticate(string, string) error { return ErrInvalidCredentials }

func TestGateUsesPluggableAuthenticator(t *testing.T) {
	g := NewGate(denyAll{}, nil)
	assert.Error(t, g.Login("admin", "123"))
	assert.False(t, g.Authenticated())
}
