package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("password1")
	require.NoError(t, err)
	require.NotEqual(t, "password1", hash)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$"))

	ok, err := VerifyPassword("password1", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("password2", hash)
	require.NoError(t, err)
	require.False(t, ok)

	again, err := HashPassword("password1")
	require.NoError(t, err)
	require.NotEqual(t, hash, again, "salt must differ between hashes")
}

func TestVerifyPasswordRejectsMalformed(t *testing.T) {
	t.Parallel()

	for _, h := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$a$b", "$argon2id$v=19$broken$a$b"} {
		_, err := VerifyPassword("x", h)
		require.ErrorIs(t, err, ErrInvalidHash, h)
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in string
		ok bool
	}{
		{"alice", true},
		{"al", false},
		{"alice.smith_2", true},
		{"_alice", false},
		{"has space", false},
		{strings.Repeat("a", MaxUsernameLength+1), false},
	}
	for _, tt := range tests {
		err := ValidateUsername(tt.in)
		if tt.ok {
			require.NoError(t, err, tt.in)
		} else {
			require.Error(t, err, tt.in)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateEmail("a@x.com"))
	for _, bad := range []string{"", "a", "a@x", "Alice <a@x.com>", "a@@x.com"} {
		var verr *ValidationError
		require.ErrorAs(t, ValidateEmail(bad), &verr, bad)
		require.Equal(t, "email", verr.Field)
	}
}

func TestValidateFullnameAndPassword(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateFullname("Alice A"))
	require.Error(t, ValidateFullname("Al"))
	require.NoError(t, ValidatePassword("password1"))
	require.Error(t, ValidatePassword("short"))
}
