package webauthnhandler

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_displayNameFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		id   []byte
		want string
	}{
		{name: "zero", id: []byte{0, 0, 7}, want: "True Believer #0000"},
		{name: "small", id: []byte{0x01, 0x9c}, want: "True Believer #0412"},
		{name: "wraps", id: []byte{0xff, 0xff}, want: "True Believer #5535"},
		{name: "short id", id: []byte{1}, want: "True Believer #0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, displayNameFor(tt.id))
		})
	}
}

func Test_newRandomUser(t *testing.T) {
	t.Parallel()
	u, err := newRandomUser()
	require.NoError(t, err)
	require.Len(t, u.WebAuthnID(), webauthnIDSize)
	require.Regexp(t, regexp.MustCompile(`^True Believer #\d{4}$`), u.WebAuthnDisplayName())
	require.Equal(t, u.WebAuthnDisplayName(), u.WebAuthnName())
	require.Empty(t, u.WebAuthnCredentials())
}
