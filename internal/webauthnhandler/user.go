package webauthnhandler

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/myrjola/616degrees/internal/errors"
)

type user struct {
	id          []byte
	displayName string
	credentials []webauthn.Credential
}

const webauthnIDSize = 64

// newRandomUser initialises a new user with random ID and a generated display name shown on the leaderboard.
func newRandomUser() (webauthn.User, error) {
	id := make([]byte, webauthnIDSize)
	if _, err := rand.Read(id); err != nil {
		return nil, errors.Wrap(err, "generate user id")
	}

	return &user{
		displayName: displayNameFor(id),
		id:          id,
		credentials: []webauthn.Credential{},
	}, nil
}

// displayNameFor derives a stable handle such as "True Believer #0412" from the user id.
func displayNameFor(id []byte) string {
	const handles = 10000
	var n uint16
	if len(id) >= 2 { //nolint:mnd // two bytes for the number
		n = binary.BigEndian.Uint16(id)
	}
	return fmt.Sprintf("True Believer #%04d", int(n)%handles)
}

// WebAuthnID is the opaque 64-byte user handle. Authorization decisions use it, never the display name.
func (u user) WebAuthnID() []byte {
	return u.id
}

func (u user) WebAuthnName() string {
	return u.displayName
}

// WebAuthnDisplayName is the generated handle shown by the authenticator and on the leaderboard.
func (u user) WebAuthnDisplayName() string {
	return u.displayName
}

func (u user) WebAuthnCredentials() []webauthn.Credential {
	return u.credentials
}
