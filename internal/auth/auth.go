package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Verifier checks supplied basic-auth credentials against the single
// configured identity. Denied is a normal outcome, not an error.
type Verifier struct {
	username     []byte
	password     []byte
	passwordHash []byte // bcrypt, used instead of password when set
}

// NewVerifier builds a verifier for a plaintext configured password.
func NewVerifier(username, password string) *Verifier {
	return &Verifier{
		username: []byte(username),
		password: []byte(password),
	}
}

// NewVerifierWithHash builds a verifier whose password check runs against a
// bcrypt hash rather than a plaintext value.
func NewVerifierWithHash(username, passwordHash string) *Verifier {
	return &Verifier{
		username:     []byte(username),
		passwordHash: []byte(passwordHash),
	}
}

// Verify reports whether both fields match the configured identity. Both
// comparisons are constant-time so a mismatch position leaks nothing.
func (v *Verifier) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), v.username) == 1

	var passOK bool
	if len(v.passwordHash) > 0 {
		passOK = bcrypt.CompareHashAndPassword(v.passwordHash, []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), v.password) == 1
	}

	// Evaluate both before combining so a bad username still pays for the
	// password comparison.
	return userOK && passOK
}
