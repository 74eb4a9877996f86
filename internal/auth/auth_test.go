package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestVerify(t *testing.T) {
	v := NewVerifier("test_user", "test_password")

	tests := []struct {
		name     string
		username string
		password string
		expected bool
	}{
		{"both correct", "test_user", "test_password", true},
		{"wrong password", "test_user", "wrong", false},
		{"wrong username", "wrong", "test_password", false},
		{"both wrong", "wrong", "wrong", false},
		{"username case differs", "Test_User", "test_password", false},
		{"password case differs", "test_user", "Test_Password", false},
		{"empty username", "", "test_password", false},
		{"empty password", "test_user", "", false},
		{"password prefix only", "test_user", "test_pass", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := v.Verify(tc.username, tc.password); got != tc.expected {
				t.Errorf("Verify(%q, %q) = %v, want %v", tc.username, tc.password, got, tc.expected)
			}
		})
	}
}

func TestVerifyWithHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("test_password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt hash failed: %v", err)
	}

	v := NewVerifierWithHash("test_user", string(hash))

	if !v.Verify("test_user", "test_password") {
		t.Error("Expected correct credentials to verify against hash")
	}
	if v.Verify("test_user", "wrong") {
		t.Error("Expected wrong password to be denied against hash")
	}
	if v.Verify("wrong", "test_password") {
		t.Error("Expected wrong username to be denied against hash")
	}
}
