package deploy

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HtpasswdEntry returns a "user:hash" line for the proxy's basicAuth
// middleware. bcrypt is run exactly once per collected config; re-rendering
// reuses the stored entry so output stays byte-identical.
func HtpasswdEntry(user, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return user + ":" + string(hash), nil
}

// VerifyHtpasswdEntry reports whether the entry matches the given credentials.
func VerifyHtpasswdEntry(entry, user, password string) bool {
	prefix := user + ":"
	if len(entry) <= len(prefix) || entry[:len(prefix)] != prefix {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(entry[len(prefix):]), []byte(password)) == nil
}
