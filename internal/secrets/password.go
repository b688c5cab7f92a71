// internal/secrets/password.go
//
// Admin-password helpers.
//
// Context
// -------
// When the admin_password option is left empty the charm mints a fresh
// 16-character secret (the historical pwgen(16) behavior).  Grafana
// itself stores passwords as PBKDF2-SHA256 over the per-user salt, so
// Hash() is what actually lands in the user table.
//
// Notes
// -----
// • crypto/rand only; never math/rand for secrets.
// • Oxford commas, two spaces after periods.

package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/pbkdf2"
)

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Password returns a random alphanumeric string of the given length,
// drawn from crypto/rand.  Safe for concurrent use.
func Password(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// Hash derives the hex PBKDF2-SHA256 digest Grafana stores in its user
// table: 10000 rounds, 50 bytes, keyed by the user's salt.
func Hash(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), 10000, 50, sha256.New)
	return hex.EncodeToString(key)
}
