package core

import (
	"crypto/rand"
	"math/big"

	"github.com/djboot/djboot/internal/errors"
)

// secretKeyChars matches the character set Django's own
// get_random_secret_key draws from.
const secretKeyChars = "abcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*(-_=+)"

// SecretKeyLength is the length of a generated SECRET_KEY.
const SecretKeyLength = 50

// GenerateSecretKey returns a cryptographically random Django SECRET_KEY.
func GenerateSecretKey() (string, error) {
	buf := make([]byte, SecretKeyLength)
	max := big.NewInt(int64(len(secretKeyChars)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// Extremely rare: crypto/rand failure
			return "", errors.Wrap(errors.EInternal, "failed to generate secret key", err)
		}
		buf[i] = secretKeyChars[n.Int64()]
	}
	return string(buf), nil
}
