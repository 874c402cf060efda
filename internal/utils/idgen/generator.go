package idgen

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// idCharset is lowercase alphanumeric so IDs stay URL- and log-safe.
const idCharset = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateSecureID returns "<prefix>_<random>" where random is length
// characters drawn from idCharset using crypto/rand.
func GenerateSecureID(prefix string, length int) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("prefix cannot be empty")
	}
	if length <= 0 {
		return "", fmt.Errorf("length must be positive, got %d", length)
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i := range buf {
		buf[i] = idCharset[int(buf[i])%len(idCharset)]
	}
	return prefix + "_" + string(buf), nil
}

// ValidateIDFormat checks that id is "<expectedPrefix>_<suffix>" with a
// non-empty suffix drawn from idCharset.
func ValidateIDFormat(id, expectedPrefix string) bool {
	prefix := expectedPrefix + "_"
	if !strings.HasPrefix(id, prefix) {
		return false
	}
	suffix := id[len(prefix):]
	if suffix == "" {
		return false
	}
	for _, c := range suffix {
		if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}
