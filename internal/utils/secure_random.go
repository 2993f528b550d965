package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RandomHex returns n random bytes, hex encoded (2n characters).
func RandomHex(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("random length must be positive, got %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// PrefixedID builds an opaque identifier such as "pi_3f9a...".
func PrefixedID(prefix string, n int) (string, error) {
	r, err := RandomHex(n)
	if err != nil {
		return "", err
	}
	return prefix + "_" + r, nil
}
