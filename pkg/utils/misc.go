package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// GetHostname returns the machine hostname, or a placeholder when unavailable.
func GetHostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown-host"
	}
	return name
}

// HashContent returns a hex SHA-256 digest used as a change-detection
// fingerprint for clipboard payloads.
func HashContent(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
