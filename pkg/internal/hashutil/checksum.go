package hashutil

import (
	"crypto/sha256"
	"fmt"
)

// Checksum returns the SHA256 checksum of data in "sha256:<hex>" form
func Checksum(data []byte) string {
	return fmt.Sprintf("sha256:%x", sha256.Sum256(data))
}

// ShortChecksum returns the first 16 hex characters of the SHA256 of s,
// suitable for building store keys from arbitrary paths
func ShortChecksum(s string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(s)))[:16]
}
