package hashutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	checksum := Checksum([]byte("Hello, World!\n"))

	assert.Contains(t, checksum, "sha256:")
	assert.Len(t, checksum, 71) // "sha256:" + 64 hex chars
	assert.Equal(t, checksum, Checksum([]byte("Hello, World!\n")))
	assert.NotEqual(t, checksum, Checksum([]byte("Hello, World!")))
}

func TestShortChecksum(t *testing.T) {
	a := ShortChecksum("/home/user/project")
	assert.Len(t, a, 16)
	assert.Equal(t, a, ShortChecksum("/home/user/project"))
	assert.NotEqual(t, a, ShortChecksum("/home/user/other"))
}
