package config

import (
	_ "embed"
	"fmt"
)

// Built-in defaults, loaded as the lowest-priority layer.
//
//go:embed embedded/defaults.toml
var defaultConfig []byte

// bytesSource feeds an in-memory document through a koanf parser
type bytesSource []byte

func (b bytesSource) ReadBytes() ([]byte, error) { return b, nil }

func (b bytesSource) Read() (map[string]interface{}, error) {
	return nil, fmt.Errorf("bytesSource requires a parser")
}

// DefaultsContent returns the embedded defaults file
func DefaultsContent() string {
	return string(defaultConfig)
}
