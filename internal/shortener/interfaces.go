package shortener

import (
	"time"
)

// Generator defines the interface for generating short codes
type Generator interface {
	// GenerateShortCode derives a short code from the URL and the moment it
	// was submitted. The same inputs always yield the same code.
	GenerateShortCode(originalURL string, at time.Time) string

	// Type returns the type identifier of the generator
	Type() string
}

// Config holds configuration for shortener generators
type Config struct {
	Alphabet string `json:"alphabet"` // base62 or hex
}

// Generator type constants
const (
	TypeBase62 = "base62"
	TypeHex    = "hex"
)

// CodeLength is the length of every generated short code
const CodeLength = 7

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Alphabet: TypeBase62,
	}
}
