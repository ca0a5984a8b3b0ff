package shortener

import (
	"fmt"
)

// NewGenerator creates the generator selected by config
func NewGenerator(config Config) (Generator, error) {
	switch config.Alphabet {
	case TypeBase62, TypeHex:
		return NewHashGenerator(config.Alphabet), nil
	default:
		return nil, fmt.Errorf("unsupported code alphabet: %q", config.Alphabet)
	}
}
