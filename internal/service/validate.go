package service

import (
	"errors"
	"net/url"
)

// MaxURLLength is the longest accepted original URL
const MaxURLLength = 2048

// Validation errors carry the message shown to API callers
var (
	ErrURLRequired       = errors.New("URL is required")
	ErrMalformedURL      = errors.New("Invalid URL format")
	ErrShortCodeRequired = errors.New("Short code is required")
)

// ValidateURL checks that rawURL is an absolute URL with a scheme and a
// host name. Scheme-only URIs such as mailto: have no host and are rejected.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return ErrURLRequired
	}

	if len(rawURL) > MaxURLLength {
		return ErrMalformedURL
	}

	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return ErrMalformedURL
	}

	if parsed.Scheme == "" || parsed.Hostname() == "" {
		return ErrMalformedURL
	}

	return nil
}
