package shortener

import (
	"strings"
	"testing"
	"time"

	"github.com/jxskiss/base62"
)

const (
	base62Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	hexChars    = "0123456789abcdef"
)

func TestHashGenerator_GenerateShortCode(t *testing.T) {
	testCases := []struct {
		name     string
		alphabet string
		chars    string
	}{
		{name: "base62", alphabet: TypeBase62, chars: base62Chars},
		{name: "hex", alphabet: TypeHex, chars: hexChars},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			generator := NewHashGenerator(tc.alphabet)
			start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

			codes := make(map[string]bool)
			for i := 0; i < 1000; i++ {
				code := generator.GenerateShortCode("https://example.com", start.Add(time.Duration(i)*time.Millisecond))

				if len(code) != CodeLength {
					t.Errorf("Expected code length %d, got %d for code %s", CodeLength, len(code), code)
				}

				for _, char := range code {
					if !strings.ContainsRune(tc.chars, char) {
						t.Errorf("Code %s contains invalid character %c", code, char)
					}
				}

				if codes[code] {
					t.Errorf("Duplicate code generated: %s", code)
				}
				codes[code] = true
			}
		})
	}
}

func TestHashGenerator_Deterministic(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 123456789, time.UTC)

	for _, alphabet := range []string{TypeBase62, TypeHex} {
		generator := NewHashGenerator(alphabet)

		first := generator.GenerateShortCode("https://example.com/a", at)
		second := generator.GenerateShortCode("https://example.com/a", at)
		if first != second {
			t.Errorf("%s: expected identical codes for identical input, got %s and %s", alphabet, first, second)
		}

		// Location does not change the instant
		third := generator.GenerateShortCode("https://example.com/a", at.In(time.FixedZone("UTC+3", 3*3600)))
		if first != third {
			t.Errorf("%s: expected code to depend on the instant only, got %s and %s", alphabet, first, third)
		}
	}
}

func TestHashGenerator_InputsMatter(t *testing.T) {
	generator := NewHashGenerator(TypeBase62)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	base := generator.GenerateShortCode("https://example.com/a", at)

	if code := generator.GenerateShortCode("https://example.com/b", at); code == base {
		t.Errorf("Expected different codes for different URLs, both %s", code)
	}

	if code := generator.GenerateShortCode("https://example.com/a", at.Add(time.Nanosecond)); code == base {
		t.Errorf("Expected different codes for different timestamps, both %s", code)
	}
}

func TestHashGenerator_HexIsDigestPrefix(t *testing.T) {
	at := time.Unix(0, 1700000000000000000)
	code := NewHashGenerator(TypeHex).GenerateShortCode("https://example.com", at)

	digest := digestOf("https://example.com", at)
	want := strings.ToLower(hexPrefix(digest[:]))
	if code != want {
		t.Errorf("Expected %s, got %s", want, code)
	}
}

func TestEncodeBase62_Range(t *testing.T) {
	testCases := []uint64{0, 1, minBase62Value, maxBase62Value, ^uint64(0)}

	for _, value := range testCases {
		code := encodeBase62(value)
		if len(code) != CodeLength {
			t.Errorf("Expected length %d for %d, got %s", CodeLength, value, code)
		}
	}

	// The library alphabet starts with upper-case letters and ends with digits
	if encodeBase62(0) != "BAAAAAA" {
		t.Errorf("Expected smallest code BAAAAAA, got %s", encodeBase62(0))
	}
	if got := encodeBase62(maxBase62Value - minBase62Value); got != "9999999" {
		t.Errorf("Expected largest code 9999999, got %s", got)
	}
	if got, want := encodeBase62(0), string(base62.FormatUint(minBase62Value)); got != want {
		t.Errorf("Expected smallest code to encode 62^6 as %s, got %s", want, got)
	}
}

func hexPrefix(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 0, CodeLength)
	for _, v := range b {
		out = append(out, digits[v>>4], digits[v&0x0f])
		if len(out) >= CodeLength {
			break
		}
	}
	return string(out[:CodeLength])
}
