package shortener

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/jxskiss/base62"
)

const (
	// 62^6 is the smallest and 62^7-1 the largest 7 character base62 value
	minBase62Value = uint64(56800235584)
	maxBase62Value = uint64(3521614606207)
)

// HashGenerator derives short codes from a SHA-256 digest of the URL and
// the submission time in nanoseconds.
type HashGenerator struct {
	alphabet string
}

// NewHashGenerator creates a hash based generator for the given alphabet
func NewHashGenerator(alphabet string) *HashGenerator {
	return &HashGenerator{alphabet: alphabet}
}

// GenerateShortCode returns a CodeLength character code
func (g *HashGenerator) GenerateShortCode(originalURL string, at time.Time) string {
	digest := digestOf(originalURL, at)

	if g.alphabet == TypeHex {
		return hex.EncodeToString(digest[:4])[:CodeLength]
	}

	return encodeBase62(binary.BigEndian.Uint64(digest[:8]))
}

// Type returns the generator type
func (g *HashGenerator) Type() string {
	return g.alphabet
}

func digestOf(originalURL string, at time.Time) [sha256.Size]byte {
	return sha256.Sum256([]byte(originalURL + strconv.FormatInt(at.UnixNano(), 10)))
}

// encodeBase62 maps value into the 7 character range before encoding
func encodeBase62(value uint64) string {
	rangeSize := maxBase62Value - minBase62Value + 1
	return string(base62.FormatUint(value%rangeSize + minBase62Value))
}

// Ensure HashGenerator implements Generator interface
var _ Generator = (*HashGenerator)(nil)
