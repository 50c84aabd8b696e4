// Package scope derives the short, deterministic suffixes used to make CSS
// names file-unique.
package scope

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// DefaultLength is the suffix length used when none is configured.
const DefaultLength = 8

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Hash concatenates parts and returns exactly length alphanumeric characters.
// A length of zero or less means DefaultLength. Every 64-bit block is seeded
// with its index, so long outputs stay well distributed.
func Hash(length int, parts ...string) string {
	if length <= 0 {
		length = DefaultLength
	}

	out := make([]byte, 0, length)
	var counter [8]byte
	for block := uint64(0); len(out) < length; block++ {
		d := xxhash.New()
		for _, part := range parts {
			_, _ = d.WriteString(part)
		}
		binary.LittleEndian.PutUint64(counter[:], block)
		_, _ = d.Write(counter[:])

		sum := d.Sum64()
		// 62^10 < 2^64, so ten digits per block never exhaust the sum
		for i := 0; i < 10 && len(out) < length; i++ {
			out = append(out, alphabet[sum%uint64(len(alphabet))])
			sum /= uint64(len(alphabet))
		}
	}
	return string(out)
}

// Suffix returns Hash prefixed with "_", so appending it to any identifier
// keeps the identifier valid even when the hash starts with a digit.
func Suffix(length int, parts ...string) string {
	return "_" + Hash(length, parts...)
}
