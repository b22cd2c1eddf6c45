// utils/id.go
package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
const idLength = 12

// NewID generates a 12-character opaque token used as the primary id for
// Users and LibraryEntries, in place of a Mongo ObjectID.
func NewID() string {
	b := make([]byte, idLength)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = idAlphabet[n.Int64()]
	}
	return string(b)
}

// IsValidID reports whether s looks like an id produced by NewID.
func IsValidID(s string) bool {
	if len(s) != idLength {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return strings.IndexRune(idAlphabet, r) < 0
	}) == -1
}
