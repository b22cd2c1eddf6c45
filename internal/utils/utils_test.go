package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID_LengthAndAlphabet(t *testing.T) {
	id := NewID()
	assert.Len(t, id, idLength)
	assert.True(t, IsValidID(id))
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		assert.False(t, seen[id], "unexpected collision: %s", id)
		seen[id] = true
	}
}

func TestIsValidID_RejectsWrongLengthOrCharset(t *testing.T) {
	assert.False(t, IsValidID("tooshort"))
	assert.False(t, IsValidID("UPPERCASEID1"))
	assert.False(t, IsValidID(""))
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery-staple")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.True(t, CheckPasswordHash("correct-horse-battery-staple", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}

func TestIsValidHTTPURL(t *testing.T) {
	assert.True(t, IsValidHTTPURL("https://example.com/a"))
	assert.True(t, IsValidHTTPURL("http://example.com"))
	assert.False(t, IsValidHTTPURL("ftp://example.com"))
	assert.False(t, IsValidHTTPURL("not a url"))
	assert.False(t, IsValidHTTPURL("https:///no-host"))
}

func TestIsValidCategory(t *testing.T) {
	assert.True(t, IsValidCategory("Tech"))
	assert.False(t, IsValidCategory(""))
	assert.False(t, IsValidCategory(string(make([]byte, 51))))
}
