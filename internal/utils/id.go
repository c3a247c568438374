package utils

import (
	"crypto/rand"

	"github.com/google/uuid"
)

const (
	slugLength = 8
	// slugLetters has 64 symbols so a random byte maps onto it without bias.
	slugLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
)

// NewID returns a random connection identifier.
func NewID() string {
	return uuid.NewString()
}

// NewSlug returns a random 8-character URL-safe room slug.
// It panics only if the system random source is broken.
func NewSlug() string {
	buf := make([]byte, slugLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = slugLetters[b&byte(len(slugLetters)-1)]
	}
	return string(buf)
}
