// Package random provides functions to generate random data useful for testing.
package random

import (
	"math/rand"

	"github.com/n3lab/ledger-core/pkg/util"
)

// Bytes returns a random byte slice of the given size.
func Bytes(n int) []byte {
	b := make([]byte, n)
	Fill(b)
	return b
}

// Fill fills the given byte slice with random data.
func Fill(b []byte) {
	_, _ = rand.Read(b)
}

// String returns a random string of the given length.
func String(n int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))]
	}
	return string(b)
}

// Int returns a random int in the range [0, n).
func Int(min, max int) int {
	return min + rand.Intn(max-min)
}

// Uint160 returns a random util.Uint160.
func Uint160() util.Uint160 {
	var u util.Uint160
	Fill(u[:])
	return u
}

// Uint256 returns a random util.Uint256.
func Uint256() util.Uint256 {
	var u util.Uint256
	Fill(u[:])
	return u
}
