package proto1

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// seedMaterial is mixed into every cycle seed.
var seedMaterial = make([]byte, 32)

// Seeds returns n chained seeds: s0 = H(material), s(i+1) = H(s(i) || material).
func Seeds(material []byte, n int) []string {
	seeds := make([]string, 0, n)
	cur := blake2b.Sum256(material)
	for i := 0; i < n; i++ {
		seeds = append(seeds, hex.EncodeToString(cur[:]))
		cur = blake2b.Sum256(append(cur[:], material...))
	}
	return seeds
}

// NextSeed derives the seed following prev.
func NextSeed(prev string, material []byte) (string, error) {
	b, err := hex.DecodeString(prev)
	if err != nil {
		return "", fmt.Errorf("decode seed %q: %w", prev, err)
	}
	next := blake2b.Sum256(append(b, material...))
	return hex.EncodeToString(next[:]), nil
}
