// Package generator produces random passwords from a configurable character pool.
package generator

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	Letters     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Digits      = "0123456789"
	Punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

	DefaultLength = 12
	MaxLength     = 128
)

// ErrInvalidLength is returned for lengths outside 1..MaxLength.
var ErrInvalidLength = errors.New("password length must be between 1 and 128")

// Options selects the character classes of a generated password.
type Options struct {
	Length         int
	IncludeDigits  bool
	IncludeSpecial bool
}

// DefaultOptions mirrors the generator form defaults.
func DefaultOptions() Options {
	return Options{Length: DefaultLength, IncludeDigits: true, IncludeSpecial: true}
}

// Pool returns the characters a password generated with opts is drawn from.
func Pool(opts Options) string {
	pool := Letters
	if opts.IncludeDigits {
		pool += Digits
	}
	if opts.IncludeSpecial {
		pool += Punctuation
	}
	return pool
}

// Generate draws Length characters uniformly, with replacement, from Pool(opts).
// The output is not checked against the password complexity rules.
func Generate(opts Options) (string, error) {
	if opts.Length < 1 || opts.Length > MaxLength {
		return "", ErrInvalidLength
	}

	pool := Pool(opts)
	size := big.NewInt(int64(len(pool)))
	out := make([]byte, opts.Length)
	for i := range out {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		out[i] = pool[n.Int64()]
	}
	return string(out), nil
}
