// Package codegen draws random code strings from an alphabet.
package codegen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// ErrInvalidParameters is wrapped by every parameter validation failure.
var ErrInvalidParameters = errors.New("invalid code generation parameters")

// Generator produces codes using a cryptographic random source.
type Generator struct {
	random io.Reader
}

// New returns a Generator backed by crypto/rand.
func New() *Generator {
	return &Generator{random: rand.Reader}
}

// NewWithReader is used by tests that need a deterministic source.
func NewWithReader(r io.Reader) *Generator {
	return &Generator{random: r}
}

// Generate returns quantity codes of length characters drawn uniformly from
// alphabet. Codes may repeat each other. With allowDuplicates false no
// character repeats within one code, which needs length <= len(alphabet).
func (g *Generator) Generate(quantity, length int, alphabet string, allowDuplicates bool) ([]string, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidParameters)
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: length must be greater than zero", ErrInvalidParameters)
	}
	if alphabet == "" {
		return nil, fmt.Errorf("%w: alphabet must not be empty", ErrInvalidParameters)
	}
	if !allowDuplicates && length > len(alphabet) {
		return nil, fmt.Errorf("%w: cannot draw %d distinct characters from %d", ErrInvalidParameters, length, len(alphabet))
	}

	codes := make([]string, 0, quantity)
	for i := 0; i < quantity; i++ {
		var (
			code string
			err  error
		)
		if allowDuplicates {
			code, err = g.sample(length, alphabet)
		} else {
			code, err = g.shuffle(length, alphabet)
		}
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func (g *Generator) sample(length int, alphabet string) (string, error) {
	out := make([]byte, length)
	for i := range out {
		n, err := g.intn(len(alphabet))
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n]
	}
	return string(out), nil
}

// shuffle runs a Fisher-Yates shuffle over the alphabet and keeps the first length characters.
func (g *Generator) shuffle(length int, alphabet string) (string, error) {
	chars := []byte(alphabet)
	for i := len(chars) - 1; i > 0; i-- {
		j, err := g.intn(i + 1)
		if err != nil {
			return "", err
		}
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars[:length]), nil
}

func (g *Generator) intn(n int) (int, error) {
	v, err := rand.Int(g.random, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read random source: %w", err)
	}
	return int(v.Int64()), nil
}
