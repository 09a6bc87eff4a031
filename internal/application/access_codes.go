package application

import (
	"crypto/rand"
	"fmt"
	"io"
)

const (
	accessCodeLength   = 5
	accessCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// MaxAccessCodeBatch bounds a single generation request.
	MaxAccessCodeBatch = 300
	// attemptsPerCode bounds redraws per requested code before giving up.
	attemptsPerCode = 64
)

// largest byte value that maps uniformly onto the alphabet
var accessCodeByteLimit = byte(256 - 256%len(accessCodeAlphabet))

// CodeGenerator draws random access codes from A-Z0-9.
type CodeGenerator struct {
	random io.Reader
}

// NewCodeGenerator returns a generator reading from random, or crypto/rand
// when random is nil.
func NewCodeGenerator(random io.Reader) *CodeGenerator {
	if random == nil {
		random = rand.Reader
	}
	return &CodeGenerator{random: random}
}

// Generate returns n distinct codes for which taken reports false. Collisions
// with taken codes or codes drawn earlier in the same call are redrawn, at
// most attemptsPerCode times per requested code.
func (g *CodeGenerator) Generate(n int, taken func(code string) bool) ([]string, error) {
	if n < 1 || n > MaxAccessCodeBatch {
		return nil, newValidationError("count", fmt.Sprintf("count must be between 1 and %d", MaxAccessCodeBatch))
	}

	codes := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	budget := n * attemptsPerCode
	for len(codes) < n {
		if budget == 0 {
			return nil, fmt.Errorf("%w: generated %d of %d codes", ErrCodeSpaceExhausted, len(codes), n)
		}
		budget--

		code, err := g.draw()
		if err != nil {
			return nil, fmt.Errorf("draw access code: %w", err)
		}
		if _, dup := seen[code]; dup {
			continue
		}
		if code == AdminCode || (taken != nil && taken(code)) {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}

func (g *CodeGenerator) draw() (string, error) {
	code := make([]byte, 0, accessCodeLength)
	buf := make([]byte, accessCodeLength*2)
	for len(code) < accessCodeLength {
		if _, err := io.ReadFull(g.random, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= accessCodeByteLimit {
				continue
			}
			code = append(code, accessCodeAlphabet[int(b)%len(accessCodeAlphabet)])
			if len(code) == accessCodeLength {
				break
			}
		}
	}
	return string(code), nil
}
