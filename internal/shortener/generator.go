package shortener

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

const (
	// DefaultCodeLength gives 62^7 possible codes.
	DefaultCodeLength = 7
	// MinCodeLength is the shortest code length accepted by NewCodeGenerator.
	MinCodeLength = 6

	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// CodeGenerator generates candidate short codes. Uniqueness is enforced by the store.
type CodeGenerator func() string

// NewCodeGenerator returns a crypto-random alphanumeric generator of the given length.
func NewCodeGenerator(length int) (CodeGenerator, error) {
	if length < MinCodeLength {
		return nil, fmt.Errorf("code length %d is below minimum %d", length, MinCodeLength)
	}

	gen, err := nanoid.CustomASCII(codeAlphabet, length)
	if err != nil {
		return nil, fmt.Errorf("create code generator: %w", err)
	}

	return gen, nil
}
