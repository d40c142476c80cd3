// Package hash provides a fixed-size SHA-256 digest type with a lowercase
// hexadecimal text encoding.
package hash

import (
	"io"
)

const Size = 32

type Hash [Size]byte

// Compute returns the SHA-256 digest of all data read from reader.
func Compute(reader io.Reader) (Hash, error) {
	return compute(reader)
}

// ComputeFile returns the SHA-256 digest of the contents of filename.
func ComputeFile(filename string) (Hash, error) {
	return computeFile(filename)
}

// Parse decodes a 64 character hexadecimal string.
func Parse(text string) (Hash, error) {
	var h Hash
	err := h.unmarshalText([]byte(text))
	return h, err
}

func (h Hash) MarshalText() ([]byte, error) {
	return h.marshalText()
}

func (h Hash) String() string {
	text, _ := h.marshalText()
	return string(text)
}

func (h *Hash) UnmarshalText(text []byte) error {
	return h.unmarshalText(text)
}
