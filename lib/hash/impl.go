package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

func compute(reader io.Reader) (Hash, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, reader); err != nil {
		return Hash{}, err
	}
	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h, nil
}

func computeFile(filename string) (Hash, error) {
	file, err := os.Open(filename)
	if err != nil {
		return Hash{}, err
	}
	defer file.Close()
	h, err := compute(file)
	if err != nil {
		return Hash{}, fmt.Errorf("error reading: %s: %w", filename, err)
	}
	return h, nil
}

func (h Hash) marshalText() ([]byte, error) {
	text := make([]byte, hex.EncodedLen(len(h)))
	hex.Encode(text, h[:])
	return text, nil
}

func hexcharToByte(ch byte) (byte, error) {
	if ch >= '0' && ch <= '9' {
		return ch - '0', nil
	}
	if ch >= 'a' && ch <= 'f' {
		return ch - 'a' + 10, nil
	}
	return 0, errors.New("bad character in hash")
}

func (h *Hash) unmarshalText(text []byte) error {
	if len(text) != hex.EncodedLen(len(h)) {
		return fmt.Errorf("hash string length: %d, expected: %d",
			len(text), hex.EncodedLen(len(h)))
	}
	var result Hash
	for index, ch := range text {
		val, err := hexcharToByte(ch)
		if err != nil {
			return err
		}
		if index&1 == 0 {
			result[index>>1] = val << 4
		} else {
			result[index>>1] |= val
		}
	}
	*h = result
	return nil
}
