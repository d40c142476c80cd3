package hash

import (
	"bytes"
	"crypto/sha256"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func makeRandomHash() Hash {
	buffer := make([]byte, 1024)
	rand.Read(buffer)
	return Hash(sha256.Sum256(buffer))
}

func TestConvert(t *testing.T) {
	for i := 0; i < 10; i++ {
		hashVal := makeRandomHash()
		text, err := hashVal.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var unmarshaledHash Hash
		if err := unmarshaledHash.UnmarshalText(text); err != nil {
			t.Fatal(err)
		}
		if unmarshaledHash != hashVal {
			t.Errorf("expected: %x, got: %x", hashVal, unmarshaledHash)
		}
	}
}

func TestUnmarshalIntoUsedValue(t *testing.T) {
	first := makeRandomHash()
	second := makeRandomHash()
	value := first
	if err := value.UnmarshalText([]byte(second.String())); err != nil {
		t.Fatal(err)
	}
	if value != second {
		t.Errorf("expected: %s, got: %s", second, value)
	}
}

func TestBadText(t *testing.T) {
	good := makeRandomHash().String()
	for _, text := range []string{"", "abc", good[:63] + "g",
		good[:63] + "A", good + "00"} {
		if _, err := Parse(text); err == nil {
			t.Errorf("no failure parsing: \"%s\"", text)
		}
	}
}

func TestComputeFile(t *testing.T) {
	// Digest of "abc" from FIPS 180-2.
	expected := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	filename := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(filename, []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	h, err := ComputeFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if h.String() != expected {
		t.Errorf("expected: %s, got: %s", expected, h)
	}
	if h2, err := Compute(bytes.NewReader([]byte("abc"))); err != nil {
		t.Fatal(err)
	} else if h2 != h {
		t.Errorf("Compute and ComputeFile differ: %s != %s", h2, h)
	}
}
