package uncommenter

import (
	"io"
	"strings"
	"testing"
)

func readAll(t *testing.T, input string, commentTypes uint64) string {
	data, err := io.ReadAll(New(strings.NewReader(input), commentTypes))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestAllCommentTypes(t *testing.T) {
	input := "# hash\n{\n  // slash\n\t! bang\n  \"a\": 1 # trailing\n}"
	expected := "{\n  \"a\": 1 # trailing\n}"
	if got := readAll(t, input, CommentTypeAll); got != expected {
		t.Errorf("expected: %q, got: %q", expected, got)
	}
}

func TestSelectedCommentTypes(t *testing.T) {
	input := "# hash\n// slash\n! bang\n"
	expected := "// slash\n! bang\n"
	if got := readAll(t, input, CommentTypeHash); got != expected {
		t.Errorf("expected: %q, got: %q", expected, got)
	}
	if got := readAll(t, input, 0); got != input {
		t.Errorf("expected passthrough, got: %q", got)
	}
}

func TestSmallReads(t *testing.T) {
	reader := New(strings.NewReader("#c\nabc\n"), CommentTypeAll)
	var output []byte
	buffer := make([]byte, 1)
	for {
		n, err := reader.Read(buffer)
		output = append(output, buffer[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
	}
	if string(output) != "abc\n" {
		t.Errorf("expected: \"abc\\n\", got: %q", output)
	}
}
