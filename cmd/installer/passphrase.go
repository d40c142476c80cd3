//go:build linux
// +build linux

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Cloud-Foundations/Provisioner/lib/luks"
	"golang.org/x/term"
)

func readLine(reader *bufio.Reader) ([]byte, error) {
	line, err := reader.ReadBytes('\n')
	if err != nil && !(err == io.EOF && len(line) > 0) {
		wipe(line)
		if err == io.EOF {
			return nil, errors.New("unexpected end of input")
		}
		return nil, err
	}
	length := len(line)
	for length > 0 && (line[length-1] == '\n' || line[length-1] == '\r') {
		length--
	}
	result := make([]byte, length)
	copy(result, line)
	wipe(line)
	return result, nil
}

// readPassphrase prompts twice on a terminal or reads two lines from other
// input.
func readPassphrase(input *os.File, reader *bufio.Reader,
	output io.Writer) (luks.Passphrase, error) {
	fd := int(input.Fd())
	if !term.IsTerminal(fd) {
		return readPassphraseLines(reader)
	}
	fmt.Fprint(output, "Passphrase: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(output)
	if err != nil {
		return nil, err
	}
	fmt.Fprint(output, "Confirm passphrase: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(output)
	if err != nil {
		wipe(first)
		return nil, err
	}
	return luks.ConfirmPassphrase(first, second)
}

func readPassphraseLines(reader *bufio.Reader) (luks.Passphrase, error) {
	first, err := readLine(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading passphrase: %w", err)
	}
	second, err := readLine(reader)
	if err != nil {
		wipe(first)
		return nil, fmt.Errorf("error reading passphrase confirmation: %w",
			err)
	}
	return luks.ConfirmPassphrase(first, second)
}

func wipe(data []byte) {
	for index := range data {
		data[index] = 0
	}
}
