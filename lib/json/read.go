package json

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Cloud-Foundations/Provisioner/lib/uncommenter"
)

func readFromFile(filename string, value interface{}) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := read(file, value); err != nil {
		return fmt.Errorf("error decoding: %s: %s", filename, err)
	}
	return nil
}

func read(reader io.Reader, value interface{}) error {
	decoder := json.NewDecoder(uncommenter.New(reader,
		uncommenter.CommentTypeAll))
	decoder.DisallowUnknownFields()
	return decoder.Decode(value)
}
