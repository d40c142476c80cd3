package json

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/Cloud-Foundations/Provisioner/lib/fsutil"
)

func writeToFile(filename string, perm os.FileMode, indent string,
	value interface{}) error {
	buffer := &bytes.Buffer{}
	if err := writeWithIndent(buffer, indent, value); err != nil {
		return err
	}
	return fsutil.CopyToFile(filename, perm, buffer, 0)
}

func writeWithIndent(w io.Writer, indent string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", indent)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
