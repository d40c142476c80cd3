package checksums

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Cloud-Foundations/Provisioner/lib/fsutil"
)

func decodeMetadata(reader io.Reader) (Metadata, error) {
	lines, err := fsutil.ReadLines(reader)
	if err != nil {
		return nil, err
	}
	var metadata Metadata
	for _, line := range lines {
		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("bad metadata line: %s", line)
		}
		metadata.set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	return metadata, nil
}

func (md Metadata) encode(writer io.Writer) error {
	w := bufio.NewWriter(writer)
	for _, entry := range md {
		if strings.ContainsAny(entry.Key+entry.Value, "\n") ||
			strings.Contains(entry.Key, ":") {
			return fmt.Errorf("cannot encode metadata key: %q", entry.Key)
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", entry.Key,
			entry.Value); err != nil {
			return err
		}
	}
	return w.Flush()
}

func (md Metadata) get(key string) (string, bool) {
	for _, entry := range md {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return "", false
}

func (md *Metadata) set(key, value string) {
	for index, entry := range *md {
		if entry.Key == key {
			(*md)[index].Value = value
			return
		}
	}
	*md = append(*md, MetadataEntry{Key: key, Value: value})
}
