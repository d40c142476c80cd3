package integrity

import (
	"github.com/Cloud-Foundations/Provisioner/lib/checksums"
	"github.com/Cloud-Foundations/Provisioner/lib/hash"
)

func diff(stored, current *checksums.Manifest, verbose bool) *Report {
	storedHashes := make(map[string]hash.Hash, len(stored.Entries))
	for _, entry := range stored.Entries {
		storedHashes[entry.Path] = entry.Hash
	}
	report := &Report{Checked: uint(len(current.Entries))}
	for _, entry := range current.Entries {
		storedHash, ok := storedHashes[entry.Path]
		if !ok {
			report.Added = append(report.Added, entry.Path)
			continue
		}
		delete(storedHashes, entry.Path)
		if storedHash != entry.Hash {
			report.Modified = append(report.Modified, entry.Path)
		} else if verbose {
			report.Unchanged = append(report.Unchanged, entry.Path)
		}
	}
	// Walk the stored entries so that the removed list stays sorted.
	for _, entry := range stored.Entries {
		if _, ok := storedHashes[entry.Path]; ok {
			report.Removed = append(report.Removed, entry.Path)
		}
	}
	return report
}
