package disklayout

import (
	"fmt"
	"strings"
)

var modeToText = map[EncryptionMode]string{
	ModeNone:               "none",
	ModeStandard:           "standard",
	ModeFullDiskEncryption: "fde",
}

var roleToText = map[Role]string{
	RoleEFI:       "EFI",
	RoleBoot:      "boot",
	RoleSwap:      "swap",
	RoleRoot:      "root",
	RoleContainer: "container",
}

func (m *EncryptionMode) set(value string) error {
	switch strings.ToLower(value) {
	case "none", "":
		*m = ModeNone
	case "standard":
		*m = ModeStandard
	case "fde", "full-disk-encryption":
		*m = ModeFullDiskEncryption
	default:
		return fmt.Errorf("unknown encryption mode: %s", value)
	}
	return nil
}

func (m EncryptionMode) string() string {
	if text, ok := modeToText[m]; ok {
		return text
	}
	return fmt.Sprintf("EncryptionMode(%d)", uint(m))
}

func (r Role) string() string {
	if text, ok := roleToText[r]; ok {
		return text
	}
	return fmt.Sprintf("Role(%d)", uint(r))
}
