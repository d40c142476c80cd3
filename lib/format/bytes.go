package format

import (
	"fmt"
	"strconv"
	"strings"
)

var multipliers = map[string]uint{
	"":  0,
	"k": 10,
	"m": 20,
	"g": 30,
	"t": 40,
}

func parseBytes(value string) (uint64, error) {
	trimmed := strings.TrimSpace(value)
	index := 0
	for index < len(trimmed) && trimmed[index] >= '0' && trimmed[index] <= '9' {
		index++
	}
	if index < 1 {
		return 0, fmt.Errorf("no number in size: \"%s\"", value)
	}
	number, err := strconv.ParseUint(trimmed[:index], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad size: \"%s\": %s", value, err)
	}
	suffix := strings.ToLower(strings.TrimSpace(trimmed[index:]))
	suffix = strings.TrimSuffix(suffix, "b")
	suffix = strings.TrimSuffix(suffix, "i")
	shift, ok := multipliers[suffix]
	if !ok {
		return 0, fmt.Errorf("unknown size suffix in: \"%s\"", value)
	}
	if shift > 0 && number > (^uint64(0))>>shift {
		return 0, fmt.Errorf("size overflows: \"%s\"", value)
	}
	return number << shift, nil
}

func (b *Bytes) set(value string) error {
	if val, err := parseBytes(value); err != nil {
		return err
	} else {
		*b = Bytes(val)
		return nil
	}
}
