package flagutil

// StringList is a comma separated list of strings which may be used as a
// flag.Value.
type StringList []string

func (sl *StringList) String() string {
	return sl.string()
}

func (sl *StringList) Set(value string) error {
	return sl.set(value)
}
