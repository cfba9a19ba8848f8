package vcf

import "strings"

// Entry is one "##key=value" directive.
type Entry struct {
	Key   string
	Value string
}

// Header holds the "##" directives of a VCF in file order. Keys may repeat;
// INFO, FORMAT and FILTER directives always do.
type Header struct {
	entries []Entry
}

func (h *Header) Add(key, value string) {
	h.entries = append(h.entries, Entry{Key: key, Value: value})
}

// Values returns every value stored under key, in insertion order.
func (h *Header) Values(key string) []string {
	out := make([]string, 0)
	for _, e := range h.entries {
		if e.Key == key {
			out = append(out, e.Value)
		}
	}
	return out
}

func (h *Header) Entries() []Entry {
	return h.entries
}

func (h *Header) Len() int {
	return len(h.entries)
}

// parseDirective splits the text after "##" at its first '='. A directive
// without '=' is a flag and gets the value "1".
func parseDirective(text string) (key, value string) {
	key, value, found := strings.Cut(text, "=")
	if !found {
		return key, "1"
	}
	return key, value
}
