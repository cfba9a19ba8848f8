package vcf

import (
	"strconv"
	"strings"
)

type FieldType int

const (
	TypeUnknown FieldType = iota
	Integer
	Float
	String
	Flag
	Character
)

func (t FieldType) String() string {
	switch t {
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case String:
		return "String"
	case Flag:
		return "Flag"
	case Character:
		return "Character"
	}
	return "Unknown"
}

func ParseFieldType(s string) FieldType {
	switch s {
	case "Integer":
		return Integer
	case "Float":
		return Float
	case "String":
		return String
	case "Flag":
		return Flag
	case "Character":
		return Character
	}
	return TypeUnknown
}

// VariableArity marks a field whose Number is not a fixed count (A, G, R, .)
// and that has no entry in the override table.
const VariableArity = -1

// DefaultArityOverrides pins the arity of FORMAT fields whose declared Number
// is not a fixed count. PL holds three likelihoods for a biallelic site.
var DefaultArityOverrides = map[string]int{
	"PL": 3,
}

// FieldDescriptor is the typed view of one INFO or FORMAT directive.
type FieldDescriptor struct {
	Name   string
	Type   FieldType
	Number string // as declared
	Arity  int    // 1 for scalars, N>1 for fixed vectors, or VariableArity
}

// Vector reports whether the field has a fixed length greater than one.
func (fd FieldDescriptor) Vector() bool {
	return fd.Arity > 1
}

// ExtractFields parses every directive stored under key ("INFO" or
// "FORMAT") into a descriptor. Directives that lack an ID, Number or Type
// are skipped. overrides may be nil.
func ExtractFields(h *Header, key string, overrides map[string]int) []FieldDescriptor {
	out := make([]FieldDescriptor, 0)
	for _, value := range h.Values(key) {
		fd, ok := ParseDescriptor(value)
		if !ok {
			continue
		}
		if fd.Arity == VariableArity {
			if n, exists := overrides[fd.Name]; exists {
				fd.Arity = n
			}
		}
		out = append(out, fd)
	}
	return out
}

// ParseDescriptor reads a bracketed directive value such as
// <ID=DP,Number=1,Type=Integer,Description="Read depth, total">. Keys may come
// in any order and unrecognized keys are ignored.
func ParseDescriptor(value string) (FieldDescriptor, bool) {
	inner := strings.TrimSpace(value)
	if start := strings.Index(inner, "<"); start >= 0 {
		inner = inner[start+1:]
	}
	if end := strings.LastIndex(inner, ">"); end >= 0 {
		inner = inner[:end]
	}

	var fd FieldDescriptor
	var id, number, vtype bool
	for _, pair := range splitUnquoted(inner, ',') {
		k, v, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(k) {
		case "ID":
			fd.Name = strings.TrimSpace(v)
			id = true
		case "Number":
			fd.Number = strings.TrimSpace(v)
			number = true
		case "Type":
			fd.Type = ParseFieldType(strings.TrimSpace(v))
			vtype = true
		}
	}
	if !(id && number && vtype) {
		return fd, false
	}

	fd.Arity = arity(fd.Number)
	return fd, true
}

func arity(number string) int {
	n, err := strconv.Atoi(number)
	switch {
	case err != nil || n < 0:
		return VariableArity
	case n <= 1:
		return 1
	}
	return n
}

// splitUnquoted splits s on sep, ignoring separators inside double quotes.
func splitUnquoted(s string, sep byte) []string {
	out := make([]string, 0)
	quoted := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			quoted = !quoted
		case sep:
			if !quoted {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}
