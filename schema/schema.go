// Package schema collects the dimensions and variables of a dataset before
// any data is written, and defines the contract a storage backend fulfills.
package schema

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownDimension  = errors.New("unknown dimension")
	ErrDuplicateVariable = errors.New("duplicate variable")
	ErrUnmappedType      = errors.New("no storage type for field type")
	ErrBufferMismatch    = errors.New("buffer does not match variable")
)

// Type is the primitive stored in a variable. Buffers are []int8 for Byte,
// []byte for Char, []int32 for Int, []float64 for Double and []string for
// String.
type Type int

const (
	Byte Type = iota + 1
	Char
	Int
	Double
	String
)

func (t Type) String() string {
	switch t {
	case Byte:
		return "byte"
	case Char:
		return "char"
	case Int:
		return "int"
	case Double:
		return "double"
	case String:
		return "string"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType is the inverse of Type.String.
func ParseType(s string) (Type, error) {
	for t := Byte; t <= String; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnmappedType, s)
}

// NewBuffer allocates a zeroed buffer of n elements of the Go type that
// backs t.
func (t Type) NewBuffer(n int) (interface{}, error) {
	switch t {
	case Byte:
		return make([]int8, n), nil
	case Char:
		return make([]byte, n), nil
	case Int:
		return make([]int32, n), nil
	case Double:
		return make([]float64, n), nil
	case String:
		return make([]string, n), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnmappedType, t)
}

type Dimension struct {
	Name      string
	Size      int
	Unlimited bool
}

type Variable struct {
	Name string
	Type Type
	Dims []string // slowest varying first
}

// Schema is built up by the variable handlers. Dimensions must be declared
// before the variables that use them.
type Schema struct {
	dims     map[string]*Dimension
	vars     []Variable
	varIndex map[string]int
}

func New() *Schema {
	return &Schema{
		dims:     make(map[string]*Dimension),
		vars:     make([]Variable, 0),
		varIndex: make(map[string]int),
	}
}

// AddDimension declares a dimension. Declaring a name that already exists
// leaves the existing dimension untouched.
func (s *Schema) AddDimension(name string, size int, unlimited bool) {
	if _, exists := s.dims[name]; exists {
		return
	}
	s.dims[name] = &Dimension{Name: name, Size: size, Unlimited: unlimited}
}

// ReviseDimension changes the size of an already declared dimension.
func (s *Schema) ReviseDimension(name string, size int) error {
	d, exists := s.dims[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownDimension, name)
	}
	d.Size = size
	return nil
}

func (s *Schema) DimensionSize(name string) (int, bool) {
	d, exists := s.dims[name]
	if !exists {
		return 0, false
	}
	return d.Size, true
}

func (s *Schema) AddVariable(name string, t Type, dims ...string) error {
	if _, exists := s.varIndex[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateVariable, name)
	}
	for _, d := range dims {
		if _, exists := s.dims[d]; !exists {
			return fmt.Errorf("%w: %s (used by %s)", ErrUnknownDimension, d, name)
		}
	}
	if _, err := t.NewBuffer(0); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	s.varIndex[name] = len(s.vars)
	s.vars = append(s.vars, Variable{Name: name, Type: t, Dims: append([]string(nil), dims...)})
	return nil
}

// Variable looks up a declared variable by name.
func (s *Schema) Variable(name string) (Variable, bool) {
	i, exists := s.varIndex[name]
	if !exists {
		return Variable{}, false
	}
	return s.vars[i], true
}

// Variables returns the variables in declaration order.
func (s *Schema) Variables() []Variable {
	return append([]Variable(nil), s.vars...)
}

// Dimensions returns the dimensions in creation order: unlimited ones first,
// then fixed ones, each group sorted by name.
func (s *Schema) Dimensions() []Dimension {
	out := make([]Dimension, 0, len(s.dims))
	for _, d := range s.dims {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Unlimited != out[j].Unlimited {
			return out[i].Unlimited
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Len is the number of elements a full buffer for the named variable holds.
func (s *Schema) Len(name string) (int, error) {
	v, exists := s.Variable(name)
	if !exists {
		return 0, fmt.Errorf("unknown variable %s", name)
	}
	return Length(s.Dimensions(), v)
}

// Create hands the finished schema to a backend.
func (s *Schema) Create(b Backend) (Handle, error) {
	h, err := b.Create(s.Dimensions(), s.Variables())
	if err != nil {
		return nil, fmt.Errorf("creating dataset: %w", err)
	}
	return h, nil
}
