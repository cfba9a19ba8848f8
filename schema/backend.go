package schema

import "fmt"

// Backend allocates storage for a dataset. Create receives dimensions in the
// order returned by Schema.Dimensions, followed by the variables.
type Backend interface {
	Create(dims []Dimension, vars []Variable) (Handle, error)
}

// Handle accepts the writes for a created dataset.
type Handle interface {
	// WriteFull stores the complete contents of a variable. data must be a
	// buffer of the variable's Go type holding exactly Length elements.
	WriteFull(name string, data interface{}) error

	// WriteStrings stores values into a String variable starting at
	// element start.
	WriteStrings(name string, start int, values []string) error

	Close() error
}

// Length multiplies out the sizes of the dimensions v uses.
func Length(dims []Dimension, v Variable) (int, error) {
	n := 1
	for _, name := range v.Dims {
		found := false
		for _, d := range dims {
			if d.Name == name {
				n *= d.Size
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %s (used by %s)", ErrUnknownDimension, name, v.Name)
		}
	}
	return n, nil
}

// CheckBuffer verifies that data is a buffer of t's Go type with n elements.
func CheckBuffer(t Type, n int, data interface{}) error {
	var got int
	var ok bool

	switch t {
	case Byte:
		var b []int8
		b, ok = data.([]int8)
		got = len(b)
	case Char:
		var b []byte
		b, ok = data.([]byte)
		got = len(b)
	case Int:
		var b []int32
		b, ok = data.([]int32)
		got = len(b)
	case Double:
		var b []float64
		b, ok = data.([]float64)
		got = len(b)
	case String:
		var b []string
		b, ok = data.([]string)
		got = len(b)
	default:
		return fmt.Errorf("%w: %v", ErrUnmappedType, t)
	}

	if !ok {
		return fmt.Errorf("%w: %T is not a %v buffer", ErrBufferMismatch, data, t)
	}
	if got != n {
		return fmt.Errorf("%w: %d elements, expected %d", ErrBufferMismatch, got, n)
	}
	return nil
}

// PutFixed copies s into the fixed-width slot i of a Char buffer whose rows
// are width bytes wide. s is cut to width-1 bytes so that every slot keeps a
// NUL terminator.
func PutFixed(buf []byte, i, width int, s string) {
	if width <= 0 {
		return
	}
	if len(s) > width-1 {
		s = s[:width-1]
	}
	copy(buf[i*width:(i+1)*width], s)
}

// GetFixed reads slot i of a Char buffer back up to its first NUL.
func GetFixed(buf []byte, i, width int) string {
	row := buf[i*width : (i+1)*width]
	for j, c := range row {
		if c == 0 {
			return string(row[:j])
		}
	}
	return string(row)
}
