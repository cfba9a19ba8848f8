package arrowstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/carbocation/pfx"
	"github.com/carbocation/vcfcolumnar/schema"
	"github.com/goccy/go-json"
)

type Manifest struct {
	Format     string           `json:"format"`
	Build      string           `json:"build"`
	Dimensions []DimensionEntry `json:"dimensions"`
	Variables  []VariableEntry  `json:"variables"`
}

type DimensionEntry struct {
	Name      string `json:"name"`
	Size      int    `json:"size"`
	Unlimited bool   `json:"unlimited,omitempty"`
}

type VariableEntry struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Dims    []string `json:"dims"`
	Length  int      `json:"length"`
	File    string   `json:"file"`
	Written bool     `json:"written"`
}

// Dataset reads back a directory written by Backend.
type Dataset struct {
	Dir      string
	Manifest Manifest
}

func Open(dir string) (*Dataset, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, pfx.Err(err)
	}

	d := &Dataset{Dir: dir}
	if err := json.Unmarshal(raw, &d.Manifest); err != nil {
		return nil, fmt.Errorf("reading manifest of %s: %w", dir, err)
	}
	if d.Manifest.Format != FormatName {
		return nil, fmt.Errorf("%s holds format %q, expected %q", dir, d.Manifest.Format, FormatName)
	}

	return d, nil
}

func (d *Dataset) Variable(name string) (VariableEntry, bool) {
	for _, v := range d.Manifest.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return VariableEntry{}, false
}

func (d *Dataset) DimensionSize(name string) (int, bool) {
	for _, dim := range d.Manifest.Dimensions {
		if dim.Name == name {
			return dim.Size, true
		}
	}
	return 0, false
}

// Read returns the flattened contents of a variable as its buffer type.
// Variables that were never written read as zeroes.
func (d *Dataset) Read(name string) (interface{}, error) {
	v, exists := d.Variable(name)
	if !exists {
		return nil, fmt.Errorf("unknown variable %s", name)
	}
	t, err := schema.ParseType(v.Type)
	if err != nil {
		return nil, err
	}
	if !v.Written {
		return t.NewBuffer(v.Length)
	}

	f, err := os.Open(filepath.Join(d.Dir, v.File))
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer r.Close()

	var (
		i8  []int8
		u8  []byte
		i32 []int32
		f64 []float64
		str []string
	)
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, fmt.Errorf("reading %s batch %d: %w", name, i, err)
		}

		switch col := rec.Column(0).(type) {
		case *array.Int8:
			i8 = append(i8, col.Int8Values()...)
		case *array.Uint8:
			u8 = append(u8, col.Uint8Values()...)
		case *array.Int32:
			i32 = append(i32, col.Int32Values()...)
		case *array.Float64:
			f64 = append(f64, col.Float64Values()...)
		case *array.String:
			for j := 0; j < col.Len(); j++ {
				str = append(str, col.Value(j))
			}
		default:
			return nil, fmt.Errorf("%w: %s has column type %v", schema.ErrUnmappedType, name, col.DataType())
		}
	}

	var out interface{}
	switch t {
	case schema.Byte:
		out = i8
	case schema.Char:
		out = u8
	case schema.Int:
		out = i32
	case schema.Double:
		out = f64
	case schema.String:
		out = str
	}
	if err := schema.CheckBuffer(t, v.Length, out); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Values reads a variable as a typed slice.
func Values[T any](d *Dataset, name string) ([]T, error) {
	raw, err := d.Read(name)
	if err != nil {
		return nil, err
	}
	out, ok := raw.([]T)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %T", schema.ErrBufferMismatch, name, raw)
	}
	return out, nil
}
