// Package arrowstore writes a dataset as a directory of Arrow IPC files, one
// per variable, next to a JSON manifest describing the dimensions and
// variables. Multi-dimensional variables are stored flattened in row-major
// order; their dimension names are kept in the field metadata.
package arrowstore

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/carbocation/pfx"
	"github.com/carbocation/vcfcolumnar/buildinfo"
	"github.com/carbocation/vcfcolumnar/schema"
	"github.com/goccy/go-json"
)

const (
	ManifestName = "manifest.json"
	FormatName   = "vcfcolumnar-arrow"

	metaDims = "dims"
	metaType = "type"
)

// Backend creates datasets under Dir, which must not exist yet or be empty.
type Backend struct {
	Dir string

	// Build is recorded in the manifest. Defaults to the running binary's
	// build description.
	Build string
}

func (b Backend) Create(dims []schema.Dimension, vars []schema.Variable) (schema.Handle, error) {
	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return nil, pfx.Err(err)
	}
	entries, err := os.ReadDir(b.Dir)
	if err != nil {
		return nil, pfx.Err(err)
	}
	if len(entries) > 0 {
		return nil, fmt.Errorf("output directory %s is not empty", b.Dir)
	}

	build := b.Build
	if build == "" {
		build = buildinfo.Read().String()
	}

	w := &writer{
		dir:     b.Dir,
		mem:     memory.NewGoAllocator(),
		strings: make(map[string][]string),
		manifest: Manifest{
			Format:     FormatName,
			Build:      build,
			Dimensions: make([]DimensionEntry, 0, len(dims)),
			Variables:  make([]VariableEntry, 0, len(vars)),
		},
		index: make(map[string]int, len(vars)),
		dims:  dims,
	}

	for _, d := range dims {
		w.manifest.Dimensions = append(w.manifest.Dimensions, DimensionEntry{Name: d.Name, Size: d.Size, Unlimited: d.Unlimited})
	}
	for _, v := range vars {
		if _, exists := w.index[v.Name]; exists {
			return nil, fmt.Errorf("%w: %s", schema.ErrDuplicateVariable, v.Name)
		}
		if _, err := arrowType(v.Type); err != nil {
			return nil, fmt.Errorf("%s: %w", v.Name, err)
		}
		n, err := schema.Length(dims, v)
		if err != nil {
			return nil, err
		}

		w.index[v.Name] = len(w.manifest.Variables)
		w.manifest.Variables = append(w.manifest.Variables, VariableEntry{
			Name:   v.Name,
			Type:   v.Type.String(),
			Dims:   v.Dims,
			Length: n,
			File:   url.PathEscape(v.Name) + ".arrow",
		})
	}

	// An early manifest lets a reader make sense of a partial dataset.
	if err := w.writeManifest(); err != nil {
		return nil, err
	}

	return w, nil
}

type writer struct {
	dir      string
	mem      memory.Allocator
	dims     []schema.Dimension
	manifest Manifest
	index    map[string]int

	// String variables may arrive in ranges and are written on Close.
	strings map[string][]string
}

func (w *writer) entry(name string) (*VariableEntry, schema.Type, error) {
	i, exists := w.index[name]
	if !exists {
		return nil, 0, fmt.Errorf("unknown variable %s", name)
	}
	e := &w.manifest.Variables[i]
	t, err := schema.ParseType(e.Type)
	return e, t, err
}

func (w *writer) WriteFull(name string, data interface{}) error {
	e, t, err := w.entry(name)
	if err != nil {
		return err
	}
	if err := schema.CheckBuffer(t, e.Length, data); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	if t == schema.String {
		w.strings[name] = append([]string(nil), data.([]string)...)
		return nil
	}

	return w.writeColumn(e, t, data)
}

func (w *writer) WriteStrings(name string, start int, values []string) error {
	e, t, err := w.entry(name)
	if err != nil {
		return err
	}
	if t != schema.String {
		return fmt.Errorf("%w: %s is %v, not string", schema.ErrBufferMismatch, name, t)
	}
	if start < 0 || start+len(values) > e.Length {
		return fmt.Errorf("%w: range [%d,%d) outside %s of length %d", schema.ErrBufferMismatch, start, start+len(values), name, e.Length)
	}

	buf, exists := w.strings[name]
	if !exists {
		buf = make([]string, e.Length)
		w.strings[name] = buf
	}
	copy(buf[start:], values)
	return nil
}

func (w *writer) Close() error {
	for name, values := range w.strings {
		e, t, err := w.entry(name)
		if err != nil {
			return err
		}
		if err := w.writeColumn(e, t, values); err != nil {
			return err
		}
	}
	w.strings = make(map[string][]string)

	return w.writeManifest()
}

func (w *writer) writeColumn(e *VariableEntry, t schema.Type, data interface{}) error {
	dt, err := arrowType(t)
	if err != nil {
		return err
	}

	col, err := w.buildArray(data)
	if err != nil {
		return fmt.Errorf("%s: %w", e.Name, err)
	}
	defer col.Release()

	md := arrow.NewMetadata([]string{metaDims, metaType}, []string{strings.Join(e.Dims, ","), e.Type})
	sch := arrow.NewSchema([]arrow.Field{{Name: e.Name, Type: dt}}, &md)

	rec := array.NewRecord(sch, []arrow.Array{col}, int64(col.Len()))
	defer rec.Release()

	f, err := os.Create(filepath.Join(w.dir, e.File))
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	fw, err := ipc.NewFileWriter(f, ipc.WithSchema(sch), ipc.WithAllocator(w.mem), ipc.WithZstd())
	if err != nil {
		return fmt.Errorf("creating arrow writer for %s: %w", e.Name, err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("writing %s: %w", e.Name, err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", e.Name, err)
	}

	e.Written = true
	return pfx.Err(f.Close())
}

func (w *writer) buildArray(data interface{}) (arrow.Array, error) {
	switch v := data.(type) {
	case []int8:
		b := array.NewInt8Builder(w.mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return b.NewArray(), nil
	case []byte:
		b := array.NewUint8Builder(w.mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return b.NewArray(), nil
	case []int32:
		b := array.NewInt32Builder(w.mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return b.NewArray(), nil
	case []float64:
		b := array.NewFloat64Builder(w.mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return b.NewArray(), nil
	case []string:
		b := array.NewStringBuilder(w.mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return b.NewArray(), nil
	}
	return nil, fmt.Errorf("%w: unsupported buffer %T", schema.ErrBufferMismatch, data)
}

func (w *writer) writeManifest() error {
	out, err := json.MarshalIndent(w.manifest, "", "  ")
	if err != nil {
		return pfx.Err(err)
	}
	return pfx.Err(os.WriteFile(filepath.Join(w.dir, ManifestName), out, 0o644))
}

func arrowType(t schema.Type) (arrow.DataType, error) {
	switch t {
	case schema.Byte:
		return arrow.PrimitiveTypes.Int8, nil
	case schema.Char:
		return arrow.PrimitiveTypes.Uint8, nil
	case schema.Int:
		return arrow.PrimitiveTypes.Int32, nil
	case schema.Double:
		return arrow.PrimitiveTypes.Float64, nil
	case schema.String:
		return arrow.BinaryTypes.String, nil
	}
	return nil, fmt.Errorf("%w: %v", schema.ErrUnmappedType, t)
}
