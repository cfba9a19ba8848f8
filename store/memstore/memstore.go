// Package memstore keeps a dataset in memory. It backs tests and small
// conversions whose output is consumed in-process.
package memstore

import (
	"fmt"

	"github.com/carbocation/vcfcolumnar/schema"
)

// Backend creates in-memory datasets. The last dataset created stays
// reachable through Dataset.
type Backend struct {
	Dataset *Dataset
}

func (b *Backend) Create(dims []schema.Dimension, vars []schema.Variable) (schema.Handle, error) {
	d := &Dataset{
		dims:   append([]schema.Dimension(nil), dims...),
		vars:   make(map[string]schema.Variable, len(vars)),
		data:   make(map[string]interface{}, len(vars)),
		Writes: make(map[string]int),
	}

	for _, v := range vars {
		if _, exists := d.vars[v.Name]; exists {
			return nil, fmt.Errorf("%w: %s", schema.ErrDuplicateVariable, v.Name)
		}
		n, err := schema.Length(dims, v)
		if err != nil {
			return nil, err
		}
		buf, err := v.Type.NewBuffer(n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.Name, err)
		}
		d.vars[v.Name] = v
		d.data[v.Name] = buf
	}

	b.Dataset = d
	return d, nil
}

type Dataset struct {
	dims []schema.Dimension
	vars map[string]schema.Variable
	data map[string]interface{}

	// Writes counts the write calls received per variable.
	Writes map[string]int

	closed bool
}

func (d *Dataset) WriteFull(name string, data interface{}) error {
	v, n, err := d.lookup(name)
	if err != nil {
		return err
	}
	if err := schema.CheckBuffer(v.Type, n, data); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	switch src := data.(type) {
	case []int8:
		copy(d.data[name].([]int8), src)
	case []byte:
		copy(d.data[name].([]byte), src)
	case []int32:
		copy(d.data[name].([]int32), src)
	case []float64:
		copy(d.data[name].([]float64), src)
	case []string:
		copy(d.data[name].([]string), src)
	}
	d.Writes[name]++
	return nil
}

func (d *Dataset) WriteStrings(name string, start int, values []string) error {
	v, n, err := d.lookup(name)
	if err != nil {
		return err
	}
	if v.Type != schema.String {
		return fmt.Errorf("%w: %s is %v, not string", schema.ErrBufferMismatch, name, v.Type)
	}
	if start < 0 || start+len(values) > n {
		return fmt.Errorf("%w: range [%d,%d) outside %s of length %d", schema.ErrBufferMismatch, start, start+len(values), name, n)
	}

	copy(d.data[name].([]string)[start:], values)
	d.Writes[name]++
	return nil
}

func (d *Dataset) Close() error {
	d.closed = true
	return nil
}

func (d *Dataset) Closed() bool {
	return d.closed
}

func (d *Dataset) lookup(name string) (schema.Variable, int, error) {
	if d.closed {
		return schema.Variable{}, 0, fmt.Errorf("dataset is closed")
	}
	v, exists := d.vars[name]
	if !exists {
		return v, 0, fmt.Errorf("unknown variable %s", name)
	}
	n, err := schema.Length(d.dims, v)
	return v, n, err
}

func (d *Dataset) Dimensions() []schema.Dimension {
	return d.dims
}

func (d *Dataset) Variable(name string) (schema.Variable, bool) {
	v, exists := d.vars[name]
	return v, exists
}

// Values returns the stored buffer of the named variable.
func Values[T any](d *Dataset, name string) ([]T, error) {
	raw, exists := d.data[name]
	if !exists {
		return nil, fmt.Errorf("unknown variable %s", name)
	}
	out, ok := raw.([]T)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %T", schema.ErrBufferMismatch, name, raw)
	}
	return out, nil
}
