package sqlitestore

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/carbocation/vcfcolumnar/schema"
)

func encode(data interface{}) ([]byte, error) {
	switch v := data.(type) {
	case []int8:
		out := make([]byte, len(v))
		for i, x := range v {
			out[i] = byte(x)
		}
		return out, nil
	case []byte:
		return append([]byte(nil), v...), nil
	case []int32:
		out := make([]byte, 4*len(v))
		for i, x := range v {
			binary.LittleEndian.PutUint32(out[4*i:], uint32(x))
		}
		return out, nil
	case []float64:
		out := make([]byte, 8*len(v))
		for i, x := range v {
			binary.LittleEndian.PutUint64(out[8*i:], math.Float64bits(x))
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: cannot encode %T", schema.ErrBufferMismatch, data)
}

func decode(t schema.Type, n int, blob []byte) (interface{}, error) {
	width := map[schema.Type]int{schema.Byte: 1, schema.Char: 1, schema.Int: 4, schema.Double: 8}[t]
	if width == 0 {
		return nil, fmt.Errorf("%w: %v", schema.ErrUnmappedType, t)
	}
	if len(blob) != n*width {
		return nil, fmt.Errorf("%w: blob of %d bytes for %d %v values", schema.ErrBufferMismatch, len(blob), n, t)
	}

	switch t {
	case schema.Byte:
		out := make([]int8, n)
		for i := range out {
			out[i] = int8(blob[i])
		}
		return out, nil
	case schema.Char:
		return append([]byte(nil), blob...), nil
	case schema.Int:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(blob[4*i:]))
		}
		return out, nil
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[8*i:]))
	}
	return out, nil
}
