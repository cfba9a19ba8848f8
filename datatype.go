package vcfcolumnar

import (
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"io"

	"github.com/carbocation/pfx"
	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZ
	DataTypeBZip2
)

func (dt DataType) String() string {
	switch dt {
	case DataTypeNoCompression:
		return "uncompressed"
	case DataTypeGzip:
		return "gzip"
	case DataTypeZip:
		return "zip"
	case DataTypeXZ:
		return "xz"
	case DataTypeZ:
		return "zlib"
	case DataTypeBZip2:
		return "bzip2"
	}
	return "invalid"
}

var byteCodeSigs = map[DataType][]byte{
	DataTypeGzip:  {0x1f, 0x8b, 0x08},
	DataTypeZip:   {0x50, 0x4b, 0x03, 0x04},
	DataTypeXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	DataTypeZ:     {0x1f, 0x9d},
	DataTypeBZip2: {0x42, 0x5a, 0x68},
}

// DetectDataType attempts to detect the compression of a stream by checking
// its leading bytes against a set of known signatures. Byte code signatures
// from https://stackoverflow.com/a/19127748/199475. Streams shorter than the
// longest signature are only compared over the bytes that exist; an empty
// stream is reported as uncompressed.
func DetectDataType(r io.Reader) (DataType, error) {
	buff := make([]byte, 6)
	n, err := io.ReadFull(r, buff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return DataTypeInvalid, err
	}
	buff = buff[:n]

Outer:
	for dt, sig := range byteCodeSigs {
		if len(sig) > len(buff) {
			continue
		}
		for position := range sig {
			if buff[position] != sig[position] {
				continue Outer
			}
		}
		return dt, nil
	}

	return DataTypeNoCompression, nil
}

// MaybeDecompressReadCloser sniffs the compression of f, rewinds it, and
// returns a reader over the decompressed content. Closing the returned reader
// also closes f.
func MaybeDecompressReadCloser(f ReadSeekCloser) (io.ReadCloser, error) {
	dt, err := DetectDataType(f)
	if err != nil {
		return nil, pfx.Err(err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, pfx.Err(err)
	}

	var rdr io.Reader
	switch dt {
	case DataTypeGzip:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return &stackedCloser{Reader: gz, closers: []io.Closer{gz, f}}, nil
	case DataTypeZ:
		z, err := zlib.NewReader(f)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return &stackedCloser{Reader: z, closers: []io.Closer{z, f}}, nil
	case DataTypeZip:
		zr := zipstream.NewReader(f)
		// Only the first entry of an archive is read.
		if _, err := zr.Next(); err != nil {
			return nil, pfx.Err(err)
		}
		rdr = zr
	case DataTypeBZip2:
		rdr = bzip2.NewReader(f)
	case DataTypeXZ:
		rdr, err = xz.NewReader(f, 0)
		if err != nil {
			return nil, pfx.Err(err)
		}
	default:
		// No compression detected; hand back the rewound source.
		return f, nil
	}

	return &stackedCloser{Reader: rdr, closers: []io.Closer{f}}, nil
}

// stackedCloser closes a decompressor and the source underneath it, in order.
type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (c *stackedCloser) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
