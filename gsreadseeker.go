package vcfcolumnar

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

type ReadSeekCloser interface {
	io.Reader
	io.Seeker
	io.Closer
}

// Decorates a Google Storage object handle with io.Reader, io.Seeker and
// io.Closer. Derived from
// https://github.com/googleapis/google-cloud-go/issues/1124#issuecomment-419070541
type GSReadSeekCloser struct {
	*storage.ObjectHandle
	Context context.Context
	r       *storage.Reader
	offset  int64 // initial offset
	pos     int64 // bytes consumed since the last seek
}

func (s *GSReadSeekCloser) Read(buf []byte) (int, error) {
	var err error
	if s.r == nil {
		s.r, err = s.NewRangeReader(s.Context, s.offset, -1)
		if err != nil {
			return 0, err
		}
	}
	n, err := s.r.Read(buf)
	s.pos += int64(n)

	return n, err
}

// Seek only supports rewinding to an absolute offset. The open range reader
// is dropped and a new one is started lazily on the next Read.
func (s *GSReadSeekCloser) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset = s.offset + s.pos + offset
	default:
		return 0, fmt.Errorf("io.Seeker 'whence' value %d is not implemented", whence)
	}

	if s.r != nil {
		s.r.Close()
		s.r = nil
	}

	s.offset = offset
	s.pos = 0

	return s.offset, nil
}

func (s *GSReadSeekCloser) Close() error {
	if s.r != nil {
		err := s.r.Close()
		s.r = nil
		return err
	}

	return nil
}

// MaybeOpenSeekerFromGoogleStorage opens gs://bucket/object paths through the
// given client, and anything else from the local filesystem. The second
// return value is the size of the object in bytes.
func MaybeOpenSeekerFromGoogleStorage(path string, client *storage.Client) (ReadSeekCloser, int64, error) {
	if client != nil && strings.HasPrefix(path, "gs://") {
		pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
		if len(pathParts) != 2 {
			return nil, 0, fmt.Errorf("Tried to split your google storage path into 2 parts, but got %d: %v", len(pathParts), pathParts)
		}

		handle := client.Bucket(pathParts[0]).Object(pathParts[1])
		wrappedHandle := &GSReadSeekCloser{
			ObjectHandle: handle,
			Context:      context.Background(),
		}

		attrs, err := wrappedHandle.ObjectHandle.Attrs(wrappedHandle.Context)
		if err != nil {
			return nil, 0, pfx.Err(fmt.Errorf("%s: %s", path, err))
		}

		return wrappedHandle, attrs.Size, nil
	}

	local, err := ExpandHome(path)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(local)
	if err != nil {
		return nil, 0, err
	}
	fstat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, fstat.Size(), nil
}

// ExpandHome expands a leading ~/ to the current user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	usr, err := user.Current()
	if err != nil {
		return "", pfx.Err(err)
	}
	return filepath.Join(usr.HomeDir, path[2:]), nil
}
