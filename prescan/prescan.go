// Package prescan walks a text file once to learn how many lines it holds and
// how wide the widest one is, so that a later streaming pass can size its line
// buffer up front.
package prescan

import (
	"bufio"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/carbocation/vcfcolumnar"
)

// Stats summarizes the lines of a file. Width excludes the line terminator.
type Stats struct {
	Rows  int
	Width int
}

// Scan reads r to the end. A final line without a newline still counts.
func Scan(r io.Reader) (Stats, error) {
	var out Stats

	br := bufio.NewReaderSize(r, 64*1024)
	current := 0
	for {
		chunk, err := br.ReadSlice('\n')
		current += len(chunk)

		if err == nil {
			// Full newline-terminated line
			out.observe(current - trailing(chunk))
			current = 0
			continue
		}

		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		if errors.Is(err, io.EOF) {
			if current > 0 {
				out.observe(current - trailing(chunk))
			}
			return out, nil
		}

		return out, pfx.Err(err)
	}
}

func (s *Stats) observe(width int) {
	s.Rows++
	if width > s.Width {
		s.Width = width
	}
}

// trailing reports how many terminator bytes ("\n" or "\r\n") end chunk.
func trailing(chunk []byte) int {
	n := len(chunk)
	if n == 0 || chunk[n-1] != '\n' {
		return 0
	}
	if n > 1 && chunk[n-2] == '\r' {
		return 2
	}
	return 1
}

// File scans the (possibly compressed, possibly gs://) file at path.
func File(path string, client *storage.Client) (Stats, error) {
	rc, err := vcfcolumnar.Open(path, client)
	if err != nil {
		return Stats{}, err
	}
	defer rc.Close()

	return Scan(rc)
}

// RowCount returns the number of lines in the file at path.
func RowCount(path string, client *storage.Client) (int, error) {
	s, err := File(path, client)
	return s.Rows, err
}

// MaxLineWidth returns the width of the widest line in the file at path.
func MaxLineWidth(path string, client *storage.Client) (int, error) {
	s, err := File(path, client)
	return s.Width, err
}
