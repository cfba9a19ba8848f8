// Package vcfcolumnar opens variant-call inputs from local disk or Google
// Storage, undoing any compression along the way. The conversion itself lives
// in the convert, vcf, variable and schema packages.
package vcfcolumnar

import (
	"io"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// Open returns a decompressed stream over path. A nil client restricts Open
// to the local filesystem.
func Open(path string, client *storage.Client) (io.ReadCloser, error) {
	raw, _, err := MaybeOpenSeekerFromGoogleStorage(path, client)
	if err != nil {
		return nil, pfx.Err(err)
	}

	rc, err := MaybeDecompressReadCloser(raw)
	if err != nil {
		raw.Close()
		return nil, err
	}

	return rc, nil
}
