// Package chrpos maps contig names onto the small integer codes stored in the
// Chromosome variable.
package chrpos

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BenLubar/memoize"
)

// Mapper converts a contig name (already stripped of any "chr" prefix) into
// its numeric code.
type Mapper func(token string) (int, error)

// Codes used for the human non-autosomal contigs.
const (
	Unknown = 0
	X       = 23
	Y       = 24
	XY      = 25
	MT      = 26
)

var memoizedHuman = memoize.Memoize(human)

// Human maps autosomes to their number, X/Y/XY/MT(M) to 23-26 and U to 0.
// Anything else is an error. Results are cached per token since a VCF holds
// millions of rows but only a handful of distinct contigs.
func Human(token string) (int, error) {
	return memoizedHuman.(func(string) (int, error))(token)
}

func human(token string) (int, error) {
	switch strings.ToUpper(token) {
	case "X":
		return X, nil
	case "Y":
		return Y, nil
	case "XY":
		return XY, nil
	case "MT", "M":
		return MT, nil
	case "U":
		return Unknown, nil
	}

	code, err := strconv.Atoi(token)
	if err != nil || code < 0 || code > 127 {
		return Unknown, fmt.Errorf("unknown value %q for chromosome", token)
	}

	return code, nil
}

// StripPrefix removes a literal leading "chr".
func StripPrefix(token string) string {
	return strings.TrimPrefix(token, "chr")
}
