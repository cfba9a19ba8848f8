// Package translate turns the raw text of a VCF field into the primitive value
// stored in a dataset variable. Translators never fail: text that cannot be
// read yields the same value the empty string does.
package translate

import (
	"math"
	"strconv"
	"strings"
)

// Translator converts one raw token.
type Translator[T any] interface {
	Translate(s string) T
}

// Int reads the leading integer of s, ignoring whatever follows, the way C's
// atoi does. "12,5" is 12; "." and "" are 0. Values beyond int32 saturate.
type Int struct{}

func (Int) Translate(s string) int32 {
	s = strings.TrimLeft(s, " \t")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}

	// Only range errors are possible here, and ParseInt saturates v for
	// those.
	v, _ := strconv.ParseInt(s[:end], 10, 32)
	return int32(v)
}

// Float reads the leading floating point number of s, like C's atof.
// "1.5,2" is 1.5; "." and "" are 0.
type Float struct{}

func (Float) Translate(s string) float64 {
	s = strings.TrimLeft(s, " \t")

	if prefix := floatPrefix(s); prefix != "" {
		v, err := strconv.ParseFloat(prefix, 64)
		if err == nil || math.IsInf(v, 0) {
			return v
		}
		return 0
	}

	lower := strings.ToLower(s)
	sign := 1.0
	if strings.HasPrefix(lower, "-") {
		sign = -1
		lower = lower[1:]
	} else if strings.HasPrefix(lower, "+") {
		lower = lower[1:]
	}
	switch {
	case strings.HasPrefix(lower, "inf"):
		return math.Inf(int(sign))
	case strings.HasPrefix(lower, "nan"):
		return math.NaN()
	}

	return 0
}

// floatPrefix returns the longest leading run of s shaped like a decimal
// floating point literal.
func floatPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	mantissa := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		mantissa++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if mantissa+frac > 0 {
			i = j
			mantissa += frac
		}
	}
	if mantissa == 0 {
		return ""
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expStart := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > expStart {
			i = j
		}
	}

	return s[:i]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Byte is Int narrowed to a signed byte, saturating at its bounds. INFO
// flags ("1" when present, absent otherwise) are stored with it.
type Byte struct{}

func (Byte) Translate(s string) int8 {
	v := Int{}.Translate(s)
	switch {
	case v > math.MaxInt8:
		return math.MaxInt8
	case v < math.MinInt8:
		return math.MinInt8
	}
	return int8(v)
}
