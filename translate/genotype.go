package translate

// CallWidth is the number of character positions a genotype call occupies:
// allele, separator, allele.
const CallWidth = 3

var genotypeLookup = func() (out [256]int8) {
	for c := '0'; c <= '9'; c++ {
		out[c] = int8(c-'0') + 1
	}
	out['.'] = 0
	out['|'] = 1
	out['\\'] = 2
	out['/'] = 3

	return out
}()

// Genotype encodes the first character of a genotype call fragment. Alleles
// and separators share one code space; each output slot is decoded on its own
// so the overlap is harmless. Unknown characters and the empty string are 0.
type Genotype struct{}

func (Genotype) Translate(s string) int8 {
	if s == "" {
		return 0
	}
	return genotypeLookup[s[0]]
}

// Call encodes a whole genotype call into its three slots. Empty calls are
// read as "./." and calls shorter than three characters as raw + "/."; short
// reports whether either padding rule applied.
func Call(raw string) (out [CallWidth]int8, short bool) {
	var g Genotype

	switch {
	case raw == "":
		return [CallWidth]int8{g.Translate("."), g.Translate("/"), g.Translate(".")}, true
	case len(raw) < CallWidth:
		return [CallWidth]int8{g.Translate(raw), g.Translate("/"), g.Translate(".")}, true
	}

	for m := 0; m < CallWidth; m++ {
		out[m] = g.Translate(raw[m:])
	}
	return out, false
}

var baseLookup = func() (out [256]int8) {
	for i := range out {
		out[i] = 42
	}
	for c, code := range map[byte]int8{'a': 1, 'c': 2, 'g': 3, 't': 4, 'A': 1, 'C': 2, 'G': 3, 'T': 4, '-': 0, '0': 0} {
		out[c] = code
	}

	return out
}()

// Base encodes a nucleotide call: A/C/G/T as 1-4 in either case, '-', '0'
// and the empty string as 0, and anything else as 42.
type Base struct{}

func (Base) Translate(s string) int8 {
	if s == "" {
		return 0
	}
	return baseLookup[s[0]]
}
