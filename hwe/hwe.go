// Package hwe tests biallelic genotype counts for Hardy-Weinberg equilibrium.
package hwe

import (
	"github.com/BenLubar/memoize"
)

// Allele codes of an encoded genotype call: the digit plus one.
const (
	refAllele = 1
	altAllele = 2
)

// Counts tallies the genotype calls of one variant.
type Counts struct {
	HomRef int64
	Het    int64
	HomAlt int64

	// Other holds missing, partial and multi-allelic calls.
	Other int64
}

// Add classifies one encoded call (allele, separator, allele).
func (c *Counts) Add(call [3]int8) {
	a, b := call[0], call[2]
	switch {
	case a == refAllele && b == refAllele:
		c.HomRef++
	case a == altAllele && b == altAllele:
		c.HomAlt++
	case (a == refAllele && b == altAllele) || (a == altAllele && b == refAllele):
		c.Het++
	default:
		c.Other++
	}
}

// Called is the number of samples with a biallelic call.
func (c Counts) Called() int64 {
	return c.HomRef + c.Het + c.HomAlt
}

// AltFrequency is the alternate allele frequency among called samples.
func (c Counts) AltFrequency() float64 {
	n := c.Called()
	if n == 0 {
		return 0
	}
	return float64(2*c.HomAlt+c.Het) / float64(2*n)
}

// P is the exact Hardy-Weinberg P value of the called genotypes.
func (c Counts) P() float64 {
	return Exact(c.HomRef, c.Het, c.HomAlt)
}

var memoizedExact = memoize.Memoize(exact)

// Exact computes the exact Hardy-Weinberg equilibrium P value of
// Wigginton, Cutler and Abecasis (2005). Results are cached per genotype
// configuration; Exact is safe for concurrent use.
func Exact(AA, Aa, aa int64) float64 {
	// Only the rare homozygote count matters to the distribution
	if aa > AA {
		AA, aa = aa, AA
	}
	return memoizedExact.(func(int64, int64, int64) float64)(AA, Aa, aa)
}

func exact(homc, hets, homr int64) float64 {
	if homc < 0 || hets < 0 || homr < 0 {
		return 1
	}

	genotypes := homc + hets + homr
	rare := 2*homr + hets
	if genotypes == 0 {
		return 1
	}

	probs := make([]float64, rare+1)

	// Start at the most likely het count, which has the same parity as the
	// rare allele count.
	mid := rare * (2*genotypes - rare) / (2 * genotypes)
	if mid%2 != rare%2 {
		mid++
	}

	probs[mid] = 1
	sum := 1.0

	cr, cc := (rare-mid)/2, genotypes-mid-(rare-mid)/2
	for h := mid; h > 1; h -= 2 {
		probs[h-2] = probs[h] * float64(h) * float64(h-1) / (4 * float64(cr+1) * float64(cc+1))
		sum += probs[h-2]
		cr++
		cc++
	}

	cr, cc = (rare-mid)/2, genotypes-mid-(rare-mid)/2
	for h := mid; h <= rare-2; h += 2 {
		probs[h+2] = probs[h] * 4 * float64(cr) * float64(cc) / (float64(h+2) * float64(h+1))
		sum += probs[h+2]
		cr--
		cc--
	}

	observed := probs[hets] / sum
	p := 0.0
	for _, x := range probs {
		if x/sum <= observed {
			p += x / sum
		}
	}

	if p > 1 {
		return 1
	}
	return p
}
