package vcf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/carbocation/vcfcolumnar"
	"github.com/carbocation/vcfcolumnar/chrpos"
	"github.com/carbocation/vcfcolumnar/intern"
	"github.com/carbocation/vcfcolumnar/prescan"
	"gopkg.in/guregu/null.v3"
)

var (
	ErrMalformedLine = errors.New("malformed line")
	ErrMissingColumn = errors.New("required column absent from header line")
)

// Names of the fixed columns on the "#CHROM" line.
const (
	ColChrom  = "#CHROM"
	ColPos    = "POS"
	ColID     = "ID"
	ColRef    = "REF"
	ColAlt    = "ALT"
	ColQual   = "QUAL"
	ColFilter = "FILTER"
	ColInfo   = "INFO"
	ColFormat = "FORMAT"
)

const (
	DefaultInfoWidth = 128
	missing          = "."
)

type Options struct {
	// Chromosome maps a contig name, stripped of "chr", to its code.
	// Defaults to chrpos.Human.
	Chromosome chrpos.Mapper

	// InfoWidth is the longest INFO value kept as is. Longer values keep
	// their first InfoWidth-1 bytes.
	InfoWidth int

	// SilentTruncation lists INFO fields that are truncated without a
	// warning.
	SilentTruncation []string

	// MaxLineWidth sizes the line buffer. Zero lets the buffer grow.
	MaxLineWidth int

	// RowHint preallocates room for this many records.
	RowHint int

	// Client is used for gs:// paths. It may be nil.
	Client *storage.Client
}

func DefaultOptions() Options {
	return Options{
		Chromosome:       chrpos.Human,
		InfoWidth:        DefaultInfoWidth,
		SilentTruncation: []string{"ANNO"},
	}
}

func (o Options) withDefaults() Options {
	if o.Chromosome == nil {
		o.Chromosome = chrpos.Human
	}
	if o.InfoWidth <= 1 {
		o.InfoWidth = DefaultInfoWidth
	}
	return o
}

// Load reads the VCF at path, which may be local or gs:// and may be
// compressed. The file is scanned once beforehand to size the line buffer.
func Load(path string, opts Options) (*Store, error) {
	stats, err := prescan.File(path, opts.Client)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("scanning %s: %w", path, err))
	}
	opts.MaxLineWidth = stats.Width
	opts.RowHint = stats.Rows

	rc, err := vcfcolumnar.Open(path, opts.Client)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer rc.Close()

	st, err := Parse(rc, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}

type parser struct {
	opts    Options
	silent  map[string]struct{}
	store   *Store
	columns map[string]int
	nCols   int
	sample0 int // index of the first sample column
	line    int

	truncated int
}

// Parse reads a whole VCF from r. Any malformed line aborts the load.
func Parse(r io.Reader, opts Options) (*Store, error) {
	p := &parser{
		opts:   opts.withDefaults(),
		silent: make(map[string]struct{}),
		store:  newStore(),
	}
	for _, name := range p.opts.SilentTruncation {
		p.silent[name] = struct{}{}
	}

	scanner := bufio.NewScanner(r)
	if p.opts.MaxLineWidth > 0 {
		// Room for the terminator
		size := p.opts.MaxLineWidth + 2
		scanner.Buffer(make([]byte, 0, size), size)
	} else {
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<30)
	}

	for scanner.Scan() {
		p.line++
		if err := p.parseLine(strings.TrimSuffix(scanner.Text(), "\r")); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	log.Printf("Samples %d SNPs %d\n", p.store.NSamples(), p.store.NSNPs())
	if p.truncated > 0 {
		log.Printf("Truncated %d INFO values to %d bytes\n", p.truncated, p.opts.InfoWidth-1)
	}

	return p.store, nil
}

func (p *parser) parseLine(line string) error {
	if len(line) < 2 {
		return fmt.Errorf("%w: %q is too short", ErrMalformedLine, line)
	}

	switch {
	case strings.HasPrefix(line, "##"):
		key, value := parseDirective(line[2:])
		p.store.Header.Add(key, value)
		return nil
	case line[0] == '#':
		return p.parseColumnHeader(line)
	}

	if p.columns == nil {
		return fmt.Errorf("%w: data row before the %s header line", ErrMalformedLine, ColChrom)
	}
	return p.parseRecord(line)
}

func (p *parser) parseColumnHeader(line string) error {
	if p.columns != nil {
		return fmt.Errorf("%w: second column header line", ErrMalformedLine)
	}

	cols := strings.Split(line, "\t")
	p.columns = make(map[string]int, len(cols))
	p.nCols = len(cols)
	for i, name := range cols {
		if _, exists := p.columns[name]; !exists {
			p.columns[name] = i
		}
		if name == ColFormat {
			p.sample0 = i + 1
			p.store.HasFormat = true
			break
		}
	}

	for _, required := range []string{ColChrom, ColPos} {
		if _, exists := p.columns[required]; !exists {
			return fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	if p.store.HasFormat {
		p.store.Samples = append(p.store.Samples, cols[p.sample0:]...)
	}

	hint := p.opts.RowHint
	p.store.Records = make([]Record, 0, hint)
	p.store.perSample = make([]intern.Ref, 0, hint*len(p.store.Samples))

	return nil
}

// column returns the named column of a split row, and false when the header
// line did not declare it.
func (p *parser) column(fields []string, name string) (string, bool) {
	i, exists := p.columns[name]
	if !exists {
		return "", false
	}
	return fields[i], true
}

func (p *parser) parseRecord(line string) error {
	fields := strings.Split(line, "\t")
	if len(fields) < p.nCols {
		return fmt.Errorf("%w: %d columns, header declared %d", ErrMalformedLine, len(fields), p.nCols)
	}

	var rec Record
	var err error

	chrom, _ := p.column(fields, ColChrom)
	if rec.Chromosome, err = p.opts.Chromosome(chrpos.StripPrefix(chrom)); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	if rec.Chromosome < 0 || rec.Chromosome > math.MaxInt8 {
		return fmt.Errorf("%w: chromosome %q maps to %d, outside 0-%d", ErrMalformedLine, chrom, rec.Chromosome, math.MaxInt8)
	}

	pos, _ := p.column(fields, ColPos)
	if rec.Position, err = strconv.Atoi(pos); err != nil {
		return fmt.Errorf("%w: position %q is not an integer", ErrMalformedLine, pos)
	}
	if rec.Position < 0 || rec.Position > math.MaxInt32 {
		return fmt.Errorf("%w: position %d outside 0-%d", ErrMalformedLine, rec.Position, math.MaxInt32)
	}

	rec.ID = missing
	if id, ok := p.column(fields, ColID); ok && id != "" {
		rec.ID = id
	}

	rec.Ref, _ = p.column(fields, ColRef)

	if alt, ok := p.column(fields, ColAlt); ok && alt != missing {
		rec.Alt = splitNonEmpty(alt, ",")
	}

	if qual, ok := p.column(fields, ColQual); ok && qual != missing && qual != "" {
		q, err := strconv.ParseFloat(qual, 64)
		if err != nil {
			return fmt.Errorf("%w: quality %q is not a number", ErrMalformedLine, qual)
		}
		rec.Quality = null.FloatFrom(q)
	}

	if filter, ok := p.column(fields, ColFilter); ok {
		rec.Filters = splitNonEmpty(filter, ";")
	}

	rec.Info = make(map[string]string)
	if info, ok := p.column(fields, ColInfo); ok && info != missing {
		p.parseInfo(rec.Info, info)
	}

	if format, ok := p.column(fields, ColFormat); ok {
		rec.Format = strings.Split(format, ":")
		for _, raw := range fields[p.sample0 : p.sample0+len(p.store.Samples)] {
			p.store.perSample = append(p.store.perSample, p.store.strings.Intern(raw))
		}
	}

	p.store.Records = append(p.store.Records, rec)

	return nil
}

func (p *parser) parseInfo(dst map[string]string, info string) {
	limit := p.opts.InfoWidth
	for _, pair := range splitNonEmpty(info, ";") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			value = "1"
		}
		if len(value) > limit {
			if _, quiet := p.silent[key]; !quiet {
				log.Printf("Warning: line %d: INFO field %s is %d bytes, truncating to %d\n", p.line, key, len(value), limit-1)
			}
			value = value[:limit-1]
			p.truncated++
		}
		dst[key] = value
	}
}

func splitNonEmpty(s, sep string) []string {
	out := make([]string, 0)
	for _, piece := range strings.Split(s, sep) {
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}
