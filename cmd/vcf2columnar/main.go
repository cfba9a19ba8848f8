// vcf2columnar converts a VCF into a columnar dataset: one typed,
// dimensioned variable per fixed column, INFO field and FORMAT field.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/vcfcolumnar/buildinfo"
	"github.com/carbocation/vcfcolumnar/convert"
	"github.com/carbocation/vcfcolumnar/schema"
	"github.com/carbocation/vcfcolumnar/store/arrowstore"
	"github.com/carbocation/vcfcolumnar/store/sqlitestore"
	"github.com/carbocation/vcfcolumnar/vcf"
)

func main() {
	buildinfo.Fprint(os.Stderr)

	opts := convert.DefaultOptions()
	var exclude flagSlice
	var input, output, altHeader, format string
	var sortRows bool
	flag.StringVar(&input, "i", "", "Path to the input VCF. May be gzip, bzip2, zip or xz compressed, and may be a gs:// path.")
	flag.StringVar(&output, "o", "", "Output path: a directory for -format arrow, a file for -format sqlite.")
	flag.StringVar(&altHeader, "alt", "", "Optional VCF whose INFO and FORMAT header lines replace those of the input.")
	flag.StringVar(&format, "format", "arrow", "Output format: arrow or sqlite.")
	flag.BoolVar(&sortRows, "s", false, "Write rows in chromosome and position order. Duplicate positions are an error unless -dup is set.")
	flag.BoolVar(&opts.AllowDuplicates, "dup", false, "When sorting, keep duplicate positions, ordered by ID and then input order.")
	flag.BoolVar(&opts.AutoFilter, "autofilter", false, "Store one flag_<token> variable per FILTER token instead of the FILTER text.")
	flag.IntVar(&opts.StringWidth, "string-width", opts.StringWidth, "Width of fixed-width text variables, including the terminator.")
	flag.Var(&exclude, "exclude", fmt.Sprintf("Variable handler to skip. Pass once per handler or comma-separated. Default: %s", strings.Join(opts.Exclude, ",")))
	flag.Parse()

	if input == "" || output == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}
	if len(exclude) > 0 {
		opts.Exclude = exclude
	}

	readOpts := vcf.DefaultOptions()
	if strings.HasPrefix(input, "gs://") || strings.HasPrefix(altHeader, "gs://") {
		client, err := storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
		defer client.Close()
		readOpts.Client = client
	}

	var backend schema.Backend
	switch format {
	case "arrow":
		backend = arrowstore.Backend{Dir: output}
	case "sqlite":
		backend = sqlitestore.Backend{Path: output}
	default:
		log.Fatalf("Unknown -format %q. Choose arrow or sqlite.\n", format)
	}

	log.Printf("Converting %s into %s (%s)\n", input, output, format)
	if err := convert.File(input, altHeader, backend, sortRows, readOpts, opts); err != nil {
		log.Fatalln(err)
	}
	log.Println("Done")
}
