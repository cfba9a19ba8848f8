// vcfinfo lists the variants of a VCF as TSV, with genotype counts and an
// exact Hardy-Weinberg P value when a GT field is present, and prints summary
// statistics of the numeric INFO fields to stderr.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/vcfcolumnar/buildinfo"
	"github.com/carbocation/vcfcolumnar/vcf"
)

var (
	BufferSize = 4096 * 8
	STDOUT     = bufio.NewWriterSize(os.Stdout, BufferSize)
)

func main() {
	defer STDOUT.Flush()

	buildinfo.Fprint(os.Stderr)

	var input string
	var samples, filters bool
	flag.StringVar(&input, "i", "", "Path to the input VCF. May be compressed and may be a gs:// path.")
	flag.BoolVar(&samples, "samples", false, "Also print the sample identifiers to stderr.")
	flag.BoolVar(&filters, "filters", false, "Also print the filter tokens of every variant to stderr.")
	flag.Parse()

	if input == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	opts := vcf.DefaultOptions()
	if strings.HasPrefix(input, "gs://") {
		client, err := storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
		defer client.Close()
		opts.Client = client
	}

	st, err := vcf.Load(input, opts)
	if err != nil {
		log.Fatalln(err)
	}

	log.Printf("VCF snps %d samples %d\n", st.NSNPs(), st.NSamples())
	log.Printf("VCF key-value pairs %d\n", st.Header.Len())

	if err := writeTSV(STDOUT, listVariants(st)); err != nil {
		log.Fatalln(err)
	}

	summaries, err := summarizeInfo(st)
	if err != nil {
		log.Fatalln(err)
	}
	for _, s := range summaries {
		fmt.Fprintln(os.Stderr, s)
	}

	if samples {
		for _, id := range st.Samples {
			fmt.Fprintln(os.Stderr, id)
		}
	}

	if filters {
		for _, rec := range st.Records {
			fmt.Fprintf(os.Stderr, "%s %d %s\n", rec.ID, len(rec.Filters), strings.Join(rec.Filters, " "))
		}
	}
}
