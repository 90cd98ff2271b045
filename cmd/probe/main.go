// Command probe dry-runs a source file through the extract and clean stages
// without touching the warehouse or the lake. It reports the table shape, how
// many records would load, and every reason the file would be rejected, which
// makes it the fast way to vet a new export before seeding it.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"moviedw/internal/extract"
	"moviedw/internal/lake"
	"moviedw/internal/transform"
)

func main() {
	encoding := flag.String("encoding", "", "source charset for CSV files (utf-8, windows-1252, latin-1)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: probe [-encoding enc] <source file>\n")
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *encoding, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(path, encoding string, out io.Writer) error {
	// Snapshots from a probe are throwaway; extract still needs a lake to
	// write into.
	dir, err := os.MkdirTemp("", "probe-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	l, err := lake.New(dir)
	if err != nil {
		return err
	}

	table, err := extract.New(l, extract.Options{Encoding: encoding}).Extract(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "source:  %s\n", path)
	fmt.Fprintf(out, "columns: %d %v\n", len(table.Columns), table.Columns)
	fmt.Fprintf(out, "rows:    %d\n", len(table.Rows))

	recs, err := transform.Clean(table)

	var missing *transform.MissingColumnsError
	if errors.As(err, &missing) {
		fmt.Fprintf(out, "REJECT:  missing required columns: %v\n", missing.Columns)
		return nil
	}
	var dates *transform.InvalidDatesError
	if errors.As(err, &dates) {
		fmt.Fprintf(out, "REJECT:  %d unparseable release_date value(s):\n", len(dates.Rows))
		for _, r := range dates.Rows {
			fmt.Fprintf(out, "  movie=%q value=%q\n", r.Movie, r.Value)
		}
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "loadable: %d record(s), %d row(s) dropped for missing required values\n",
		len(recs), len(table.Rows)-len(recs))
	return nil
}
