// Command atv-csv-to-json converts a CSV media catalog into the API JSON
// read by the TV reference app.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"tvshowcase/feed"
)

const name = "atv-csv-to-json"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run converts the files named in args and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s input_file output_file\n\n", name)
		fmt.Fprintln(stderr, "  input_file   CSV file to read from")
		fmt.Fprintln(stderr, "  output_file  file to output json to such as api.json")
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() != 2 {
		flags.Usage()
		return 2
	}
	in, out := flags.Arg(0), flags.Arg(1)

	if err := feed.ConvertAPI(in, out, time.Now()); err != nil {
		fmt.Fprintln(stderr, feed.ExitMessage(err))
		return 1
	}
	fmt.Fprintln(stdout, "JSON written to "+out)
	return 0
}
