// Command atv-create-media-feed converts a CSV media catalog into the movies
// and TV episodes media action feeds.
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

const name = "atv-create-media-feed"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run converts the files named in args and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s input_file output_movie_file output_episodes_file\n\n", name)
		fmt.Fprintln(stderr, "  input_file            CSV file to read from")
		fmt.Fprintln(stderr, "  output_movie_file     media actions feed for movies such as movies.json")
		fmt.Fprintln(stderr, "  output_episodes_file  media actions feed for TV episodes such as episodes.json")
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() != 3 {
		flags.Usage()
		return 2
	}
	in, moviesOut, episodesOut := flags.Arg(0), flags.Arg(1), flags.Arg(2)

	if err := feed.ConvertMediaFeed(in, moviesOut, episodesOut, time.Now()); err != nil {
		fmt.Fprintln(stderr, feed.ExitMessage(err))
		return 1
	}
	fmt.Fprintln(stdout, "Movies media action feed JSON written to "+moviesOut)
	fmt.Fprintln(stdout, "TV episodes media action feed JSON written to "+episodesOut)
	return 0
}
