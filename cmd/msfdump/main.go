// Command msfdump opens an MSF container and lists its streams.
//
// It exists as a thin, example consumer of the msf package; the library
// itself has no CLI dependency.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/pombredanne/msfreader/msf"
)

var cli struct {
	File       string `arg:"" help:"Path to the MSF/PDB file to inspect." type:"existingfile"`
	Stream     *int   `name:"stream" help:"Dump the raw bytes of a single stream number to stdout instead of listing streams."`
	MaxDump    int    `name:"max-dump" default:"64" help:"Maximum number of bytes to print when --stream is given."`
	MaxStreams int    `name:"max-streams" default:"256" help:"Number of stream numbers to probe (0 through max-streams minus 1) when listing streams."`
}

func main() {
	kong.Parse(&cli, kong.Description("Inspect streams inside a Multi-Stream File (MSF)."))

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "msfdump: %+v\n", err)
		os.Exit(1)
	}
}

func run() error {
	source, err := msf.OpenMmapSource(cli.File)
	if err != nil {
		return errors.Wrap(err, "opening source")
	}
	defer source.Close()

	reader, err := msf.Open(source)
	if err != nil {
		return errors.Wrap(err, "opening msf container")
	}

	if cli.Stream != nil {
		return dumpStream(reader, uint32(*cli.Stream))
	}
	return listStreams(reader)
}

func dumpStream(reader msf.Msf, streamNumber uint32) error {
	limit := uint32(cli.MaxDump)
	stream, err := reader.Get(streamNumber, &limit)
	if err != nil {
		return errors.Wrapf(err, "getting stream %d", streamNumber)
	}
	_, err = os.Stdout.Write(stream.AsSlice())
	return err
}

// listStreams probes stream numbers 0..MaxStreams-1. StreamNotFound covers two
// cases the reader cannot distinguish from the outside (an index past the
// directory's stream count, or one the directory marks absent), so this
// probes the whole configured range rather than stopping at the first miss.
func listStreams(reader msf.Msf) error {
	header := reader.Header()
	fmt.Printf("page size %s, %d pages used\n", humanize.Bytes(uint64(header.PageSize())), header.MaximumValidPageNumber())

	for streamNumber := uint32(0); streamNumber < uint32(cli.MaxStreams); streamNumber++ {
		stream, err := reader.Get(streamNumber, nil)
		if err != nil {
			var notFound *msf.StreamNotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return errors.Wrapf(err, "getting stream %d", streamNumber)
		}
		fmt.Printf("stream %-4d %s\n", streamNumber, humanize.Bytes(uint64(stream.Len())))
	}
	return nil
}
