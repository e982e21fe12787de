// huffpress compresses a file with a static Huffman code and decompresses it
// again with the same code tree.
//
//	huffpress notes.txt
//
// writes notes_compressed.txt and notes_decompressed.txt next to the input.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/seiflotfy/huffman"
)

const usage = "Usage: huffpress filename"

var errRoundTrip = errors.New("decompressed output does not match input")

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], log, os.Stdout); err != nil {
		os.Exit(1)
	}
}

// run compresses path, decompresses the result and reports both on out.
// Failures are logged before run returns them.
func run(path string, log *logrus.Logger, out io.Writer) error {
	compressedPath, decompressedPath := deriveNames(path)
	c := huffman.NewCompressor(huffman.WithLogger(log))

	job, err := c.CompressFile(path, compressedPath)
	if err != nil {
		return err
	}
	log.WithField("codes", job.Table.String()).Debug("code table")

	stats, err := c.DecompressFile(compressedPath, decompressedPath, job.Tree)
	if err != nil {
		return err
	}
	if stats.Checksum != job.Stats.Checksum || stats.OutputBytes != job.Stats.InputBytes {
		log.WithFields(logrus.Fields{
			"want": fmt.Sprintf("%016x", job.Stats.Checksum),
			"got":  fmt.Sprintf("%016x", stats.Checksum),
		}).Error(errRoundTrip)
		return errRoundTrip
	}

	fmt.Fprintf(out, "%s: %s -> %s %s (%s), %d symbols\n",
		path,
		humanize.Bytes(uint64(job.Stats.InputBytes)),
		compressedPath,
		humanize.Bytes(uint64(job.Stats.OutputBytes)),
		ratio(job.Stats.OutputBytes, job.Stats.InputBytes),
		len(job.Frequencies))
	fmt.Fprintf(out, "%s: %s -> %s %s\n",
		compressedPath,
		humanize.Bytes(uint64(stats.InputBytes)),
		decompressedPath,
		humanize.Bytes(uint64(stats.OutputBytes)))
	return nil
}

func ratio(out, in int64) string {
	if in == 0 {
		return "n/a"
	}
	return humanize.FtoaWithDigits(100*float64(out)/float64(in), 1) + "%"
}
