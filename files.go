package huffman

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/seiflotfy/huffman/bitio"
)

// Stats describes one finished job.
type Stats struct {
	InputBytes  int64  // bytes read from the source file
	OutputBytes int64  // bytes written to the destination file
	Bits        uint64 // meaningful bits in the compressed stream
	Checksum    uint64 // xxhash64 of the uncompressed data
}

// Job is the result of compressing a file. Tree is required to decompress
// the output, which carries no code table of its own.
type Job struct {
	Frequencies Frequencies
	Tree        Node
	Table       CodeTable
	Stats       Stats
}

// CompressFile compresses src into dst. The source is read twice: once to
// count frequencies and once to encode.
func (c *Compressor) CompressFile(src, dst string) (job *Job, err error) {
	log := c.log.WithFields(logrus.Fields{"op": "compress", "src": src, "dst": dst})
	defer func() {
		if err != nil {
			log.WithError(err).Error("compression failed")
		}
	}()

	freq, err := c.countFile(src)
	if err != nil {
		return nil, err
	}
	tree := BuildTree(freq)
	table := DeriveCodes(tree)
	log.WithFields(logrus.Fields{
		"symbols": len(freq),
		"bytes":   freq.Total(),
		"bits":    table.EncodedBits(freq),
		"depth":   Depth(tree),
	}).Debug("derived code table")

	stats, err := c.encodeFile(table, src, dst)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"in":   stats.InputBytes,
		"out":  stats.OutputBytes,
		"bits": stats.Bits,
	}).Info("compressed")

	return &Job{Frequencies: freq, Tree: tree, Table: table, Stats: stats}, nil
}

func (c *Compressor) countFile(src string) (Frequencies, error) {
	in, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	freq, err := CountFrequencies(in)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	return freq, nil
}

func (c *Compressor) encodeFile(table CodeTable, src, dst string) (stats Stats, err error) {
	in, err := os.Open(src)
	if err != nil {
		return stats, fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return stats, fmt.Errorf("create %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", dst, cerr)
		}
	}()

	h := xxhash.New()
	counted := &countingWriter{w: h}
	bw := bitio.NewWriterSize(out, resolveBufferSize(c.config))
	if err := Encode(table, io.TeeReader(in, counted), bw); err != nil {
		return stats, fmt.Errorf("%s: %w", src, err)
	}
	if err := bw.Close(); err != nil {
		return stats, fmt.Errorf("write %s: %w", dst, err)
	}

	stats.InputBytes = counted.n
	stats.Bits = bw.Bits()
	stats.OutputBytes = streamBytes(stats.Bits)
	stats.Checksum = h.Sum64()
	return stats, nil
}

// DecompressFile decodes src into dst using the tree that compressed it.
func (c *Compressor) DecompressFile(src, dst string, tree Node) (stats Stats, err error) {
	log := c.log.WithFields(logrus.Fields{"op": "decompress", "src": src, "dst": dst})
	defer func() {
		if err != nil {
			log.WithError(err).Error("decompression failed")
		}
	}()

	in, err := os.Open(src)
	if err != nil {
		return stats, fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return stats, fmt.Errorf("create %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", dst, cerr)
		}
	}()

	size := resolveBufferSize(c.config)
	counted := &countingReader{r: in}
	br := bitio.NewReaderSize(counted, size)
	h := xxhash.New()
	written := &countingWriter{w: io.MultiWriter(out, h)}
	if err := Decode(tree, br, written); err != nil {
		return stats, fmt.Errorf("%s: %w", src, err)
	}

	stats.InputBytes = counted.n
	stats.OutputBytes = written.n
	stats.Bits = br.Bits()
	stats.Checksum = h.Sum64()
	log.WithFields(logrus.Fields{
		"in":   stats.InputBytes,
		"out":  stats.OutputBytes,
		"bits": stats.Bits,
	}).Info("decompressed")
	return stats, nil
}

// streamBytes returns the size of a bitio stream carrying bits meaningful bits.
func streamBytes(bits uint64) int64 {
	if bits == 0 {
		return 0
	}
	return int64((bits+7)/8) + 1
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}
