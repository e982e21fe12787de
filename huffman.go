// Package huffman implements a lossless static Huffman file compressor.
//
// A job counts byte frequencies, builds a code tree by greedy merging,
// derives a code table from the tree and encodes the input as a bitstream.
// The same tree decodes the bitstream back to the original bytes.
package huffman

import (
	"errors"

	"github.com/sirupsen/logrus"
)

const (
	defaultBufferSize = 64 * 1024
	minBufferSize     = 16
)

// Config holds configuration for the compressor.
type Config struct {
	Logger     *logrus.Logger // Job logger (nil = logrus standard logger)
	BufferSize int            // bufio size for file jobs (0 = default 64 KiB)
}

// Option is a functional option for configuring the compressor.
type Option func(*Config)

// WithLogger sets the logger used to report job progress and failures.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithBufferSize sets the buffer size used for file reads and writes.
// Values below 16 bytes fall back to the default.
func WithBufferSize(n int) Option {
	return func(c *Config) {
		c.BufferSize = n
	}
}

var (
	// ErrMissingCode indicates the encoder met a symbol that has no code.
	// The code table and the input have diverged; the job cannot continue.
	ErrMissingCode = errors.New("symbol has no code")
	// ErrTruncatedStream indicates the bitstream ended in the middle of a code.
	ErrTruncatedStream = errors.New("bitstream ends inside a code")
	// ErrChecksumMismatch indicates decoded data does not match the stored checksum.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Compressor runs compression and decompression jobs.
// It holds only configuration, so one Compressor may run any number of jobs.
type Compressor struct {
	config Config
	log    *logrus.Logger
}

// NewCompressor creates a new compressor with the given options.
func NewCompressor(opts ...Option) *Compressor {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Compressor{config: cfg, log: log}
}

func resolveBufferSize(cfg Config) int {
	if cfg.BufferSize < minBufferSize {
		return defaultBufferSize
	}
	return cfg.BufferSize
}
