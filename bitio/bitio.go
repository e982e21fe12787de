// Package bitio provides the sequential bit writer and reader used for
// compressed artifacts.
//
// Bits are packed MSB-first by github.com/icza/bitio. Because a Huffman
// bitstream carries no length prefix, the Writer terminates a non-empty
// stream with a single trailer byte holding the number of meaningful bits
// (1-8) in the last data byte. An empty stream is written as zero bytes.
//
// Wire format:
//
//	data    = ceil(bits/8) bytes, final byte zero padded
//	trailer = uint8 in [1, 8], omitted when bits == 0
package bitio

import (
	"bufio"
	"errors"
	"io"

	"github.com/icza/bitio"
)

const defaultBufferSize = 64 * 1024

// ErrBadTrailer indicates the stream does not end in a valid trailer byte.
var ErrBadTrailer = errors.New("bitio: invalid stream trailer")

// Writer writes single bits to an underlying io.Writer.
// It must be closed to emit the final partial byte and the trailer.
type Writer struct {
	buf  *bufio.Writer
	bits *bitio.Writer
	n    uint64
}

// NewWriter returns a Writer with a default-sized buffer.
func NewWriter(w io.Writer) *Writer {
	return NewWriterSize(w, defaultBufferSize)
}

// NewWriterSize returns a Writer whose internal buffer has at least size bytes.
func NewWriterSize(w io.Writer, size int) *Writer {
	buf := bufio.NewWriterSize(w, size)
	return &Writer{buf: buf, bits: bitio.NewWriter(buf)}
}

// WriteBit appends one bit to the stream.
func (w *Writer) WriteBit(bit bool) error {
	if err := w.bits.WriteBool(bit); err != nil {
		return err
	}
	w.n++
	return nil
}

// Bits reports the number of bits written so far.
func (w *Writer) Bits() uint64 {
	return w.n
}

// Close pads the final byte, writes the trailer and flushes.
// It does not close the underlying io.Writer.
func (w *Writer) Close() error {
	if w.n > 0 {
		skipped, err := w.bits.Align()
		if err != nil {
			return err
		}
		if err := w.bits.WriteByte(byte(8 - int(skipped))); err != nil {
			return err
		}
	}
	if err := w.bits.Close(); err != nil {
		return err
	}
	return w.buf.Flush()
}

// trailerReader hands out every byte of the stream except the last one,
// which it keeps as the trailer.
type trailerReader struct {
	in    *bufio.Reader
	last  bool // the byte most recently returned is the final data byte
	valid int  // meaningful bits in the final data byte, set once last is true
}

// more reports whether at least one data byte remains.
func (t *trailerReader) more() (bool, error) {
	if t.last {
		return false, nil
	}
	buf, err := t.in.Peek(2)
	switch {
	case len(buf) == 2:
		return true, nil
	case err != nil && err != io.EOF:
		return false, err
	default:
		return false, nil
	}
}

func (t *trailerReader) ReadByte() (byte, error) {
	ok, err := t.more()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, io.EOF
	}
	b, err := t.in.ReadByte()
	if err != nil {
		return 0, err
	}
	// more guaranteed at least one byte follows b.
	next, err := t.in.Peek(2)
	if len(next) == 1 {
		valid := int(next[0])
		if valid < 1 || valid > 8 {
			return 0, ErrBadTrailer
		}
		t.last = true
		t.valid = valid
	} else if err != nil && err != io.EOF {
		return 0, err
	}
	return b, nil
}

func (t *trailerReader) Read(p []byte) (int, error) {
	for i := range p {
		b, err := t.ReadByte()
		if err != nil {
			return i, err
		}
		p[i] = b
	}
	return len(p), nil
}

// Reader reads single bits written by a Writer.
type Reader struct {
	src  *trailerReader
	bits *bitio.Reader
	used int  // bits consumed from the current byte
	cur  bool // a byte has been loaded
	n    uint64
	err  error
}

// NewReader returns a Reader with a default-sized buffer.
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, defaultBufferSize)
}

// NewReaderSize returns a Reader whose internal buffer has at least size bytes.
func NewReaderSize(r io.Reader, size int) *Reader {
	src := &trailerReader{in: bufio.NewReaderSize(r, size)}
	return &Reader{src: src, bits: bitio.NewReader(src)}
}

// HasNext reports whether another meaningful bit can be read.
// It returns false once the stream is exhausted or an error occurred; use
// Err to tell the two apart.
func (r *Reader) HasNext() bool {
	if r.err != nil {
		return false
	}
	if r.cur && r.used < 8 {
		if r.src.last {
			return r.used < r.src.valid
		}
		return true
	}
	ok, err := r.src.more()
	if err != nil {
		r.err = err
		return false
	}
	if !ok && !r.cur {
		// A non-empty stream always holds a data byte before the trailer.
		if buf, _ := r.src.in.Peek(1); len(buf) == 1 {
			r.err = ErrBadTrailer
		}
	}
	return ok
}

// ReadBit reads the next bit. It returns io.EOF once the stream is exhausted.
func (r *Reader) ReadBit() (bool, error) {
	if !r.HasNext() {
		if r.err != nil {
			return false, r.err
		}
		return false, io.EOF
	}
	if !r.cur || r.used == 8 {
		r.cur = true
		r.used = 0
	}
	bit, err := r.bits.ReadBool()
	if err != nil {
		r.err = err
		return false, err
	}
	r.used++
	r.n++
	return bit, nil
}

// Bits reports the number of bits read so far.
func (r *Reader) Bits() uint64 {
	return r.n
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error {
	return r.err
}
