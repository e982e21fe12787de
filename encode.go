package huffman

import (
	"bufio"
	"fmt"
	"io"
)

// BitWriter is the sink for encoded bits.
type BitWriter interface {
	WriteBit(bit bool) error
}

// Encode reads r to the end and writes the code of every byte to w, in
// input order. A byte without a code fails with ErrMissingCode.
// The caller owns w and must close it to flush the final byte.
func Encode(table CodeTable, r io.Reader, w BitWriter) error {
	br := bufio.NewReader(r)
	var offset int64
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("encode: read at offset %d: %w", offset, err)
		}
		code, ok := table[b]
		if !ok || len(code) == 0 {
			return fmt.Errorf("encode: symbol %q at offset %d: %w", b, offset, ErrMissingCode)
		}
		for i := 0; i < len(code); i++ {
			if err := w.WriteBit(code[i] != '0'); err != nil {
				return fmt.Errorf("encode: write at offset %d: %w", offset, err)
			}
		}
		offset++
	}
}
