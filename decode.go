package huffman

import (
	"bufio"
	"fmt"
	"io"
)

// BitReader is the source of encoded bits.
type BitReader interface {
	HasNext() bool
	ReadBit() (bool, error)
}

// Decode walks root with the bits of r and writes each completed symbol to w.
//
// A nil tree decodes to nothing without reading. With a single-leaf tree
// every bit stands for the one symbol. If the bits run out while the cursor
// sits on an internal node, every symbol completed before that point is
// still written and ErrTruncatedStream is returned.
func Decode(root Node, r BitReader, w io.Writer) error {
	if root == nil {
		return nil
	}
	bw := bufio.NewWriter(w)
	if err := decode(root, r, bw); err != nil {
		if ferr := bw.Flush(); ferr != nil {
			return fmt.Errorf("decode: flush: %w", ferr)
		}
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("decode: flush: %w", err)
	}
	return nil
}

func decode(root Node, r BitReader, w io.ByteWriter) error {
	var bitPos uint64

	if leaf, ok := root.(*Leaf); ok {
		for r.HasNext() {
			if _, err := r.ReadBit(); err != nil {
				return fmt.Errorf("decode: read bit %d: %w", bitPos, err)
			}
			bitPos++
			if err := w.WriteByte(leaf.symbol); err != nil {
				return fmt.Errorf("decode: write: %w", err)
			}
		}
		return readerErr(r, bitPos)
	}

	top := root.(*Internal)
	cur := top
	for r.HasNext() {
		bit, err := r.ReadBit()
		if err != nil {
			return fmt.Errorf("decode: read bit %d: %w", bitPos, err)
		}
		bitPos++

		next := cur.left
		if bit {
			next = cur.right
		}
		switch n := next.(type) {
		case *Leaf:
			if err := w.WriteByte(n.symbol); err != nil {
				return fmt.Errorf("decode: write: %w", err)
			}
			cur = top
		case *Internal:
			cur = n
		}
	}
	if err := readerErr(r, bitPos); err != nil {
		return err
	}
	if cur != top {
		return fmt.Errorf("decode: %d bits: %w", bitPos, ErrTruncatedStream)
	}
	return nil
}

// readerErr surfaces a failure that made r report no more bits.
func readerErr(r BitReader, bitPos uint64) error {
	e, ok := r.(interface{ Err() error })
	if !ok {
		return nil
	}
	if err := e.Err(); err != nil {
		return fmt.Errorf("decode: read bit %d: %w", bitPos, err)
	}
	return nil
}
