package huffman

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

// Frequencies maps each byte value seen in the input to its occurrence count.
type Frequencies map[byte]uint64

// CountFrequencies reads r to the end and counts every byte.
// An empty input yields an empty, non-nil map.
func CountFrequencies(r io.Reader) (Frequencies, error) {
	var counts [256]uint64
	br := bufio.NewReader(r)
	buf := make([]byte, 32*1024)
	for {
		n, err := br.Read(buf)
		for _, b := range buf[:n] {
			counts[b]++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("count frequencies: %w", err)
		}
	}

	freq := make(Frequencies)
	for b, c := range counts {
		if c > 0 {
			freq[byte(b)] = c
		}
	}
	return freq, nil
}

// CountBytes counts the bytes of an in-memory input.
func CountBytes(data []byte) Frequencies {
	freq := make(Frequencies)
	for _, b := range data {
		freq[b]++
	}
	return freq
}

// Total returns the sum of all counts, which is the input length.
func (f Frequencies) Total() uint64 {
	var total uint64
	for _, c := range f {
		total += c
	}
	return total
}

// Symbols returns the symbols in ascending order.
func (f Frequencies) Symbols() []byte {
	symbols := make([]byte, 0, len(f))
	for b := range f {
		symbols = append(symbols, b)
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i] < symbols[j] })
	return symbols
}
