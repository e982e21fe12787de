package huffman

import (
	"fmt"
	"sort"
	"strings"
)

// degenerateCode is the code given to the only symbol of a single-leaf tree.
const degenerateCode Code = "1"

// Code is a codeword written as a string of '0' and '1', root first.
type Code string

// CodeTable maps each symbol of a tree to its codeword.
type CodeTable map[byte]Code

// DeriveCodes walks root once and returns a fresh code table.
// Left edges append '0' and right edges append '1'. A lone leaf gets "1".
func DeriveCodes(root Node) CodeTable {
	table := make(CodeTable)
	switch n := root.(type) {
	case nil:
		return table
	case *Leaf:
		table[n.symbol] = degenerateCode
		return table
	}

	path := make([]byte, 0, 32)
	var walk func(n Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Leaf:
			table[n.symbol] = Code(path)
		case *Internal:
			path = append(path, '0')
			walk(n.left)
			path[len(path)-1] = '1'
			walk(n.right)
			path = path[:len(path)-1]
		}
	}
	walk(root)
	return table
}

// EncodedBits returns the exact bitstream length for an input with the
// given frequencies: the sum of count times code length.
func (t CodeTable) EncodedBits(freq Frequencies) uint64 {
	var bits uint64
	for b, c := range freq {
		bits += c * uint64(len(t[b]))
	}
	return bits
}

// String renders the table in symbol order, e.g. {'a':1 'b':0}.
func (t CodeTable) String() string {
	symbols := make([]int, 0, len(t))
	for b := range t {
		symbols = append(symbols, int(b))
	}
	sort.Ints(symbols)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, b := range symbols {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%q:%s", byte(b), t[byte(b)])
	}
	sb.WriteByte('}')
	return sb.String()
}
