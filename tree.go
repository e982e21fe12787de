package huffman

import (
	"container/heap"
	"fmt"
)

// Node is a node of a code tree: either a *Leaf or an *Internal.
// Trees are immutable once built. A nil Node is the empty tree.
type Node interface {
	Weight() uint64
	node()
}

// Leaf holds one symbol and its weight.
type Leaf struct {
	symbol byte
	weight uint64
}

// NewLeaf returns a leaf for symbol with the given weight.
func NewLeaf(symbol byte, weight uint64) *Leaf {
	return &Leaf{symbol: symbol, weight: weight}
}

func (l *Leaf) Weight() uint64 { return l.weight }
func (l *Leaf) Symbol() byte   { return l.symbol }
func (l *Leaf) node()          {}

func (l *Leaf) String() string {
	return fmt.Sprintf("%q:%d", l.symbol, l.weight)
}

// Internal joins two subtrees. Its weight is the sum of theirs.
type Internal struct {
	weight      uint64
	left, right Node
}

// NewInternal returns an internal node over left and right.
func NewInternal(left, right Node) *Internal {
	return &Internal{weight: left.Weight() + right.Weight(), left: left, right: right}
}

func (n *Internal) Weight() uint64 { return n.weight }
func (n *Internal) Left() Node     { return n.left }
func (n *Internal) Right() Node    { return n.right }
func (n *Internal) node()          {}

func (n *Internal) String() string {
	return fmt.Sprintf("(%d %v %v)", n.weight, n.left, n.right)
}

// treeItem orders nodes in the merge heap. seq breaks weight ties so the
// tree shape depends only on the frequency table.
type treeItem struct {
	node Node
	seq  int
}

type treeHeap []treeItem

func (h treeHeap) Len() int { return len(h) }
func (h treeHeap) Less(i, j int) bool {
	if h[i].node.Weight() != h[j].node.Weight() {
		return h[i].node.Weight() < h[j].node.Weight()
	}
	return h[i].seq < h[j].seq
}
func (h treeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *treeHeap) Push(x any) {
	*h = append(*h, x.(treeItem))
}

func (h *treeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// BuildTree builds the Huffman code tree for freq.
//
// Leaves enter the heap in ascending symbol order and merged nodes are
// numbered after them, so equal weights merge oldest first. The first node
// popped becomes the left child. An empty table returns nil; a table with
// one symbol returns a lone *Leaf.
func BuildTree(freq Frequencies) Node {
	if len(freq) == 0 {
		return nil
	}
	h := make(treeHeap, 0, len(freq))
	seq := 0
	for _, b := range freq.Symbols() {
		h = append(h, treeItem{node: NewLeaf(b, freq[b]), seq: seq})
		seq++
	}
	heap.Init(&h)
	for h.Len() > 1 {
		a := heap.Pop(&h).(treeItem)
		b := heap.Pop(&h).(treeItem)
		heap.Push(&h, treeItem{node: NewInternal(a.node, b.node), seq: seq})
		seq++
	}
	return h[0].node
}

// Walk visits the tree in pre-order. Children of a node are skipped when
// fn returns false for it.
func Walk(root Node, fn func(n Node, depth int) bool) {
	var walk func(n Node, depth int)
	walk = func(n Node, depth int) {
		if n == nil || !fn(n, depth) {
			return
		}
		if in, ok := n.(*Internal); ok {
			walk(in.left, depth+1)
			walk(in.right, depth+1)
		}
	}
	walk(root, 0)
}

// Depth returns the length of the longest root-to-leaf path, which is the
// longest code length except for a lone leaf.
func Depth(root Node) int {
	deepest := 0
	Walk(root, func(_ Node, depth int) bool {
		if depth > deepest {
			deepest = depth
		}
		return true
	})
	return deepest
}
