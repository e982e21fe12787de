package huffman

import (
	"math/rand"
	"testing"
)

func checkWeights(t *testing.T, root Node) {
	t.Helper()
	Walk(root, func(n Node, _ int) bool {
		switch n := n.(type) {
		case *Internal:
			if n.Weight() != n.Left().Weight()+n.Right().Weight() {
				t.Errorf("internal weight %d != %d + %d", n.Weight(), n.Left().Weight(), n.Right().Weight())
			}
		case *Leaf:
			if n.Weight() == 0 {
				t.Errorf("leaf %q has zero weight", n.Symbol())
			}
		}
		return true
	})
}

func leaves(root Node) map[byte]uint64 {
	out := make(map[byte]uint64)
	Walk(root, func(n Node, _ int) bool {
		if l, ok := n.(*Leaf); ok {
			out[l.Symbol()] = l.Weight()
		}
		return true
	})
	return out
}

func TestBuildTreeEmpty(t *testing.T) {
	if root := BuildTree(Frequencies{}); root != nil {
		t.Fatalf("BuildTree(empty) = %v, want nil", root)
	}
	if root := BuildTree(nil); root != nil {
		t.Fatalf("BuildTree(nil) = %v, want nil", root)
	}
}

func TestBuildTreeSingleSymbol(t *testing.T) {
	root := BuildTree(Frequencies{'a': 4})
	leaf, ok := root.(*Leaf)
	if !ok {
		t.Fatalf("root = %T, want *Leaf", root)
	}
	if leaf.Symbol() != 'a' || leaf.Weight() != 4 {
		t.Fatalf("root = %v, want 'a':4", leaf)
	}
}

func TestBuildTreeTwoSymbols(t *testing.T) {
	root := BuildTree(Frequencies{'a': 2, 'b': 1})
	in, ok := root.(*Internal)
	if !ok {
		t.Fatalf("root = %T, want *Internal", root)
	}
	if in.Weight() != 3 {
		t.Fatalf("root weight = %d, want 3", in.Weight())
	}
	left, lok := in.Left().(*Leaf)
	right, rok := in.Right().(*Leaf)
	if !lok || !rok {
		t.Fatalf("children = %T, %T; want leaves", in.Left(), in.Right())
	}
	if left.Symbol() != 'b' || right.Symbol() != 'a' {
		t.Fatalf("children = %v, %v; want 'b' left, 'a' right", left, right)
	}
}

func TestBuildTreeTieBreak(t *testing.T) {
	// Equal weights merge in insertion order: symbols ascending, then merged nodes.
	root := BuildTree(Frequencies{'d': 1, 'c': 1, 'b': 1, 'a': 1})
	want := "(4 (2 'a':1 'b':1) (2 'c':1 'd':1))"
	if got := root.(*Internal).String(); got != want {
		t.Fatalf("tree = %s, want %s", got, want)
	}
}

func TestBuildTreeDeterministic(t *testing.T) {
	freq := CountBytes([]byte("it was the best of times, it was the worst of times"))
	want := BuildTree(freq).(*Internal).String()
	for i := 0; i < 20; i++ {
		// Fresh maps iterate in a different order each time.
		copied := make(Frequencies, len(freq))
		for b, c := range freq {
			copied[b] = c
		}
		if got := BuildTree(copied).(*Internal).String(); got != want {
			t.Fatalf("run %d: tree = %s, want %s", i, got, want)
		}
	}
}

func TestBuildTreeInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		freq := make(Frequencies)
		n := 1 + rng.Intn(256)
		for j := 0; j < n; j++ {
			freq[byte(rng.Intn(256))] += uint64(1 + rng.Intn(1000))
		}
		root := BuildTree(freq)
		checkWeights(t, root)
		if root.Weight() != freq.Total() {
			t.Fatalf("root weight = %d, want %d", root.Weight(), freq.Total())
		}
		got := leaves(root)
		if len(got) != len(freq) {
			t.Fatalf("%d leaves, want %d", len(got), len(freq))
		}
		for b, c := range freq {
			if got[b] != c {
				t.Fatalf("leaf %d weight = %d, want %d", b, got[b], c)
			}
		}
	}
}

func TestNewInternalWeight(t *testing.T) {
	n := NewInternal(NewLeaf('x', 3), NewInternal(NewLeaf('y', 1), NewLeaf('z', 2)))
	if n.Weight() != 6 {
		t.Fatalf("weight = %d, want 6", n.Weight())
	}
	checkWeights(t, n)
}

func TestWalkSkipsChildren(t *testing.T) {
	root := BuildTree(Frequencies{'a': 1, 'b': 1, 'c': 1, 'd': 1})
	visited := 0
	Walk(root, func(n Node, depth int) bool {
		visited++
		return depth < 1
	})
	if visited != 3 {
		t.Fatalf("visited %d nodes, want 3", visited)
	}
}

func TestDepth(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"aaaa", 0},
		{"aab", 1},
		{"abcd", 2},
		{"abracadabra", 3},
	}
	for _, tt := range tests {
		if got := Depth(BuildTree(CountBytes([]byte(tt.input)))); got != tt.want {
			t.Errorf("Depth(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
