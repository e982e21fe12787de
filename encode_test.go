package huffman

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/seiflotfy/huffman/bitio"
)

// bitSink records bits in memory.
type bitSink struct {
	bits []bool
	fail error
}

func (s *bitSink) WriteBit(bit bool) error {
	if s.fail != nil {
		return s.fail
	}
	s.bits = append(s.bits, bit)
	return nil
}

func (s *bitSink) String() string {
	var sb strings.Builder
	for _, b := range s.bits {
		if b {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func encodeString(t *testing.T, input string) (Node, []byte) {
	t.Helper()
	tree := BuildTree(CountBytes([]byte(input)))
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	if err := Encode(DeriveCodes(tree), strings.NewReader(input), w); err != nil {
		t.Fatalf("Encode(%q): %v", input, err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return tree, buf.Bytes()
}

func TestEncodeBits(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"aaaa", "1111"},
		{"aab", "110"},
		{"aaaabbc", "1111010100"},
		{"abracadabra", "01101110100010101101110"},
	}
	for _, tt := range tests {
		table := DeriveCodes(BuildTree(CountBytes([]byte(tt.input))))
		var sink bitSink
		if err := Encode(table, strings.NewReader(tt.input), &sink); err != nil {
			t.Fatalf("Encode(%q): %v", tt.input, err)
		}
		if got := sink.String(); got != tt.want {
			t.Errorf("Encode(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestEncodeNonZeroCharacterIsOne(t *testing.T) {
	table := CodeTable{'x': "0x0"}
	var sink bitSink
	if err := Encode(table, strings.NewReader("x"), &sink); err != nil {
		t.Fatal(err)
	}
	if got := sink.String(); got != "010" {
		t.Fatalf("bits = %s, want 010", got)
	}
}

func TestEncodeMissingCode(t *testing.T) {
	table := DeriveCodes(BuildTree(CountBytes([]byte("aab"))))
	var sink bitSink
	err := Encode(table, strings.NewReader("abc"), &sink)
	if !errors.Is(err, ErrMissingCode) {
		t.Fatalf("err = %v, want ErrMissingCode", err)
	}
	if !strings.Contains(err.Error(), "offset 2") {
		t.Errorf("err = %q, want the failing offset", err)
	}
}

func TestEncodeWriteError(t *testing.T) {
	boom := errors.New("disk full")
	table := DeriveCodes(BuildTree(CountBytes([]byte("ab"))))
	err := Encode(table, strings.NewReader("ab"), &bitSink{fail: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestEncodedSizes(t *testing.T) {
	tests := []struct {
		input string
		bytes int
	}{
		{"", 0},
		{"a", 2},
		{"aaaa", 2},
		{"aaaaaaaa", 2},
		{"aaaaaaaaa", 3},
	}
	for _, tt := range tests {
		_, data := encodeString(t, tt.input)
		if len(data) != tt.bytes {
			t.Errorf("%q compressed to %d bytes, want %d", tt.input, len(data), tt.bytes)
		}
	}
}
