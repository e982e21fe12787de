package huffman

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/seiflotfy/huffman/bitio"
)

const (
	archiveMagic   = "HUFA"
	archiveVersion = uint16(1)

	stageFrequencies = "frequencies"
	stageBitstream   = "bitstream"
	stageChecksum    = "checksum"

	maxArchiveStages     = 16
	maxStagePayloadBytes = 1 << 30 // 1 GiB
	checksumSize         = 8
)

// Wire format (version 1):
//
//	magic[4] = "HUFA"
//	version  = uint16 little-endian
//	stageCnt = uint16 little-endian
//	repeat stageCnt times:
//	  nameLen  = uint8
//	  paramLen = uint16 little-endian
//	  dataLen  = uint32 little-endian
//	  name     = nameLen bytes
//	  params   = paramLen bytes
//	  payload  = dataLen bytes
//
// Required stage names:
//
//	frequencies: uvarint symbolCnt, then (symbol uint8, uvarint count) in ascending symbol order
//	bitstream:   the bitio stream, trailer included
//	checksum:    xxhash64 of the original bytes, uint64 little-endian
//
// Unknown stages are skipped via dataLen framing.
type wireStageHeader struct {
	name     string
	paramLen uint16
	dataLen  uint32
}

func writeBytes(w io.Writer, b []byte) (int64, error) {
	n, err := w.Write(b)
	if err != nil {
		return int64(n), err
	}
	if n != len(b) {
		return int64(n), io.ErrShortWrite
	}
	return int64(n), nil
}

func writeStage(w io.Writer, name string, params []byte, payload []byte) (int64, error) {
	if len(name) == 0 || len(name) > 255 {
		return 0, fmt.Errorf("invalid stage name length: %d", len(name))
	}
	if len(params) > int(^uint16(0)) {
		return 0, fmt.Errorf("stage params too large for %q: %d", name, len(params))
	}
	if len(payload) > maxStagePayloadBytes {
		return 0, fmt.Errorf("stage payload too large for %q: %d", name, len(payload))
	}

	var header [7]byte
	header[0] = uint8(len(name))
	binary.LittleEndian.PutUint16(header[1:3], uint16(len(params)))
	binary.LittleEndian.PutUint32(header[3:7], uint32(len(payload)))

	var total int64
	for _, part := range [][]byte{header[:], []byte(name), params, payload} {
		n, err := writeBytes(w, part)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func readStageHeader(r io.Reader) (wireStageHeader, int64, error) {
	var header [7]byte
	n, err := io.ReadFull(r, header[:])
	total := int64(n)
	if err != nil {
		return wireStageHeader{}, total, err
	}
	nameLen := header[0]
	if nameLen == 0 {
		return wireStageHeader{}, total, fmt.Errorf("stage name length must be > 0")
	}
	paramLen := binary.LittleEndian.Uint16(header[1:3])
	dataLen := binary.LittleEndian.Uint32(header[3:7])
	if dataLen > uint32(maxStagePayloadBytes) {
		return wireStageHeader{}, total, fmt.Errorf("stage payload too large: %d", dataLen)
	}

	nameBytes := make([]byte, int(nameLen))
	n, err = io.ReadFull(r, nameBytes)
	total += int64(n)
	if err != nil {
		return wireStageHeader{}, total, err
	}

	return wireStageHeader{
		name:     string(nameBytes),
		paramLen: paramLen,
		dataLen:  dataLen,
	}, total, nil
}

// Archive is a self-contained compressed form of a byte slice. It keeps the
// frequency table instead of the tree; BuildTree is deterministic, so the
// table rebuilds the exact tree that encoded Bitstream.
type Archive struct {
	Frequencies Frequencies
	Bitstream   []byte
	Checksum    uint64
}

// CompressBytes compresses data into an Archive.
func (c *Compressor) CompressBytes(data []byte) (*Archive, error) {
	freq := CountBytes(data)
	table := DeriveCodes(BuildTree(freq))

	var buf bytes.Buffer
	bw := bitio.NewWriter(&buf)
	if err := Encode(table, bytes.NewReader(data), bw); err != nil {
		c.log.WithError(err).Error("archive compression failed")
		return nil, err
	}
	if err := bw.Close(); err != nil {
		c.log.WithError(err).Error("archive compression failed")
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"symbols": len(freq),
		"bytes":   len(data),
		"bits":    bw.Bits(),
	}).Debug("compressed archive")
	return &Archive{
		Frequencies: freq,
		Bitstream:   buf.Bytes(),
		Checksum:    xxhash.Sum64(data),
	}, nil
}

// Len returns the length of the original data.
func (a *Archive) Len() int {
	return int(a.Frequencies.Total())
}

// SpaceUsed returns the serialized size of the archive payloads in bytes.
func (a *Archive) SpaceUsed() int {
	return len(encodeFrequenciesStage(a.Frequencies)) + len(a.Bitstream) + checksumSize
}

// Decompress decodes the archive and verifies the checksum.
func (a *Archive) Decompress() ([]byte, error) {
	return a.AppendAll(nil)
}

// AppendAll appends the decoded data to dst.
func (a *Archive) AppendAll(dst []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst)
	buf.Grow(a.Len())
	start := len(dst)

	tree := BuildTree(a.Frequencies)
	if err := Decode(tree, bitio.NewReader(bytes.NewReader(a.Bitstream)), buf); err != nil {
		return dst, err
	}
	out := buf.Bytes()
	if got := len(out) - start; got != a.Len() {
		return dst, fmt.Errorf("decoded %d bytes, want %d: %w", got, a.Len(), ErrChecksumMismatch)
	}
	if xxhash.Sum64(out[start:]) != a.Checksum {
		return dst, ErrChecksumMismatch
	}
	return out, nil
}

func encodeFrequenciesStage(freq Frequencies) []byte {
	payload := make([]byte, 0, 1+len(freq)*(1+binary.MaxVarintLen64))
	payload = binary.AppendUvarint(payload, uint64(len(freq)))
	for _, b := range freq.Symbols() {
		payload = append(payload, b)
		payload = binary.AppendUvarint(payload, freq[b])
	}
	return payload
}

func decodeFrequenciesStage(payload []byte) (Frequencies, error) {
	count, n := binary.Uvarint(payload)
	if n <= 0 {
		return nil, fmt.Errorf("invalid symbol count varint")
	}
	if count > 256 {
		return nil, fmt.Errorf("symbol count out of range: %d", count)
	}
	pos := n

	freq := make(Frequencies, count)
	prev := -1
	for i := 0; i < int(count); i++ {
		if pos >= len(payload) {
			return nil, fmt.Errorf("truncated frequency table at entry %d", i)
		}
		symbol := payload[pos]
		pos++
		if int(symbol) <= prev {
			return nil, fmt.Errorf("symbols not ascending at entry %d: %d", i, symbol)
		}
		prev = int(symbol)

		c, n := binary.Uvarint(payload[pos:])
		if n <= 0 {
			return nil, fmt.Errorf("invalid count varint at entry %d", i)
		}
		pos += n
		if c == 0 {
			return nil, fmt.Errorf("zero count for symbol %d", symbol)
		}
		freq[symbol] = c
	}
	if pos != len(payload) {
		return nil, fmt.Errorf("trailing frequency bytes: %d", len(payload)-pos)
	}
	return freq, nil
}

func decodeChecksumStage(payload []byte) (uint64, error) {
	if len(payload) != checksumSize {
		return 0, fmt.Errorf("checksum payload must be %d bytes: %d", checksumSize, len(payload))
	}
	return binary.LittleEndian.Uint64(payload), nil
}

func validateArchiveStructure(a *Archive) error {
	var total uint64
	for b, c := range a.Frequencies {
		if c == 0 {
			return fmt.Errorf("zero count for symbol %d", b)
		}
		if total+c < total {
			return errors.New("frequency total overflows")
		}
		total += c
	}
	// Every symbol costs at least one bit.
	if total > 8*uint64(len(a.Bitstream)) {
		return fmt.Errorf("%d symbols cannot fit in a %d byte bitstream", total, len(a.Bitstream))
	}

	bits := DeriveCodes(BuildTree(a.Frequencies)).EncodedBits(a.Frequencies)
	if want := streamBytes(bits); int64(len(a.Bitstream)) != want {
		return fmt.Errorf("bitstream is %d bytes, frequency table implies %d", len(a.Bitstream), want)
	}
	return nil
}

// WriteTo serializes the Archive to an io.Writer.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	if err := validateArchiveStructure(a); err != nil {
		return 0, fmt.Errorf("invalid archive: %w", err)
	}

	var checksum [checksumSize]byte
	binary.LittleEndian.PutUint64(checksum[:], a.Checksum)

	stages := []struct {
		name    string
		payload []byte
	}{
		{name: stageFrequencies, payload: encodeFrequenciesStage(a.Frequencies)},
		{name: stageBitstream, payload: a.Bitstream},
		{name: stageChecksum, payload: checksum[:]},
	}

	var header [8]byte
	copy(header[:4], archiveMagic)
	binary.LittleEndian.PutUint16(header[4:6], archiveVersion)
	binary.LittleEndian.PutUint16(header[6:8], uint16(len(stages)))

	total, err := writeBytes(w, header[:])
	if err != nil {
		return total, err
	}
	for _, stage := range stages {
		n, err := writeStage(w, stage.name, nil, stage.payload)
		total += n
		if err != nil {
			return total, fmt.Errorf("write stage %q: %w", stage.name, err)
		}
	}
	return total, nil
}

// ReadFrom deserializes an Archive from an io.Reader.
func (a *Archive) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	var header [8]byte
	n, err := io.ReadFull(r, header[:])
	total += int64(n)
	if err != nil {
		return total, fmt.Errorf("read archive header at offset 0: %w", err)
	}
	if string(header[:4]) != archiveMagic {
		return total, fmt.Errorf("invalid archive magic at offset 0: %q", string(header[:4]))
	}
	if version := binary.LittleEndian.Uint16(header[4:6]); version != archiveVersion {
		return total, fmt.Errorf("unsupported archive version at offset 4: %d", version)
	}
	stageCount := binary.LittleEndian.Uint16(header[6:8])
	if stageCount == 0 || stageCount > maxArchiveStages {
		return total, fmt.Errorf("invalid stage count at offset 6: %d", stageCount)
	}

	var tmp Archive
	seenStages := make(map[string]bool, stageCount)
	for i := 0; i < int(stageCount); i++ {
		headerOffset := total
		header, n, err := readStageHeader(r)
		total += n
		if err != nil {
			return total, fmt.Errorf("read stage header at offset %d (stage index %d): %w", headerOffset, i, err)
		}
		if seenStages[header.name] {
			return total, fmt.Errorf("duplicate stage %q at stage index %d", header.name, i)
		}

		skipOffset := total
		skipped, err := io.CopyN(io.Discard, r, int64(header.paramLen))
		total += skipped
		if err != nil {
			return total, fmt.Errorf("read stage %q params at offset %d (stage index %d): %w", header.name, skipOffset, i, err)
		}

		switch header.name {
		case stageFrequencies, stageBitstream, stageChecksum:
			payload := make([]byte, int(header.dataLen))
			payloadOffset := total
			nPayload, err := io.ReadFull(r, payload)
			total += int64(nPayload)
			if err != nil {
				return total, fmt.Errorf("read stage %q payload at offset %d (stage index %d): %w", header.name, payloadOffset, i, err)
			}

			switch header.name {
			case stageFrequencies:
				tmp.Frequencies, err = decodeFrequenciesStage(payload)
			case stageBitstream:
				tmp.Bitstream = payload
			case stageChecksum:
				tmp.Checksum, err = decodeChecksumStage(payload)
			}
			if err != nil {
				return total, fmt.Errorf("decode stage %q at offset %d (stage index %d): %w", header.name, payloadOffset, i, err)
			}
			seenStages[header.name] = true

		default:
			skipOffset := total
			skipped, err := io.CopyN(io.Discard, r, int64(header.dataLen))
			total += skipped
			if err != nil {
				return total, fmt.Errorf("skip unknown stage %q at offset %d (stage index %d): %w", header.name, skipOffset, i, err)
			}
		}
	}

	for _, stageName := range []string{stageFrequencies, stageBitstream, stageChecksum} {
		if !seenStages[stageName] {
			return total, fmt.Errorf("missing required stage %q", stageName)
		}
	}
	if err := validateArchiveStructure(&tmp); err != nil {
		return total, fmt.Errorf("invalid archive structure: %w", err)
	}

	*a = tmp
	return total, nil
}
