// Package rom loads Chip16 ROM images, recognizing the optional CH16
// header and falling back to a raw binary image.
package rom

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// HeaderSize is the size of the optional CH16 header.
const HeaderSize = 16

var magic = [4]byte{'C', 'H', '1', '6'}

// Header mirrors the 16-byte on-disk layout.
type Header struct {
	Reserved uint8
	Version  uint8
	ROMSize  uint32
	StartPC  uint16
	CRC32    uint32
}

// Image is a loaded ROM: the raw program bytes and the entry point the
// interpreter should set PC to before the first instruction fetch.
type Image struct {
	Data    []byte
	StartPC uint16
	Header  *Header // nil when the file had no CH16 header

	// CRCMatched reports whether the program's computed CRC-32 matches
	// the header's declared value. Always true when Header is nil. A
	// mismatch is never fatal — spec.md never requires enforcement — but
	// callers can use it to warn about a corrupted or hand-edited ROM.
	CRCMatched bool
}

// Load parses raw file bytes into an Image. If the first four bytes match
// the "CH16" magic, the 16-byte header is parsed and the program begins at
// file offset 16; otherwise the whole file is the program and PC starts at
// 0.
func Load(data []byte) (*Image, error) {
	if len(data) >= HeaderSize && [4]byte{data[0], data[1], data[2], data[3]} == magic {
		h := &Header{
			Reserved: data[4],
			Version:  data[5],
			ROMSize:  binary.LittleEndian.Uint32(data[6:10]),
			StartPC:  binary.LittleEndian.Uint16(data[10:12]),
			CRC32:    binary.LittleEndian.Uint32(data[12:16]),
		}
		program := data[HeaderSize:]
		if uint32(len(program)) < h.ROMSize {
			return nil, fmt.Errorf("rom: header declares %d bytes but file has only %d", h.ROMSize, len(program))
		}
		// The CRC-32 is checked but not enforced: a ROM that fails its own
		// checksum still runs; CRCMatched lets the caller decide whether
		// to warn about it.
		matched := crc32.ChecksumIEEE(program) == h.CRC32
		return &Image{Data: program, StartPC: h.StartPC, Header: h, CRCMatched: matched}, nil
	}

	return &Image{Data: data, StartPC: 0, CRCMatched: true}, nil
}
