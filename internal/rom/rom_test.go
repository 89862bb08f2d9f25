package rom

import (
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildHeaderWithCRC(startPC uint16, program []byte, crc uint32) []byte {
	header := make([]byte, HeaderSize)
	copy(header[0:4], magic[:])
	header[4] = 0 // reserved
	header[5] = 1 // version
	binary.LittleEndian.PutUint32(header[6:10], uint32(len(program)))
	binary.LittleEndian.PutUint16(header[10:12], startPC)
	binary.LittleEndian.PutUint32(header[12:16], crc)
	return append(header, program...)
}

func buildHeader(startPC uint16, program []byte) []byte {
	return buildHeaderWithCRC(startPC, program, crc32.ChecksumIEEE(program))
}

func TestLoadHeaderedROM(t *testing.T) {
	program := []byte{0x01, 0x02, 0x03, 0x04}
	file := buildHeader(0x1234, program)

	img, err := Load(file)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x1234), img.StartPC)
	assert.Equal(t, program, img.Data)
	assert.NotNil(t, img.Header)
	assert.Equal(t, uint8(1), img.Header.Version)
}

func TestLoadRawROM(t *testing.T) {
	raw := []byte{0x00, 0x00, 0x00, 0x00}
	img, err := Load(raw)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0), img.StartPC)
	assert.Equal(t, raw, img.Data)
	assert.Nil(t, img.Header)
	assert.True(t, img.CRCMatched)
}

func TestLoadHeaderedROMWithCorrectCRCMatches(t *testing.T) {
	program := []byte{0x01, 0x02, 0x03, 0x04}
	file := buildHeader(0, program)

	img, err := Load(file)
	assert.NoError(t, err)
	assert.True(t, img.CRCMatched)
}

func TestLoadHeaderedROMWithWrongCRCStillLoads(t *testing.T) {
	program := []byte{0x01, 0x02, 0x03, 0x04}
	file := buildHeaderWithCRC(0, program, 0xDEADBEEF)

	img, err := Load(file)
	assert.NoError(t, err)
	assert.Equal(t, program, img.Data)
	assert.False(t, img.CRCMatched)
}

func TestLoadHeaderedROMTooShort(t *testing.T) {
	program := []byte{0x01, 0x02, 0x03, 0x04}
	file := buildHeader(0, program)
	truncated := file[:len(file)-2]

	_, err := Load(truncated)
	assert.Error(t, err)
}
