package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadWrite16RoundTrip(t *testing.T) {
	m := New()
	for _, addr := range []uint16{0x0000, 0x1234, 0xFFFE, 0xFFFF} {
		for _, v := range []uint16{0x0000, 0x00FF, 0xFF00, 0xABCD} {
			m.Write16(addr, v)
			got := m.Read16(addr)
			assert.Equalf(t, v, got, "addr=0x%04X value=0x%04X", addr, v)
		}
	}
}

func TestWrite16ByteOrderIsLittleEndian(t *testing.T) {
	m := New()
	m.Write16(0x10, 0xABCD)
	assert.Equal(t, uint8(0xCD), m.Read8(0x10))
	assert.Equal(t, uint8(0xAB), m.Read8(0x11))
}

func TestAddressWraparound(t *testing.T) {
	m := New()
	// The high byte of a 16-bit access at 0xFFFF wraps to address 0.
	m.Write16(0xFFFF, 0x1234)
	assert.Equal(t, uint8(0x34), m.Read8(0xFFFF))
	assert.Equal(t, uint8(0x12), m.Read8(0x0000))
}

func TestLoadAtWraps(t *testing.T) {
	m := New()
	m.LoadAt(0xFFFE, []byte{0xAA, 0xBB, 0xCC})
	assert.Equal(t, uint8(0xAA), m.Read8(0xFFFE))
	assert.Equal(t, uint8(0xBB), m.Read8(0xFFFF))
	assert.Equal(t, uint8(0xCC), m.Read8(0x0000))
}

func TestControllerShadows(t *testing.T) {
	m := New()
	m.WriteControllerShadows(0x42, 0x99)
	assert.Equal(t, uint8(0x42), m.Read8(Controller0Addr))
	assert.Equal(t, uint8(0x99), m.Read8(Controller1Addr))
}
