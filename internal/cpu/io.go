package cpu

import "github.com/RetroCodeRamen/chip16/internal/audio"

// executeCLS implements CLS: clear the framebuffer and reset bg to 0.
func (c *CPU) executeCLS() error {
	c.Video.CLS()
	return nil
}

// executeVBLNK implements VBLNK: spin on this instruction until the frame
// loop sets the vblank latch at the next frame boundary.
func (c *CPU) executeVBLNK() error {
	if !c.VBlankLatch {
		c.State.PC -= 4
	}
	return nil
}

// executeBGC implements BGC n: set the background color index from the
// low nibble of the immediate's low byte.
func (c *CPU) executeBGC(hhll uint16) error {
	c.Video.SetBG(uint8(hhll) & 0xF)
	return nil
}

// executeSPR implements SPR HHLL: set sprite width/height from the
// immediate's low/high bytes.
func (c *CPU) executeSPR(hhll uint16) error {
	c.Video.SetSpriteSize(uint8(hhll), uint8(hhll>>8))
	return nil
}

// executeDRWImm implements DRW rx, ry, HHLL: rasterize the sprite at
// address HHLL to screen position (R[x], R[y]).
func (c *CPU) executeDRWImm(rx, ry uint8, hhll uint16) error {
	collision := c.Video.Draw(c.Mem, c.State.R[rx], c.State.R[ry], hhll)
	c.State.C = collision
	return nil
}

// executeDRWReg implements DRW rx, ry, rz: same as executeDRWImm but the
// sprite source address comes from R[z] (byte 2's low nibble).
func (c *CPU) executeDRWReg(rx, ry uint8, hhll uint16) error {
	rz := uint8(hhll) & 0xF
	addr := uint16(c.State.R[rz])
	collision := c.Video.Draw(c.Mem, c.State.R[rx], c.State.R[ry], addr)
	c.State.C = collision
	return nil
}

// executeRND implements RND rx, HHLL: R[rx] = uniform random in [0, HHLL].
func (c *CPU) executeRND(rx uint8, hhll uint16) error {
	n := int(hhll) + 1
	c.State.R[rx] = int16(uint16(c.RNG.Intn(n)))
	return nil
}

// executeFLIP implements FLIP: vflip/hflip come from bits 8 and 9 of
// HHLL.
func (c *CPU) executeFLIP(hhll uint16) error {
	vflip := hhll&(1<<8) != 0
	hflip := hhll&(1<<9) != 0
	c.Video.SetFlip(hflip, vflip)
	return nil
}

// executeSND0 implements SND0: stop the synthesizer.
func (c *CPU) executeSND0() error {
	c.Audio.Stop()
	return nil
}

// executeSNDFixed implements SND1/2/3: play a fixed-frequency tone with
// the envelope bypassed.
func (c *CPU) executeSNDFixed(freqHz float64, durationMs uint16) error {
	c.Audio.PlayFixed(freqHz, durationMs)
	return nil
}

// executeSNP implements SNP rx, HHLL: play a tone whose frequency is read
// from M16[R[x]], for HHLL ms, using the currently configured ADSR.
func (c *CPU) executeSNP(rx uint8, hhll uint16) error {
	addr := uint16(c.State.R[rx])
	freq := float64(c.Mem.Read16(addr))
	c.Audio.PlayCustom(freq, hhll)
	return nil
}

// executeSNG implements SNG AD, VTSR: configures the ADSR indices and
// waveform for the next custom tone.
//
// Bit layout (this interpreter's own packing choice, undocumented by the
// source beyond the mnemonic): byte 1 high nibble = attack index, low
// nibble = decay index (decay's duration doubles as release's duration,
// per the shared attack/decay/release table). Byte 3 (HH) high nibble =
// volume index; low nibble bits 3:2 = waveform type, bits 1:0 = sustain
// index scaled to the 0-15 table range.
func (c *CPU) executeSNG(rx, ry uint8, hhll uint16) error {
	attackIdx := ry
	decayIdx := rx
	hh := uint8(hhll >> 8)
	volumeIdx := hh >> 4
	waveformBits := (hh >> 2) & 0x3
	sustainIdx := (hh & 0x3) * 5

	var wave audio.Waveform
	switch waveformBits {
	case 0:
		wave = audio.Square
	case 1:
		wave = audio.Sawtooth
	case 2:
		wave = audio.Triangle
	default:
		wave = audio.Noise
	}

	c.Audio.SetADSR(attackIdx, decayIdx, volumeIdx, sustainIdx, wave)
	return nil
}

// executePALImm implements PAL HHLL: reload the palette from a 48-byte
// region at HHLL.
func (c *CPU) executePALImm(hhll uint16) error {
	c.Video.LoadPalette(c.Mem, hhll)
	return nil
}

// executePALReg implements PAL rx: same, from R[rx].
func (c *CPU) executePALReg(rx uint8) error {
	c.Video.LoadPalette(c.Mem, uint16(c.State.R[rx]))
	return nil
}
