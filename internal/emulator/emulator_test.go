package emulator

import (
	"testing"

	"github.com/RetroCodeRamen/chip16/internal/audio"
	"github.com/RetroCodeRamen/chip16/internal/cpu"
	"github.com/RetroCodeRamen/chip16/internal/memory"
	"github.com/RetroCodeRamen/chip16/internal/video"
	"github.com/stretchr/testify/assert"
)

type fakePresenter struct {
	calls int
}

func (f *fakePresenter) Present(fb *video.Framebuffer, pal *video.Palette, bg uint8) {
	f.calls++
}

// fakeInput quits after a fixed number of polls, simulating
// pollsUntilQuit frames of play followed by a host-delivered quit event.
type fakeInput struct {
	pollsUntilQuit int
	polls          int
}

func (f *fakeInput) Poll() (c0, c1 uint8, quit bool) {
	f.polls++
	return 0, 0, f.polls > f.pollsUntilQuit
}

type fakeRNG struct{}

func (fakeRNG) Intn(n int) int { return 0 }

// newLoopingROM fills memory with NOPs so the interpreter runs exactly
// InstructionsPerFrame instructions per frame boundary without touching
// PC itself.
func newLoopingROM(mem *memory.Memory) {
	buf := make([]byte, InstructionsPerFrame*4+64)
	mem.LoadAt(0, buf) // opcode 0x00 everywhere: NOP
}

func newTestEmulator(quitAfterFrames int) (*Emulator, *fakePresenter) {
	mem := memory.New()
	newLoopingROM(mem)
	gpu := video.New()
	synth := audio.New()
	c := cpu.New(mem, gpu, synth, fakeRNG{}, nil)

	presenter := &fakePresenter{}
	in := &fakeInput{pollsUntilQuit: quitAfterFrames}

	e := New(c, mem, gpu, synth, presenter, in, nil)
	return e, presenter
}

func TestRunStopsOnQuitEvent(t *testing.T) {
	e, presenter := newTestEmulator(2)

	err := e.Run()

	assert.NoError(t, err)
	assert.Equal(t, 3, presenter.calls) // frames 1, 2, then the quitting frame
}

func TestRunPropagatesFatalTrap(t *testing.T) {
	mem := memory.New()
	mem.Write8(0, 0x1F) // invalid opcode
	gpu := video.New()
	synth := audio.New()
	c := cpu.New(mem, gpu, synth, fakeRNG{}, nil)

	e := New(c, mem, gpu, synth, &fakePresenter{}, &fakeInput{pollsUntilQuit: 100}, nil)

	err := e.Run()
	assert.Error(t, err)
}

func TestCPUStepLeavesVblankLatchClearMidFrame(t *testing.T) {
	e, _ := newTestEmulator(0)

	var sawLatchMidFrame bool
	for i := 0; i < InstructionsPerFrame-1; i++ {
		assert.NoError(t, e.CPU.Step())
		e.instructionCount++
		if e.CPU.VBlankLatch {
			sawLatchMidFrame = true
		}
	}

	assert.False(t, sawLatchMidFrame)
}

func TestControllerShadowsWrittenAtFrameBoundary(t *testing.T) {
	mem := memory.New()
	newLoopingROM(mem)
	gpu := video.New()
	synth := audio.New()
	c := cpu.New(mem, gpu, synth, fakeRNG{}, nil)

	in := &fakeInput{pollsUntilQuit: 5}
	e := New(c, mem, gpu, synth, &fakePresenter{}, in, nil)

	quit := e.frameBoundary()

	assert.False(t, quit)
	assert.Equal(t, uint8(0), mem.Read8(memory.Controller0Addr))
	assert.Equal(t, uint8(0), mem.Read8(memory.Controller1Addr))
}
