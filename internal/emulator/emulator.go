// Package emulator drives the fetch-decode-execute loop, paces it to 60
// frames per second, and hands the framebuffer, palette, and input state
// to the host collaborators at each frame boundary.
package emulator

import (
	"fmt"
	"time"

	"github.com/RetroCodeRamen/chip16/internal/audio"
	"github.com/RetroCodeRamen/chip16/internal/cpu"
	"github.com/RetroCodeRamen/chip16/internal/debug"
	"github.com/RetroCodeRamen/chip16/internal/memory"
	"github.com/RetroCodeRamen/chip16/internal/video"
)

// InstructionsPerFrame is the interpreter's fixed clock divided by 60 Hz:
// 1,000,000 / 60, truncated.
const InstructionsPerFrame = 16666

// FrameDuration is the nominal real-time budget of one frame.
const FrameDuration = time.Second / 60

// Presenter receives the framebuffer and palette once per frame and is
// responsible for getting pixels on screen.
type Presenter interface {
	Present(fb *video.Framebuffer, pal *video.Palette, bg uint8)
}

// InputSource is polled once per frame for the held-button state of both
// controllers and for a host quit request.
type InputSource interface {
	Poll() (controller0, controller1 uint8, quit bool)
}

// Emulator couples the CPU interpreter to its memory, video, audio, input,
// and host collaborators and runs the per-frame pacing loop described in
// the frame loop's pacing rules.
type Emulator struct {
	CPU   *cpu.CPU
	Mem   *memory.Memory
	Video *video.GPU
	Audio *audio.Synth

	Presenter Presenter
	Input     InputSource

	Logger *debug.Logger

	instructionCount int
	lastBoundary     time.Time

	running bool
}

// New wires an emulator from its already-constructed collaborators. The
// caller loads the ROM into mem and sets the CPU's entry point before the
// first call to Run.
func New(c *cpu.CPU, mem *memory.Memory, gpu *video.GPU, synth *audio.Synth, presenter Presenter, in InputSource, logger *debug.Logger) *Emulator {
	return &Emulator{
		CPU:       c,
		Mem:       mem,
		Video:     gpu,
		Audio:     synth,
		Presenter: presenter,
		Input:     in,
		Logger:    logger,
	}
}

// Run executes instructions until the input collaborator delivers a quit
// event or the CPU traps a fatal error.
func (e *Emulator) Run() error {
	e.running = true
	e.lastBoundary = time.Now()

	for e.running {
		if err := e.CPU.Step(); err != nil {
			return fmt.Errorf("emulator: fatal trap: %w", err)
		}

		e.instructionCount++
		if e.instructionCount >= InstructionsPerFrame {
			e.instructionCount = 0
			if quit := e.frameBoundary(); quit {
				e.running = false
			}
			e.CPU.VBlankLatch = true
		} else {
			e.CPU.VBlankLatch = false
		}
	}

	return nil
}

// frameBoundary runs the once-per-frame work: presentation, envelope
// polling, input draining, and drift-compensated sleep pacing. It reports
// whether the host requested a quit.
func (e *Emulator) frameBoundary() bool {
	if e.Presenter != nil {
		e.Presenter.Present(&e.Video.FB, e.Video.Pal, e.Video.BG)
	}

	e.Audio.PollEnvelopeCompletion()

	elapsed := time.Since(e.lastBoundary)
	if sleep := FrameDuration - elapsed; sleep > 0 {
		time.Sleep(sleep)
	}

	var c0, c1 uint8
	var quit bool
	if e.Input != nil {
		c0, c1, quit = e.Input.Poll()
	}
	e.Mem.WriteControllerShadows(c0, c1)

	// Advance by the nominal frame duration, not actual elapsed time, so
	// an occasional long frame does not leave a permanent lag.
	e.lastBoundary = e.lastBoundary.Add(FrameDuration)

	if e.Logger != nil {
		e.Logger.LogSystemf(debug.LogLevelTrace, "frame boundary: c0=%02X c1=%02X quit=%v", c0, c1, quit)
	}

	return quit
}
