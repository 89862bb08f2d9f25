// Package host implements the SDL2-backed presenter, audio sink, and
// input source that the emulator's frame loop drives once per frame
// boundary.
package host

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/RetroCodeRamen/chip16/internal/audio"
	"github.com/RetroCodeRamen/chip16/internal/input"
	"github.com/RetroCodeRamen/chip16/internal/video"
	"github.com/veandco/go-sdl2/sdl"
)

// CapturePath is the raw-PCM debug tee's file name.
const CapturePath = "cpu_audio_output"

// audioBufferSamples sets how many samples each fill/queue cycle produces:
// 800 at 48 kHz is exactly one 60 Hz frame's worth (48000 / 60).
const audioBufferSamples = 800

// presentScale is the fixed pixel-doubling factor the framebuffer output
// contract specifies: each framebuffer pixel becomes a 2x2 block. This is
// independent of the window's display scale, which the renderer stretches
// the resulting texture into separately.
const presentScale = 2

// Host owns the SDL2 window, streaming texture, and audio device, and
// adapts them to the emulator's Presenter and InputSource interfaces.
type Host struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	scale    int

	audioDev sdl.AudioDeviceID
	synth    *audio.Synth
	capture  *os.File
	stopFill chan struct{}

	system *input.System
}

// New opens an SDL2 window at the given integer pixel scale, an audio
// device queued from synth, and a raw-PCM capture file, and starts the
// background fill goroutine that stands in for an independent
// audio-callback context: go-sdl2 has no pure-Go native callback hook, so
// a dedicated goroutine pulls samples from the synth under its own mutex
// and queues them, the same lock-bounded contract a true hardware
// callback would have.
func New(scale int, synth *audio.Synth) (*Host, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("host: sdl init: %w", err)
	}

	sdl.SetHint(sdl.HINT_RENDER_SCALE_QUALITY, "0")

	width := int32(video.Width * scale)
	height := int32(video.Height * scale)

	window, err := sdl.CreateWindow(
		"Chip16",
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		width, height,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("host: create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("host: create renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGB888, sdl.TEXTUREACCESS_STREAMING, video.Width*presentScale, video.Height*presentScale)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("host: create texture: %w", err)
	}

	spec := sdl.AudioSpec{
		Freq:     audio.SampleRate,
		Format:   sdl.AUDIO_F32,
		Channels: 1,
		Samples:  audioBufferSamples,
	}
	audioDev, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		texture.Destroy()
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("host: open audio device: %w", err)
	}
	sdl.PauseAudioDevice(audioDev, false)

	capture, err := os.Create(CapturePath)
	if err != nil {
		sdl.CloseAudioDevice(audioDev)
		texture.Destroy()
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("host: open capture file: %w", err)
	}

	h := &Host{
		window:   window,
		renderer: renderer,
		texture:  texture,
		scale:    scale,
		audioDev: audioDev,
		synth:    synth,
		capture:  capture,
		stopFill: make(chan struct{}),
		system:   input.NewSystem(),
	}

	go h.audioFillLoop()

	return h, nil
}

// audioFillLoop periodically pulls a buffer from the synth and both
// queues it to the device and tees it to the raw-PCM capture file. It
// runs independently of the emulator thread, standing in for a hardware
// audio-callback context.
func (h *Host) audioFillLoop() {
	buf := make([]float32, audioBufferSamples)
	for {
		select {
		case <-h.stopFill:
			return
		default:
		}

		if sdl.GetQueuedAudioSize(h.audioDev) > uint32(audioBufferSamples*4*2) {
			sdl.Delay(1)
			continue
		}

		h.synth.Fill(buf)
		h.writeCapture(buf)

		bytes := make([]byte, len(buf)*4)
		for i, s := range buf {
			b := (*[4]byte)(unsafe.Pointer(&s))
			copy(bytes[i*4:], b[:])
		}
		_ = sdl.QueueAudio(h.audioDev, bytes)
	}
}

// writeCapture appends samples to the side file as raw little-endian
// 16-bit PCM, scaled from the synth's [-1, 1] floats.
func (h *Host) writeCapture(buf []float32) {
	if h.capture == nil {
		return
	}
	out := make([]byte, len(buf)*2)
	for i, s := range buf {
		v := int16(s * 32767)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	_, _ = h.capture.Write(out)
}

// Present implements emulator.Presenter: clears with the background
// color, then blits each non-zero framebuffer pixel as a 2x2 block in
// its palette color into a texture sized to match, which the renderer
// then stretches into the window's display scale.
func (h *Host) Present(fb *video.Framebuffer, pal *video.Palette, bg uint8) {
	texW := video.Width * presentScale
	texH := video.Height * presentScale
	pixels := make([]byte, texW*texH*3)

	br, bgc, bb := pal.RGB(bg)
	for i := 0; i < texW*texH; i++ {
		pixels[i*3] = br
		pixels[i*3+1] = bgc
		pixels[i*3+2] = bb
	}

	for y := 0; y < video.Height; y++ {
		for x := 0; x < video.Width; x++ {
			idx := fb[y*video.Width+x]
			if idx == 0 {
				continue
			}
			r, g, b := pal.RGB(idx)
			for dy := 0; dy < presentScale; dy++ {
				rowOffset := (y*presentScale+dy)*texW + x*presentScale
				for dx := 0; dx < presentScale; dx++ {
					offset := (rowOffset + dx) * 3
					pixels[offset] = r
					pixels[offset+1] = g
					pixels[offset+2] = b
				}
			}
		}
	}

	pitch := texW * 3
	_ = h.texture.Update(nil, unsafe.Pointer(&pixels[0]), pitch)

	h.renderer.Clear()
	_ = h.renderer.Copy(h.texture, nil, nil)
	h.renderer.Present()
}

// Poll implements emulator.InputSource: drains pending SDL events,
// samples the current keyboard state into the two controller bitmasks
// per the default key binding, and reports whether the window was
// closed or Escape was pressed.
func (h *Host) Poll() (c0, c1 uint8, quit bool) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			h.system.RequestQuit()
		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Keysym.Sym == sdl.K_ESCAPE {
				h.system.RequestQuit()
			}
		}
	}

	keys := sdl.GetKeyboardState()
	h.system.SetButton(input.ButtonUp, keys[sdl.SCANCODE_W] != 0)
	h.system.SetButton(input.ButtonDown, keys[sdl.SCANCODE_S] != 0)
	h.system.SetButton(input.ButtonLeft, keys[sdl.SCANCODE_A] != 0)
	h.system.SetButton(input.ButtonRight, keys[sdl.SCANCODE_D] != 0)
	h.system.SetButton(input.ButtonSelect, keys[sdl.SCANCODE_G] != 0)
	h.system.SetButton(input.ButtonStart, keys[sdl.SCANCODE_H] != 0)
	h.system.SetButton(input.ButtonA, keys[sdl.SCANCODE_J] != 0)
	h.system.SetButton(input.ButtonB, keys[sdl.SCANCODE_K] != 0)

	return h.system.Controller0Buttons, h.system.Controller1Buttons, h.system.QuitRequested()
}

// Close stops the audio fill goroutine and tears down SDL resources, per
// the requirement that in-flight callbacks finish before the
// synthesizer state is torn down.
func (h *Host) Close() {
	close(h.stopFill)
	sdl.Delay(5)

	if h.capture != nil {
		h.capture.Close()
	}
	if h.audioDev != 0 {
		sdl.CloseAudioDevice(h.audioDev)
	}
	if h.texture != nil {
		h.texture.Destroy()
	}
	if h.renderer != nil {
		h.renderer.Destroy()
	}
	if h.window != nil {
		h.window.Destroy()
	}
	sdl.Quit()
}
