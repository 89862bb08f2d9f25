// Package audio implements Chip16's four-waveform ADSR tone generator: a
// mutex-protected parameter block mutated by sound opcodes and pulled,
// one sample at a time, by the audio callback thread.
package audio

import (
	"math/rand"
	"sync"
	"time"
)

// Waveform names one of the four generator kinds.
type Waveform int

const (
	Square Waveform = iota
	Sawtooth
	Triangle
	Noise
)

// SampleRate is the fixed output sample rate.
const SampleRate = 48000

// Synth holds the synthesizer's entire mutable state behind one mutex.
// The emulator thread writes new parameters from sound opcodes; the
// audio callback reads/advances state once per generated sample.
type Synth struct {
	mu sync.Mutex

	active         bool
	bypassEnvelope bool // true while playing a fixed SND1/2/3 tone
	waveform       Waveform

	frequency float64
	phase     float64 // [0, 1)

	attackIdx, decayIdx, volumeIdx, sustainIdx uint8

	attackSamples, decaySamples, sustainSamples, releaseSamples int
	sampleProgress                                              int

	startTime     time.Time
	totalDuration time.Duration

	triAccum, triPrevAccum, triDCOut float64
	triInitialized                   bool

	rng *rand.Rand
}

// New returns an idle synthesizer. The raw-PCM debug tee ("cpu_audio_
// output") is the host layer's responsibility: it owns the buffer that
// Fill writes into and tees it to the file after Fill returns, so the
// capture write never happens while the synth's lock is held.
func New() *Synth {
	return &Synth{
		rng: rand.New(rand.NewSource(1)),
	}
}

// SetADSR configures the ADSR indices and waveform for the next custom
// tone (SNG opcode). It does not itself start playback.
func (s *Synth) SetADSR(attackIdx, decayIdx, volumeIdx, sustainIdx uint8, waveform Waveform) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attackIdx = attackIdx & 0xF
	s.decayIdx = decayIdx & 0xF
	s.volumeIdx = volumeIdx & 0xF
	s.sustainIdx = sustainIdx & 0xF
	if waveform != s.waveform {
		s.triInitialized = false
	}
	s.waveform = waveform
}

// Stop silences the synthesizer immediately (SND0).
func (s *Synth) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

// PlayFixed starts a fixed-frequency Square tone with the envelope
// bypassed and a constant unit volume (SND1/SND2/SND3).
func (s *Synth) PlayFixed(freqHz float64, durationMs uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.waveform = Square
	s.bypassEnvelope = true
	s.frequency = freqHz
	s.phase = 0
	s.sampleProgress = 0
	s.active = true
	s.startTime = time.Now()
	s.totalDuration = time.Duration(durationMs) * time.Millisecond
}

// PlayCustom starts a tone at freqHz using the currently configured ADSR
// and waveform (SNP).
func (s *Synth) PlayCustom(freqHz float64, durationMs uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bypassEnvelope = false
	s.frequency = freqHz
	s.phase = 0
	s.sampleProgress = 0
	s.computeEnvelopeSamples(durationMs)

	if s.waveform == Triangle && !s.triInitialized {
		s.prerunTriangle(freqHz)
	}

	s.active = true
	s.startTime = time.Now()
	envSamples := s.attackSamples + s.decaySamples + s.sustainSamples + s.releaseSamples
	s.totalDuration = time.Duration(envSamples) * time.Second / SampleRate
}

// PollEnvelopeCompletion stops the synthesizer if more wall-clock time
// has elapsed since it started than its total envelope duration. The
// frame loop calls this once per frame boundary.
func (s *Synth) PollEnvelopeCompletion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active && time.Since(s.startTime) > s.totalDuration {
		s.active = false
	}
}

// computeEnvelopeSamples derives attack/decay/sustain/release sample
// counts from the ADSR indices and the requested duration. Release
// reuses decay's duration, per the shared table.
func (s *Synth) computeEnvelopeSamples(durationMs uint16) {
	attackMs := attackTableMs[s.attackIdx]
	decayMs := decayTableMs[s.decayIdx]
	releaseMs := decayTableMs[s.decayIdx]
	sustainMs := float64(durationMs) - attackMs - decayMs
	if sustainMs < 0 {
		sustainMs = 0
	}

	s.attackSamples = msToSamples(attackMs)
	s.decaySamples = msToSamples(decayMs)
	s.sustainSamples = msToSamples(sustainMs)
	s.releaseSamples = msToSamples(releaseMs)
}

func msToSamples(ms float64) int {
	return int(ms * SampleRate / 1000.0)
}

// GenerateSample produces the next sample, advancing all internal state
// by one sample period. Returns 0 when idle.
func (s *Synth) GenerateSample() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return 0
	}

	dt := s.frequency / SampleRate
	y := s.rawWaveformSample(dt)

	var multiplier float64
	if s.bypassEnvelope {
		multiplier = 1.0
	} else {
		multiplier = s.envelopeMultiplier(s.sampleProgress)
	}

	s.phase += dt
	if s.phase >= 1.0 {
		s.phase -= 1.0
	}
	s.sampleProgress++

	return float32(y * multiplier)
}

// Fill generates len(buf) samples into buf, a convenience for the audio
// backend's buffer-fill callback.
func (s *Synth) Fill(buf []float32) {
	for i := range buf {
		buf[i] = s.GenerateSample()
	}
}
