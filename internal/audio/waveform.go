package audio

import "math"

// polyBLEP returns the band-limited step correction for a discontinuity
// occurring at phase 0, given the current phase t and the phase
// increment dt.
func polyBLEP(t, dt float64) float64 {
	switch {
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	default:
		return 0
	}
}

// rawWaveformSample dispatches to the current waveform's per-sample
// generator at the synth's current phase, without applying the envelope.
func (s *Synth) rawWaveformSample(dt float64) float64 {
	switch s.waveform {
	case Square:
		return squareSample(s.phase, dt)
	case Sawtooth:
		return sawtoothSample(s.phase, dt)
	case Triangle:
		return s.triangleSample(dt)
	case Noise:
		return s.noiseSample()
	default:
		return 0
	}
}

// squareSample is a 50% duty-cycle square wave with PolyBLEP correction
// at both discontinuities (phase 0 rising, phase 0.5 falling).
func squareSample(phase, dt float64) float64 {
	var y float64
	if phase < 0.5 {
		y = 1
	} else {
		y = -1
	}
	y -= polyBLEP(phase, dt)
	y += polyBLEP(math.Mod(phase+0.5, 1.0), dt)
	return y
}

// sawtoothSample ramps linearly from -1 to 1, with PolyBLEP correction
// at its single discontinuity.
func sawtoothSample(phase, dt float64) float64 {
	y := 2*phase - 1
	y -= polyBLEP(phase, dt)
	return y
}

// dcBlockerTau sets how quickly the DC blocker's leaky integrator
// forgets, per a fixed time constant.
const dcBlockerTau = 0.0025

var dcBlockerR = math.Exp(-1.0 / (dcBlockerTau * SampleRate))

// triangleSample integrates the PolyBLEP square wave with a leaky
// integrator, then removes its DC offset.
func (s *Synth) triangleSample(dt float64) float64 {
	return s.stepTriangle(dt)
}

func (s *Synth) stepTriangle(dt float64) float64 {
	ySq := squareSample(s.phase, dt)
	periodSamples := 1.0 / dt

	s.triAccum += ySq * (4.0 / periodSamples)
	dcOut := s.triAccum - s.triPrevAccum + dcBlockerR*s.triDCOut
	final := dcOut * 0.8

	s.triPrevAccum = s.triAccum
	s.triDCOut = dcOut
	return final
}

// prerunTriangle runs the integrator for 10 full periods, discarding
// output, so the first audible sample isn't a DC transient.
func (s *Synth) prerunTriangle(freqHz float64) {
	s.triAccum, s.triPrevAccum, s.triDCOut = 0, 0, 0

	dt := freqHz / SampleRate
	if dt <= 0 {
		s.triInitialized = true
		return
	}
	periodSamples := int(1.0 / dt)
	phase := 0.0
	for i := 0; i < periodSamples*10; i++ {
		s.stepTriangleAtPhase(phase, dt)
		phase += dt
		if phase >= 1.0 {
			phase -= 1.0
		}
	}
	s.triInitialized = true
}

func (s *Synth) stepTriangleAtPhase(phase, dt float64) {
	saved := s.phase
	s.phase = phase
	s.stepTriangle(dt)
	s.phase = saved
}

// noiseSample returns a uniform random sample in [-1, 1].
func (s *Synth) noiseSample() float64 {
	return s.rng.Float64()*2 - 1
}
