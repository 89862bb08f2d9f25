package audio

// attackTableMs and decayTableMs are the 16 fixed envelope-stage
// durations selectable by index. Release reuses
// decayTableMs.
var attackTableMs = [16]float64{
	2, 8, 16, 24, 38, 56, 68, 80, 100, 250, 500, 800, 1000, 3000, 5000, 8000,
}

var decayTableMs = [16]float64{
	6, 24, 48, 72, 114, 168, 204, 240, 300, 750, 1500, 2400, 3000, 9000, 15000, 24000,
}

// envelopeMultiplier computes the ADSR amplitude multiplier at sample
// progress p, per the piecewise attack/decay/sustain/release formula.
func (s *Synth) envelopeMultiplier(p int) float64 {
	peak := peakVolume(s.volumeIdx)
	sustain := sustainLevel(s.sustainIdx)

	as := s.attackSamples
	ds := s.decaySamples
	ss := s.sustainSamples
	rs := s.releaseSamples

	switch {
	case p <= as:
		if as == 0 {
			return peak
		}
		return peak * float64(p) / float64(as)
	case p <= as+ds:
		if ds == 0 {
			return sustain
		}
		return sustain + (peak-sustain)*(1-float64(p-as)/float64(ds))
	case p <= as+ds+ss:
		return sustain
	case p <= as+ds+ss+rs:
		if rs == 0 {
			return 0
		}
		return sustain * (1 - float64(p-(as+ds+ss))/float64(rs))
	default:
		return 0
	}
}

// peakVolume converts a 0-15 volume index to the peak amplitude
// fraction of unit.
func peakVolume(v uint8) float64 {
	return 1.0 / (2.0 * float64(16-int(v)))
}

// sustainLevel converts a 0-15 sustain index to the sustain amplitude
// fraction of unit.
func sustainLevel(s uint8) float64 {
	return 1.0 / (2.0 * float64(16-int(s)))
}
