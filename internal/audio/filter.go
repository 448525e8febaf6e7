package audio

// DefaultDCPole suits sample rates around 44.1kHz
const DefaultDCPole = 0.995

// DCBlocker is a one-pole high-pass filter. The APU mixer output sits in
// [0, 1); this recentres it around zero.
type DCBlocker struct {
	pole    float64
	prevIn  float64
	prevOut float64
}

// NewDCBlocker creates a filter with the given pole. Values outside (0, 1)
// select DefaultDCPole.
func NewDCBlocker(pole float64) *DCBlocker {
	if pole <= 0 || pole >= 1 {
		pole = DefaultDCPole
	}
	return &DCBlocker{pole: pole}
}

// Process filters one sample
func (f *DCBlocker) Process(x float64) float64 {
	y := x - f.prevIn + f.pole*f.prevOut
	f.prevIn = x
	f.prevOut = y
	return y
}

// Reset clears the filter history
func (f *DCBlocker) Reset() {
	f.prevIn = 0
	f.prevOut = 0
}
