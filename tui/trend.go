// Package tui provides a Bubble Tea view of a running batch and its report.
package tui

// sparks are the sparkline glyphs from lowest to highest.
var sparks = []rune("▁▂▃▄▅▆▇█")

// Trend is a fixed-size ring buffer of running win-rate samples.
type Trend struct {
	samples []float64
	head    int // index of the oldest sample once full
	n       int
}

// NewTrend creates a trend keeping the last size samples.
func NewTrend(size int) *Trend {
	return &Trend{samples: make([]float64, max(size, 1))}
}

// Push adds a sample in [0,1]. The oldest sample is overwritten when full.
func (t *Trend) Push(v float64) {
	size := len(t.samples)
	if t.n < size {
		t.samples[(t.head+t.n)%size] = v
		t.n++
		return
	}
	t.samples[t.head] = v
	t.head = (t.head + 1) % size
}

// Len returns the number of samples held.
func (t *Trend) Len() int {
	return t.n
}

// Values returns the samples from oldest to newest.
func (t *Trend) Values() []float64 {
	out := make([]float64, t.n)
	for i := range out {
		out[i] = t.samples[(t.head+i)%len(t.samples)]
	}
	return out
}

// Sparkline draws the samples scaled between their own minimum and maximum.
func (t *Trend) Sparkline() string {
	vals := t.Values()
	if len(vals) == 0 {
		return ""
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	out := make([]rune, len(vals))
	for i, v := range vals {
		level := 0
		if hi > lo {
			level = int((v - lo) / (hi - lo) * float64(len(sparks)-1))
		}
		out[i] = sparks[level]
	}
	return string(out)
}
