package harness

import "math"

// Interval is a point estimate with a two-sided confidence interval.
type Interval struct {
	Mean float64
	Low  float64
	High float64
	N    int
}

// Accumulator keeps a running mean and variance (Welford).
type Accumulator struct {
	n    int
	mean float64
	m2   float64
}

// Add folds one observation in.
func (a *Accumulator) Add(x float64) {
	a.n++
	d := x - a.mean
	a.mean += d / float64(a.n)
	a.m2 += d * (x - a.mean)
}

// N returns the number of observations.
func (a *Accumulator) N() int { return a.n }

// Mean returns the sample mean, 0 when empty.
func (a *Accumulator) Mean() float64 { return a.mean }

// Variance returns the unbiased sample variance.
func (a *Accumulator) Variance() float64 {
	if a.n < 2 {
		return 0
	}
	return a.m2 / float64(a.n-1)
}

// Interval returns mean ± z standard errors.
func (a *Accumulator) Interval(z float64) Interval {
	if a.n == 0 {
		return Interval{}
	}
	half := z * math.Sqrt(a.Variance()/float64(a.n))
	return Interval{Mean: a.mean, Low: a.mean - half, High: a.mean + half, N: a.n}
}

// ZScore returns the two-sided normal quantile for a confidence level,
// e.g. 1.96 for 0.95.
func ZScore(confidence float64) float64 {
	return math.Sqrt2 * math.Erfinv(confidence)
}

// Wilson returns the Wilson score interval of a proportion.
func Wilson(successes, n int, z float64) Interval {
	if n == 0 {
		return Interval{}
	}
	fn := float64(n)
	p := float64(successes) / fn
	z2 := z * z
	denom := 1 + z2/fn
	center := (p + z2/(2*fn)) / denom
	half := z * math.Sqrt(p*(1-p)/fn+z2/(4*fn*fn)) / denom
	return Interval{
		Mean: p,
		Low:  math.Max(0, center-half),
		High: math.Min(1, center+half),
		N:    n,
	}
}
