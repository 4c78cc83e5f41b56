package service

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// percentFit measures how tightly the peak cloud hugs its own quadratic
// trend, in both orientations. Each cloud is fitted with a least-squares
// parabola, points are split above and below the curve, and the average and
// spread of their closest-approach distances are folded into [0,1] deltas.
// The metric is the absolute mean of the four deltas.
func percentFit(x, y []float64, _ MetricConfig) (float64, error) {
	curveXY, err := fitQuadratic(x, y)
	if err != nil {
		return 0, err
	}
	curveYX, err := fitQuadratic(y, x)
	if err != nil {
		return 0, err
	}

	aboveXY, belowXY := splitByCurve(x, y, curveXY)
	aboveYX, belowYX := splitByCurve(y, x, curveYX)

	xy1Avg, xy1SD := distanceStats(belowXY, curveXY)
	xy2Avg, xy2SD := distanceStats(aboveXY, curveXY)
	yx1Avg, yx1SD := distanceStats(belowYX, curveYX)
	yx2Avg, yx2SD := distanceStats(aboveYX, curveYX)

	deltaXYAvg := (fold(xy1Avg, 4) + fold(xy2Avg, 4)) / 2
	deltaXYSD := (fold(xy1SD, 7) + fold(xy2SD, 7)) / 2
	deltaYXAvg := (fold(yx1Avg, 4) + fold(yx2Avg, 4)) / 2
	deltaYXSD := (fold(yx1SD, 7) + fold(yx2SD, 7)) / 2

	return math.Abs((deltaXYAvg + deltaXYSD + deltaYXAvg + deltaYXSD) / 4), nil
}

// fold maps a distance statistic into [0,1], peaking at 1/scale: small values
// mean the points sit on the curve, large ones that they ignore it entirely.
func fold(v, scale float64) float64 {
	return 1 - math.Abs(1-v*scale)
}

// fitQuadratic least-squares fits v = c0 + c1*u + c2*u^2.
func fitQuadratic(u, v []float64) (func(float64) float64, error) {
	n := len(u)
	if n < 3 {
		return nil, &InsufficientDataError{Metric: MetricPercentFit, Needed: 3, Got: n}
	}
	a := mat.NewDense(n, 3, nil)
	b := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		a.Set(i, 0, 1)
		a.Set(i, 1, u[i])
		a.Set(i, 2, u[i]*u[i])
		b.Set(i, 0, v[i])
	}
	var coef mat.Dense
	if err := coef.Solve(a, b); err != nil {
		return nil, &InsufficientDataError{Metric: MetricPercentFit, Needed: 3, Got: n}
	}
	c0, c1, c2 := coef.At(0, 0), coef.At(1, 0), coef.At(2, 0)
	return func(t float64) float64 { return c0 + c1*t + c2*t*t }, nil
}

func splitByCurve(u, v []float64, curve func(float64) float64) (above, below []point) {
	for i := range u {
		cv := curve(u[i])
		switch {
		case v[i] > cv:
			above = append(above, point{x: u[i], y: v[i]})
		case v[i] < cv:
			below = append(below, point{x: u[i], y: v[i]})
		}
	}
	return above, below
}

// distanceStats returns the mean and sample standard deviation of each
// point's closest-approach distance to the curve. Empty groups contribute 0,
// matching a cloud that sits entirely on one side.
func distanceStats(pts []point, curve func(float64) float64) (avg, sd float64) {
	if len(pts) == 0 {
		return 0, 0
	}
	d := make([]float64, len(pts))
	for i, p := range pts {
		d[i] = curveDistance(p, curve)
	}
	avg = stat.Mean(d, nil)
	if len(d) > 1 {
		sd = stat.StdDev(d, nil)
	}
	return avg, sd
}

// curveDistance finds the Euclidean distance from a point to the curve over
// [0,1]: a coarse 50-point scan followed by golden-section refinement around
// the best candidate.
func curveDistance(p point, curve func(float64) float64) float64 {
	const coarsePoints = 50
	const fineRange = 0.01

	sq := func(t float64) float64 {
		dy := curve(t) - p.y
		dx := t - p.x
		return dx*dx + dy*dy
	}

	bestT, bestSq := 0.0, math.Inf(1)
	for i := 0; i < coarsePoints; i++ {
		t := float64(i) / float64(coarsePoints-1)
		if s := sq(t); s < bestSq {
			bestT, bestSq = t, s
		}
	}

	lo := math.Max(0, bestT-fineRange)
	hi := math.Min(1, bestT+fineRange)
	t := goldenSection(sq, lo, hi)
	return math.Sqrt(math.Min(bestSq, sq(t)))
}

// goldenSection minimizes a unimodal function on [lo, hi].
func goldenSection(f func(float64) float64, lo, hi float64) float64 {
	const invPhi = 0.6180339887498949
	const tol = 1e-6
	a, b := lo, hi
	c := b - invPhi*(b-a)
	d := a + invPhi*(b-a)
	fc, fd := f(c), f(d)
	for b-a > tol {
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - invPhi*(b-a)
			fc = f(c)
		} else {
			a, c, fc = c, d, fd
			d = a + invPhi*(b-a)
			fd = f(d)
		}
	}
	return (a + b) / 2
}
