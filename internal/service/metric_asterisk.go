package service

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// asteriskScore computes the A0 asterisk-equations metric: four Z terms built
// from the spread of the peak cloud along the two diagonals and the two
// medians of the unit square, combined geometrically. 1 is a fully dispersed
// cloud, 0 a fully clustered or fully correlated one.
func asteriskScore(x, y []float64, _ MetricConfig) (float64, error) {
	n := len(x)
	diffMinus := make([]float64, n)
	diffPlus := make([]float64, n)
	devX := make([]float64, n)
	devY := make([]float64, n)
	for i := range x {
		diffMinus[i] = x[i] - y[i]
		diffPlus[i] = y[i] - (1 - x[i])
		devX[i] = x[i] - 0.5
		devY[i] = y[i] - 0.5
	}

	sigmaMinus := stat.StdDev(diffMinus, nil)
	sigmaPlus := stat.StdDev(diffPlus, nil)
	sigma1 := stat.StdDev(devX, nil)
	sigma2 := stat.StdDev(devY, nil)

	zMinus := math.Abs(1 - 2.5*math.Abs(sigmaMinus-0.4))
	zPlus := math.Abs(1 - 2.5*math.Abs(sigmaPlus-0.4))
	z1 := 1 - math.Abs(2.5*sigma1*math.Sqrt2-1)
	z2 := 1 - math.Abs(2.5*sigma2*math.Sqrt2-1)

	product := zMinus * zPlus * z1 * z2
	if product < 0 {
		// A Z term past its linear range means the cloud is extremely
		// clustered along one axis; the metric bottoms out.
		return 0, nil
	}
	return math.Sqrt(product), nil
}
