package interpolation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"fieldmap/internal/models"
)

// rbfEstimator evaluates a multiquadric radial-basis-function surface. The
// surface is a weighted sum of globally supported kernels centered at the
// samples, so it is defined everywhere on the grid, including outside the
// sample hull, trading extrapolation risk for full coverage.
type rbfEstimator struct {
	xs, ys  []float64
	weights []float64

	// epsilon scales the kernel; set to the mean pairwise distance
	// between sample positions
	epsilon float64
}

func newRBFEstimator(samples []models.SamplePoint, smoothing float64) (*rbfEstimator, error) {
	n := len(samples)
	e := &rbfEstimator{
		xs: make([]float64, n),
		ys: make([]float64, n),
	}
	target := make([]float64, n)
	for i, s := range samples {
		e.xs[i] = s.X
		e.ys[i] = s.Y
		target[i] = s.Value
	}
	e.epsilon = meanPairwiseDistance(e.xs, e.ys)

	// Kernel matrix with the smoothing factor on the diagonal. A zero
	// smoothing reproduces the samples exactly; a small positive value
	// relaxes the fit.
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := e.kernel(distance(e.xs[i], e.ys[i], e.xs[j], e.ys[j]))
			if i == j {
				v -= smoothing
			}
			a.Set(i, j, v)
		}
	}

	weights, err := solveQR(a, target)
	if err != nil {
		return nil, fmt.Errorf("fitting rbf surface: %w", err)
	}
	e.weights = weights
	return e, nil
}

// at evaluates the fitted surface; defined for every position.
func (e *rbfEstimator) at(x, y float64) float64 {
	sum := 0.0
	for i, w := range e.weights {
		sum += w * e.kernel(distance(x, y, e.xs[i], e.ys[i]))
	}
	return sum
}

// kernel is the multiquadric basis function sqrt((r/epsilon)^2 + 1).
func (e *rbfEstimator) kernel(r float64) float64 {
	s := r / e.epsilon
	return math.Sqrt(s*s + 1)
}

func distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// meanPairwiseDistance returns the average distance between distinct sample
// positions, the conventional kernel scale for scattered data.
func meanPairwiseDistance(xs, ys []float64) float64 {
	sum := 0.0
	count := 0
	for i := range xs {
		for j := i + 1; j < len(xs); j++ {
			sum += distance(xs[i], ys[i], xs[j], ys[j])
			count++
		}
	}
	if count == 0 || sum == 0 {
		return 1
	}
	return sum / float64(count)
}

// solveQR solves a*x = b by QR decomposition, retrying with diagonal
// regularization when the kernel matrix is numerically singular.
func solveQR(a *mat.Dense, b []float64) ([]float64, error) {
	n := len(b)
	rhs := mat.NewVecDense(n, b)
	solution := mat.NewDense(n, 1, nil)

	var qr mat.QR
	qr.Factorize(a)
	if err := qr.SolveTo(solution, false, rhs); err != nil {
		// Strengthen the diagonal and retry before giving up.
		for i := 0; i < n; i++ {
			a.Set(i, i, a.At(i, i)+1e-6)
		}
		qr.Factorize(a)
		if err := qr.SolveTo(solution, false, rhs); err != nil {
			return nil, fmt.Errorf("kernel system is singular: %w", err)
		}
	}

	weights := make([]float64, n)
	for i := range weights {
		weights[i] = solution.At(i, 0)
	}
	return weights, nil
}
