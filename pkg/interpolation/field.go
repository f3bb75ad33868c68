// Package interpolation estimates a continuous scalar field over a bounded
// 2D area from scattered point samples. Three methods share one contract:
// triangulation-based linear and cubic surfaces that are undefined outside
// the convex hull of the samples, and a globally supported multiquadric
// radial basis function surface defined on the whole grid.
package interpolation

import (
	"fmt"
	"math"

	"fieldmap/internal/models"
	"fieldmap/pkg/grid"
)

// Method selects the interpolation strategy. The set is closed: every
// method shares the samples+grid -> field contract.
type Method int

const (
	Linear Method = iota
	Cubic
	RBF
)

// String returns the configuration name of the method.
func (m Method) String() string {
	switch m {
	case Linear:
		return "linear"
	case Cubic:
		return "cubic"
	case RBF:
		return "rbf"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod maps a configuration string to a Method.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "linear":
		return Linear, nil
	case "cubic":
		return Cubic, nil
	case "rbf":
		return RBF, nil
	default:
		return 0, fmt.Errorf("%w: unknown interpolation method %q",
			models.ErrConfiguration, name)
	}
}

// DefaultRBFSmoothing relaxes the exact-fit constraint of the RBF surface
// just enough to avoid overfitting individual sensor readings.
const DefaultRBFSmoothing = 0.1

// Params holds the parameters for one interpolation run.
type Params struct {
	// Method is the interpolation strategy to fit
	Method Method

	// RBFSmoothing is the smoothing factor of the RBF surface; ignored by
	// the triangulation-based methods
	RBFSmoothing float64
}

// DefaultParams returns the parameters used when only a method is chosen.
func DefaultParams(m Method) Params {
	return Params{Method: m, RBFSmoothing: DefaultRBFSmoothing}
}

// MinSamples is the smallest number of valid samples any method accepts.
const MinSamples = 3

// Field is a dense 2D array of estimated values aligned with the vertices
// of the grid it was evaluated on, in row-major order (y rows of x values).
// Cells outside the reach of the fitted surface hold NaN; callers must
// check Defined before aggregating.
type Field struct {
	// Values holds NumY*NumX estimates, Values[iy*NumX+ix]
	Values []float64

	// NumX and NumY are the grid vertex counts per axis
	NumX, NumY int
}

// At returns the estimate at grid vertex (ix, iy).
func (f *Field) At(ix, iy int) float64 {
	return f.Values[iy*f.NumX+ix]
}

// Defined reports whether grid vertex (ix, iy) holds a real estimate.
func (f *Field) Defined(ix, iy int) bool {
	return !math.IsNaN(f.At(ix, iy))
}

// DefinedValues returns the defined cell values in row-major order.
func (f *Field) DefinedValues() []float64 {
	out := make([]float64, 0, len(f.Values))
	for _, v := range f.Values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Estimator is a surface fitted once to a sample set and evaluated at
// arbitrary positions. Building the estimator separately from the grid
// evaluation lets leave-one-out scoring refit and probe single positions
// without paying for a full grid pass.
type Estimator struct {
	tri *triEstimator
	rbf *rbfEstimator
}

// NewEstimator validates the sample set and fits the surface for the given
// parameters. Missing values are excluded before fitting; at least
// MinSamples valid samples must remain. Duplicate positions with
// conflicting values fail with ErrAmbiguousSample.
func NewEstimator(samples []models.SamplePoint, params Params) (*Estimator, error) {
	valid := models.ValidSamples(samples)
	valid, err := models.DedupSamples(valid)
	if err != nil {
		return nil, fmt.Errorf("fitting %s surface: %w", params.Method, err)
	}
	if len(valid) < MinSamples {
		return nil, fmt.Errorf("%w: need at least %d valid samples, got %d",
			models.ErrInsufficientData, MinSamples, len(valid))
	}

	e := &Estimator{}
	switch params.Method {
	case Linear, Cubic:
		e.tri = newTriEstimator(valid, params.Method == Cubic)
	case RBF:
		e.rbf, err = newRBFEstimator(valid, params.RBFSmoothing)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown interpolation method %v",
			models.ErrConfiguration, params.Method)
	}
	return e, nil
}

// At evaluates the fitted surface at (x, y). Positions outside the reach of
// a triangulation-based surface return NaN.
func (e *Estimator) At(x, y float64) float64 {
	if e.rbf != nil {
		return e.rbf.at(x, y)
	}
	return e.tri.at(x, y)
}

// Interpolate fits the surface described by params to the samples and
// evaluates it at every vertex of g. Neither input is mutated; identical
// inputs produce identical fields.
func Interpolate(samples []models.SamplePoint, g *grid.Grid, params Params) (*Field, error) {
	est, err := NewEstimator(samples, params)
	if err != nil {
		return nil, err
	}

	field := &Field{
		Values: make([]float64, g.NumVertices()),
		NumX:   g.NumX(),
		NumY:   g.NumY(),
	}
	for iy, y := range g.Ys {
		for ix, x := range g.Xs {
			field.Values[iy*field.NumX+ix] = est.At(x, y)
		}
	}
	return field, nil
}
