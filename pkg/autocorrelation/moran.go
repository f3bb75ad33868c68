// Package autocorrelation quantifies whether nearby samples carry similar
// values. Moran's I over a binary neighbor relation returns roughly +1 when
// neighbors agree, 0 for spatial randomness and negative values when
// neighbors disagree (checkerboard patterns).
package autocorrelation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/stat"

	"fieldmap/internal/models"
)

// Result holds the Moran's I statistic together with the per-point terms
// it was aggregated from, for scatter reporting by callers.
type Result struct {
	// I is the Moran's I statistic, approximately in [-1, 1]
	I float64

	// Standardized holds the zero-mean unit-variance sample values
	Standardized []float64

	// SpatialLag holds, per point, the weighted average of its neighbors'
	// standardized values; 0 for points without neighbors
	SpatialLag []float64
}

// MoransI computes spatial autocorrelation over the sample points. Point j
// is a neighbor of point i iff 0 < distance(i,j) <= threshold; weights are
// row-normalized so each point's neighbor contributions sum to 1. The
// computation is pure and cheap enough to rerun per threshold, so nothing
// is cached.
func MoransI(points []models.SamplePoint, threshold float64) (*Result, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: distance threshold must be positive, got %g",
			models.ErrConfiguration, threshold)
	}

	n := len(points)
	if n == 0 {
		return nil, fmt.Errorf("%w: no sample points", models.ErrInsufficientData)
	}
	values := make([]float64, n)
	for i, p := range points {
		values[i] = p.Value
	}

	mean := stat.Mean(values, nil)
	std := populationStd(values, mean)
	if std == 0 {
		return nil, fmt.Errorf("%w: sample values have zero variance",
			models.ErrDegenerateInput)
	}

	standardized := make([]float64, n)
	for i, v := range values {
		standardized[i] = (v - mean) / std
	}

	tree := buildIndex(points)

	lag := make([]float64, n)
	for i, p := range points {
		// Neighbor distances are squared in the index, so the keeper
		// bound is the squared threshold.
		keeper := kdtree.NewDistKeeper(threshold * threshold)
		tree.NearestSet(keeper, indexedPoint{x: p.X, y: p.Y, index: i})

		sum := 0.0
		count := 0
		for _, c := range keeper.Heap {
			if c.Comparable == nil {
				continue // keeper sentinel
			}
			if c.Dist <= 0 {
				continue // self or coincident point, never a neighbor
			}
			sum += standardized[c.Comparable.(indexedPoint).index]
			count++
		}
		if count > 0 {
			lag[i] = sum / float64(count)
		}
	}

	moran := 0.0
	for j := range standardized {
		moran += standardized[j] * lag[j]
	}
	moran /= float64(n)

	return &Result{I: moran, Standardized: standardized, SpatialLag: lag}, nil
}

// populationStd is the n-denominator standard deviation. Standardizing with
// the sample (n-1) estimator would shrink the statistic by (n-1)/n.
func populationStd(values []float64, mean float64) float64 {
	sum := 0.0
	for _, v := range values {
		dev := v - mean
		sum += dev * dev
	}
	return math.Sqrt(sum / float64(len(values)))
}

func buildIndex(points []models.SamplePoint) *kdtree.Tree {
	indexed := make(indexedPoints, len(points))
	for i, p := range points {
		indexed[i] = indexedPoint{x: p.X, y: p.Y, index: i}
	}
	return kdtree.New(indexed, false)
}

// indexedPoint is a 2D sample position that keeps its slice index through
// kd-tree queries.
type indexedPoint struct {
	x, y  float64
	index int
}

// Compare implements the kdtree.Comparable interface.
func (p indexedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(indexedPoint)
	switch d {
	case 0:
		return p.x - q.x
	case 1:
		return p.y - q.y
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions indexed.
func (p indexedPoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance between two points.
func (p indexedPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(indexedPoint)
	dx := p.x - q.x
	dy := p.y - q.y
	return dx*dx + dy*dy
}

// indexedPoints satisfies kdtree.Interface.
type indexedPoints []indexedPoint

func (p indexedPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p indexedPoints) Len() int                              { return len(p) }
func (p indexedPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements the kdtree.Interface method.
func (p indexedPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(pointPlane{indexedPoints: p, Dim: d},
		kdtree.MedianOfRandoms(pointPlane{indexedPoints: p, Dim: d}, 100))
}

// pointPlane implements sort.Interface and kdtree.SortSlicer for indexedPoints.
type pointPlane struct {
	indexedPoints
	kdtree.Dim
}

func (p pointPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.indexedPoints[i].x < p.indexedPoints[j].x
	case 1:
		return p.indexedPoints[i].y < p.indexedPoints[j].y
	default:
		panic("illegal dimension")
	}
}

func (p pointPlane) Slice(start, end int) kdtree.SortSlicer {
	return pointPlane{indexedPoints: p.indexedPoints[start:end], Dim: p.Dim}
}

func (p pointPlane) Swap(i, j int) {
	p.indexedPoints[i], p.indexedPoints[j] = p.indexedPoints[j], p.indexedPoints[i]
}
