// Package grid builds the regular evaluation mesh that interpolated fields
// are sampled on. A grid is a pure function of (width, height, resolution)
// and is immutable once built, so one grid can be shared across channels
// and interpolation calls for a given area configuration.
package grid

import (
	"fmt"
	"math"

	"fieldmap/internal/models"
)

// Grid is an ordered 2D mesh of evaluation coordinates spanning
// [0, width] x [0, height] at a uniform step.
type Grid struct {
	// Width and Height are the physical extents of the area
	Width, Height float64

	// Resolution is the spacing between adjacent vertices on each axis
	Resolution float64

	// Xs holds the column coordinates, Xs[0] == 0 and Xs[len-1] >= Width
	Xs []float64

	// Ys holds the row coordinates, Ys[0] == 0 and Ys[len-1] >= Height
	Ys []float64
}

// Build constructs the evaluation mesh for the given area. The vertex count
// per axis is ceil(extent/resolution)+1 so the far edge is always covered
// even when the extent is not an exact multiple of the resolution.
func Build(width, height, resolution float64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: area dimensions must be positive, got %gx%g",
			models.ErrConfiguration, width, height)
	}
	if resolution <= 0 {
		return nil, fmt.Errorf("%w: resolution must be positive, got %g",
			models.ErrConfiguration, resolution)
	}
	if resolution > math.Min(width, height) {
		return nil, fmt.Errorf("%w: resolution %g exceeds smallest area dimension %g",
			models.ErrConfiguration, resolution, math.Min(width, height))
	}

	g := &Grid{
		Width:      width,
		Height:     height,
		Resolution: resolution,
		Xs:         axis(width, resolution),
		Ys:         axis(height, resolution),
	}
	return g, nil
}

// axis returns the coordinates 0, step, 2*step, ... with ceil(extent/step)+1
// entries, so the final coordinate is the smallest multiple of step >= extent.
func axis(extent, step float64) []float64 {
	n := int(math.Ceil(extent/step)) + 1
	coords := make([]float64, n)
	for i := range coords {
		coords[i] = float64(i) * step
	}
	return coords
}

// NumX returns the number of vertices along the x axis.
func (g *Grid) NumX() int { return len(g.Xs) }

// NumY returns the number of vertices along the y axis.
func (g *Grid) NumY() int { return len(g.Ys) }

// NumVertices returns the total vertex count of the mesh.
func (g *Grid) NumVertices() int { return len(g.Xs) * len(g.Ys) }
