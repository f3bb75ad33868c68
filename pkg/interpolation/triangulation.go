package interpolation

import (
	"math"

	"github.com/fogleman/delaunay"

	"fieldmap/internal/models"
)

// barycentricTolerance absorbs floating-point noise when deciding whether a
// position sits inside a triangle, so hull edges and shared triangle edges
// are not dropped.
const barycentricTolerance = 1e-9

// triEstimator evaluates a surface over the Delaunay triangulation of the
// sample positions. Linear surfaces interpolate barycentrically inside each
// triangle; cubic surfaces evaluate a cubic Bezier patch per triangle built
// from least-squares vertex gradients. Positions outside the convex hull of
// the samples are undefined.
type triEstimator struct {
	tri    *delaunay.Triangulation
	values []float64
	cubic  bool

	// grads holds the estimated (d/dx, d/dy) per vertex for cubic
	// evaluation; NaN components mark vertices whose gradient could not
	// be estimated reliably
	grads [][2]float64

	// degenerate is set when no triangulation exists (e.g. collinear
	// samples); every evaluation is then undefined
	degenerate bool
}

func newTriEstimator(samples []models.SamplePoint, cubic bool) *triEstimator {
	points := make([]delaunay.Point, len(samples))
	values := make([]float64, len(samples))
	for i, s := range samples {
		points[i] = delaunay.Point{X: s.X, Y: s.Y}
		values[i] = s.Value
	}

	e := &triEstimator{values: values, cubic: cubic}

	tri, err := delaunay.Triangulate(points)
	if err != nil || len(tri.Triangles) == 0 {
		// Collinear or otherwise untriangulable samples degrade to an
		// all-undefined surface rather than failing the run.
		e.degenerate = true
		return e
	}
	e.tri = tri

	if cubic {
		e.grads = vertexGradients(tri, values)
	}
	return e
}

// at evaluates the surface at (x, y), returning NaN outside the hull or
// inside triangles whose cubic patch lacks a usable gradient.
func (e *triEstimator) at(x, y float64) float64 {
	if e.degenerate {
		return math.NaN()
	}

	ia, ib, ic, la, lb, lc, ok := e.locate(x, y)
	if !ok {
		return math.NaN()
	}

	if !e.cubic {
		return la*e.values[ia] + lb*e.values[ib] + lc*e.values[ic]
	}
	return e.cubicPatch(ia, ib, ic, la, lb, lc)
}

// locate finds the triangle containing (x, y) and returns its vertex
// indices with the barycentric coordinates of the position.
func (e *triEstimator) locate(x, y float64) (ia, ib, ic int, la, lb, lc float64, ok bool) {
	ts := e.tri.Triangles
	ps := e.tri.Points

	for t := 0; t < len(ts); t += 3 {
		ia, ib, ic = ts[t], ts[t+1], ts[t+2]
		a, b, c := ps[ia], ps[ib], ps[ic]

		det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
		if math.Abs(det) < barycentricTolerance {
			continue // sliver triangle
		}

		la = ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / det
		lb = ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / det
		lc = 1 - la - lb

		if la >= -barycentricTolerance && lb >= -barycentricTolerance && lc >= -barycentricTolerance {
			return ia, ib, ic, la, lb, lc, true
		}
	}
	return 0, 0, 0, 0, 0, 0, false
}

// cubicPatch evaluates the cubic Bezier triangle spanned by vertices
// (ia, ib, ic) at barycentric position (la, lb, lc). Corner control points
// equal the sample values, so the patch reproduces samples exactly; edge
// control points come from the vertex gradients and the interior control
// point is chosen for quadratic precision.
func (e *triEstimator) cubicPatch(ia, ib, ic int, la, lb, lc float64) float64 {
	ga, gb, gc := e.grads[ia], e.grads[ib], e.grads[ic]
	for _, g := range [][2]float64{ga, gb, gc} {
		if math.IsNaN(g[0]) || math.IsNaN(g[1]) {
			// Gradient estimation failed at a corner; the patch would
			// not be trustworthy, so the cell stays undefined.
			return math.NaN()
		}
	}

	ps := e.tri.Points
	a, b, c := ps[ia], ps[ib], ps[ic]
	za, zb, zc := e.values[ia], e.values[ib], e.values[ic]

	dot := func(g [2]float64, from, to delaunay.Point) float64 {
		return g[0]*(to.X-from.X) + g[1]*(to.Y-from.Y)
	}

	b300 := za
	b030 := zb
	b003 := zc
	b210 := za + dot(ga, a, b)/3
	b201 := za + dot(ga, a, c)/3
	b120 := zb + dot(gb, b, a)/3
	b021 := zb + dot(gb, b, c)/3
	b102 := zc + dot(gc, c, a)/3
	b012 := zc + dot(gc, c, b)/3

	edgeMean := (b210 + b201 + b120 + b021 + b102 + b012) / 6
	cornerMean := (za + zb + zc) / 3
	b111 := edgeMean + (edgeMean-cornerMean)/2

	u, v, w := la, lb, lc
	return b300*u*u*u + b030*v*v*v + b003*w*w*w +
		3*(b210*u*u*v+b201*u*u*w+b120*u*v*v+b021*v*v*w+b102*u*w*w+b012*v*w*w) +
		6*b111*u*v*w
}

// vertexGradients estimates (d/dx, d/dy) at every triangulation vertex by a
// distance-weighted least-squares plane fit over its triangulation
// neighbors. Vertices with too few neighbors or a near-singular normal
// matrix get NaN gradients and degrade their incident patches to undefined
// instead of producing unstable estimates.
func vertexGradients(tri *delaunay.Triangulation, values []float64) [][2]float64 {
	n := len(tri.Points)
	neighbors := make([]map[int]struct{}, n)
	for i := range neighbors {
		neighbors[i] = make(map[int]struct{})
	}
	for t := 0; t < len(tri.Triangles); t += 3 {
		ia, ib, ic := tri.Triangles[t], tri.Triangles[t+1], tri.Triangles[t+2]
		neighbors[ia][ib] = struct{}{}
		neighbors[ia][ic] = struct{}{}
		neighbors[ib][ia] = struct{}{}
		neighbors[ib][ic] = struct{}{}
		neighbors[ic][ia] = struct{}{}
		neighbors[ic][ib] = struct{}{}
	}

	grads := make([][2]float64, n)
	for i := range grads {
		grads[i] = fitGradient(tri.Points, values, i, neighbors[i])
	}
	return grads
}

// fitGradient solves the 2x2 weighted normal equations of the plane fit
// around vertex i.
func fitGradient(points []delaunay.Point, values []float64, i int, neighbors map[int]struct{}) [2]float64 {
	undefined := [2]float64{math.NaN(), math.NaN()}
	if len(neighbors) < 2 {
		return undefined
	}

	p := points[i]
	var sxx, sxy, syy, sxz, syz float64
	for j := range neighbors {
		dx := points[j].X - p.X
		dy := points[j].Y - p.Y
		dz := values[j] - values[i]

		d2 := dx*dx + dy*dy
		if d2 == 0 {
			continue
		}
		w := 1 / d2

		sxx += w * dx * dx
		sxy += w * dx * dy
		syy += w * dy * dy
		sxz += w * dx * dz
		syz += w * dy * dz
	}

	det := sxx*syy - sxy*sxy
	if math.Abs(det) < 1e-12*(sxx*syy+1e-12) {
		// Neighbors are collinear around this vertex.
		return undefined
	}

	return [2]float64{
		(syy*sxz - sxy*syz) / det,
		(sxx*syz - sxy*sxz) / det,
	}
}
