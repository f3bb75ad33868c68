package autocorrelation

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"fieldmap/internal/models"
)

// TestSpatialTrendPositive verifies that a smooth spatial trend produces a
// clearly positive statistic, guarding against sign and normalization errors
func TestSpatialTrendPositive(t *testing.T) {
	points := gridPoints(5, 5, 10, func(x, y float64) float64 { return x })

	result, err := MoransI(points, 15)
	if err != nil {
		t.Fatalf("MoransI failed: %v", err)
	}

	if result.I <= 0.2 {
		t.Errorf("Expected clearly positive Moran's I for value = x, got %g", result.I)
	}
	if result.I > 1.0+1e-9 {
		t.Errorf("Moran's I %g above the expected range", result.I)
	}
}

// TestShuffledValuesNearZero verifies that randomized values over fixed
// geometry average to a statistic near zero
func TestShuffledValuesNearZero(t *testing.T) {
	points := gridPoints(5, 5, 10, func(x, y float64) float64 { return x })
	rng := rand.New(rand.NewSource(42))

	const shuffles = 50
	sum := 0.0
	for s := 0; s < shuffles; s++ {
		shuffled := make([]models.SamplePoint, len(points))
		copy(shuffled, points)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i].Value, shuffled[j].Value = shuffled[j].Value, shuffled[i].Value
		})

		result, err := MoransI(shuffled, 15)
		if err != nil {
			t.Fatalf("MoransI failed: %v", err)
		}
		sum += result.I
	}

	mean := sum / shuffles
	// The null expectation is -1/(n-1), near zero for 25 points.
	if math.Abs(mean) > 0.15 {
		t.Errorf("Expected mean Moran's I near 0 over shuffled values, got %g", mean)
	}
}

// TestCheckerboardNegative verifies that alternating neighbor values drive
// the statistic strongly negative
func TestCheckerboardNegative(t *testing.T) {
	points := gridPoints(4, 4, 10, func(x, y float64) float64 {
		if int(x/10+y/10)%2 == 0 {
			return 0
		}
		return 1
	})

	// Threshold 10 keeps only rook neighbors, which all hold the
	// opposite value: the lag is exactly the negated standardized value
	// and the statistic is -1.
	result, err := MoransI(points, 10)
	if err != nil {
		t.Fatalf("MoransI failed: %v", err)
	}

	if result.I > -0.9 {
		t.Errorf("Expected Moran's I near -1 for a checkerboard, got %g", result.I)
	}
}

// TestIsolatedPointContributesZeroLag verifies the zero-neighbor row guard
func TestIsolatedPointContributesZeroLag(t *testing.T) {
	points := []models.SamplePoint{
		{X: 0, Y: 0, Value: 1},
		{X: 5, Y: 0, Value: 2},
		{X: 0, Y: 5, Value: 3},
		{X: 100, Y: 100, Value: 4}, // far from every other point
	}

	result, err := MoransI(points, 10)
	if err != nil {
		t.Fatalf("MoransI failed: %v", err)
	}

	if result.SpatialLag[3] != 0 {
		t.Errorf("Expected zero spatial lag for the isolated point, got %g", result.SpatialLag[3])
	}
	if len(result.Standardized) != len(points) || len(result.SpatialLag) != len(points) {
		t.Errorf("Expected per-point terms for all %d points", len(points))
	}
}

// TestStandardization verifies zero mean and unit variance of the
// standardized values
func TestStandardization(t *testing.T) {
	points := gridPoints(3, 3, 10, func(x, y float64) float64 { return x + 2*y })

	result, err := MoransI(points, 15)
	if err != nil {
		t.Fatalf("MoransI failed: %v", err)
	}

	sum := 0.0
	sumSq := 0.0
	for _, z := range result.Standardized {
		sum += z
		sumSq += z * z
	}
	n := float64(len(result.Standardized))
	if math.Abs(sum/n) > 1e-9 {
		t.Errorf("Expected zero mean after standardization, got %g", sum/n)
	}
	if math.Abs(sumSq/n-1) > 1e-9 {
		t.Errorf("Expected unit variance after standardization, got %g", sumSq/n)
	}
}

// TestCoincidentPointsAreNotNeighbors verifies that zero-distance pairs are
// excluded from the neighbor relation
func TestCoincidentPointsAreNotNeighbors(t *testing.T) {
	points := []models.SamplePoint{
		{X: 0, Y: 0, Value: 1},
		{X: 0, Y: 0, Value: 5}, // coincident with the first
		{X: 100, Y: 100, Value: 3},
	}

	result, err := MoransI(points, 1)
	if err != nil {
		t.Fatalf("MoransI failed: %v", err)
	}

	// No pair is within (0, 1], so every lag must be zero.
	for i, lag := range result.SpatialLag {
		if lag != 0 {
			t.Errorf("Point %d: expected zero lag without neighbors, got %g", i, lag)
		}
	}
	if result.I != 0 {
		t.Errorf("Expected Moran's I 0 without any neighbor pair, got %g", result.I)
	}
}

// TestInvalidThreshold verifies the configuration error for non-positive
// thresholds
func TestInvalidThreshold(t *testing.T) {
	points := gridPoints(3, 3, 10, func(x, y float64) float64 { return x })

	for _, threshold := range []float64{0, -5} {
		_, err := MoransI(points, threshold)
		if err == nil {
			t.Errorf("Expected an error for threshold %g", threshold)
			continue
		}
		if !errors.Is(err, models.ErrConfiguration) {
			t.Errorf("Expected ErrConfiguration, got %v", err)
		}
	}
}

// TestZeroVariance verifies the degenerate-input error for constant values
func TestZeroVariance(t *testing.T) {
	points := gridPoints(3, 3, 10, func(x, y float64) float64 { return 7 })

	_, err := MoransI(points, 15)
	if err == nil {
		t.Fatal("Expected an error for zero-variance values")
	}
	if !errors.Is(err, models.ErrDegenerateInput) {
		t.Errorf("Expected ErrDegenerateInput, got %v", err)
	}
}

// Helper functions for tests

// gridPoints lays out cols x rows sample points at the given spacing with
// values from the supplied function
func gridPoints(cols, rows int, spacing float64, value func(x, y float64) float64) []models.SamplePoint {
	points := make([]models.SamplePoint, 0, cols*rows)
	for iy := 0; iy < rows; iy++ {
		for ix := 0; ix < cols; ix++ {
			x := float64(ix) * spacing
			y := float64(iy) * spacing
			points = append(points, models.SamplePoint{X: x, Y: y, Value: value(x, y)})
		}
	}
	return points
}
