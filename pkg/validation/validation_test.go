package validation

import (
	"errors"
	"math"
	"testing"

	"fieldmap/internal/models"
	"fieldmap/pkg/grid"
	"fieldmap/pkg/interpolation"
)

// TestScorePlanarData verifies that leave-one-out scoring of a planar field
// with the linear method recovers the interior points exactly
func TestScorePlanarData(t *testing.T) {
	samples := planeSamples()

	result, err := Score(samples, nil, interpolation.DefaultParams(interpolation.Linear))
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	// Corner folds fall outside the remaining hull and are excluded;
	// interior folds predict exactly on planar data.
	if result.NumUsed == 0 {
		t.Fatal("Expected interior folds to produce predictions")
	}
	if result.NumUsed >= result.NumSamples {
		t.Errorf("Expected hull-corner folds to be excluded, used %d of %d",
			result.NumUsed, result.NumSamples)
	}
	if math.Abs(result.RSquared-1.0) > 1e-9 {
		t.Errorf("Expected R-squared 1.0 on planar data, got %g", result.RSquared)
	}
	if result.RMSE > 1e-9 {
		t.Errorf("Expected near-zero RMSE on planar data, got %g", result.RMSE)
	}
}

// TestRSquaredNeverExceedsOne verifies the upper bound of the statistic on
// data the interpolation cannot fit perfectly
func TestRSquaredNeverExceedsOne(t *testing.T) {
	// A bumpy field no smooth surface predicts exactly
	positions := [][2]float64{
		{0, 0}, {10, 0}, {0, 10}, {10, 10}, {5, 5},
		{2, 7}, {7, 2}, {3, 3}, {8, 8}, {5, 1}, {1, 5},
	}
	samples := make([]models.SamplePoint, len(positions))
	for i, p := range positions {
		v := math.Sin(p[0]*1.7) * math.Cos(p[1]*2.3)
		samples[i] = models.SamplePoint{X: p[0], Y: p[1], Value: v}
	}

	for _, method := range []interpolation.Method{interpolation.Linear, interpolation.Cubic, interpolation.RBF} {
		result, err := Score(samples, nil, interpolation.DefaultParams(method))
		if err != nil {
			t.Fatalf("%s: Score failed: %v", method, err)
		}
		if result.NumUsed > 0 && result.RSquared > 1.0 {
			t.Errorf("%s: R-squared %g exceeds 1.0", method, result.RSquared)
		}
	}
}

// TestConstantSamples verifies the zero-variance denominator case: constant
// sample values yield R-squared 0, not 1 and not NaN
func TestConstantSamples(t *testing.T) {
	samples := []models.SamplePoint{
		{X: 0, Y: 0, Value: 1},
		{X: 10, Y: 0, Value: 1},
		{X: 0, Y: 10, Value: 1},
		{X: 10, Y: 10, Value: 1},
	}

	// The RBF surface is defined everywhere, so every fold produces a
	// prediction and the aggregate hits the constant-actuals branch.
	result, err := Score(samples, nil, interpolation.DefaultParams(interpolation.RBF))
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if result.NumUsed != len(samples) {
		t.Fatalf("Expected every RBF fold to predict, used %d of %d",
			result.NumUsed, result.NumSamples)
	}
	if result.RSquared != 0 {
		t.Errorf("Expected R-squared 0 for constant samples, got %g", result.RSquared)
	}
	if math.IsNaN(result.RMSE) {
		t.Error("RMSE should be defined when folds were used")
	}
}

// TestAllFoldsUndefined verifies the k == 0 case: when no fold produces a
// prediction, both metrics are NaN to distinguish "no evidence" from a
// perfect or zero-error fit
func TestAllFoldsUndefined(t *testing.T) {
	// Three samples: every leave-one-out remainder has only two points,
	// which cannot carry a surface.
	samples := []models.SamplePoint{
		{X: 0, Y: 0, Value: 1},
		{X: 10, Y: 0, Value: 2},
		{X: 0, Y: 10, Value: 3},
	}

	result, err := Score(samples, nil, interpolation.DefaultParams(interpolation.Linear))
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if result.NumUsed != 0 {
		t.Fatalf("Expected zero usable folds, got %d", result.NumUsed)
	}
	if !math.IsNaN(result.RSquared) {
		t.Errorf("Expected NaN R-squared with zero folds, got %g", result.RSquared)
	}
	if !math.IsNaN(result.RMSE) {
		t.Errorf("Expected NaN RMSE with zero folds, got %g", result.RMSE)
	}
}

// TestScoreInsufficientData verifies the minimum sample precondition
func TestScoreInsufficientData(t *testing.T) {
	samples := []models.SamplePoint{
		{X: 0, Y: 0, Value: 1},
		{X: 10, Y: 10, Value: 2},
	}

	_, err := Score(samples, nil, interpolation.DefaultParams(interpolation.Linear))
	if err == nil {
		t.Fatal("Expected an error with two valid samples")
	}
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

// TestFieldStatistics verifies the descriptive statistics of the supplied
// interpolated field and the nil-field behavior
func TestFieldStatistics(t *testing.T) {
	samples := []models.SamplePoint{
		{X: 0, Y: 0, Value: 1},
		{X: 10, Y: 0, Value: 1},
		{X: 0, Y: 10, Value: 1},
		{X: 10, Y: 10, Value: 1},
	}
	g, err := grid.Build(10, 10, 1)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	params := interpolation.DefaultParams(interpolation.Linear)

	field, err := interpolation.Interpolate(samples, g, params)
	if err != nil {
		t.Fatalf("Interpolation failed: %v", err)
	}

	result, err := Score(samples, field, params)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if math.Abs(result.FieldMean-1.0) > 1e-9 {
		t.Errorf("Expected field mean 1.0, got %g", result.FieldMean)
	}
	if result.FieldRange > 1e-9 {
		t.Errorf("Expected zero field range for a constant field, got %g", result.FieldRange)
	}
	if math.Abs(result.FieldMin-1.0) > 1e-9 || math.Abs(result.FieldMax-1.0) > 1e-9 {
		t.Errorf("Expected field bounds 1.0, got [%g, %g]", result.FieldMin, result.FieldMax)
	}
	if math.Abs(result.SampleMean-1.0) > 1e-12 {
		t.Errorf("Expected sample mean 1.0, got %g", result.SampleMean)
	}

	// Without a field the descriptive field statistics are undefined.
	result, err = Score(samples, nil, params)
	if err != nil {
		t.Fatalf("Score without field failed: %v", err)
	}
	if !math.IsNaN(result.FieldMean) || !math.IsNaN(result.FieldRange) {
		t.Error("Expected NaN field statistics when no field is supplied")
	}
}

// TestScoreSkipsMissingValues verifies that missing samples are excluded
// before any fold is attempted
func TestScoreSkipsMissingValues(t *testing.T) {
	samples := append(planeSamples(),
		models.SamplePoint{X: 4, Y: 4, Value: math.NaN()},
		models.SamplePoint{X: 6, Y: 6, Value: math.NaN()},
	)

	result, err := Score(samples, nil, interpolation.DefaultParams(interpolation.Linear))
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if result.NumSamples != len(samples)-2 {
		t.Errorf("Expected %d valid samples, got %d", len(samples)-2, result.NumSamples)
	}
}

// Helper functions for tests

// planeSamples returns samples of the plane 2x + y over a 10x10 area with
// corner and interior coverage
func planeSamples() []models.SamplePoint {
	positions := [][2]float64{
		{0, 0}, {10, 0}, {0, 10}, {10, 10},
		{5, 5}, {2, 7}, {7, 2}, {3, 4},
	}
	samples := make([]models.SamplePoint, len(positions))
	for i, p := range positions {
		samples[i] = models.SamplePoint{X: p[0], Y: p[1], Value: 2*p[0] + p[1]}
	}
	return samples
}
