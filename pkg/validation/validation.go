// Package validation scores interpolation accuracy by leave-one-out
// cross-validation: each valid sample is withheld in turn, the surface is
// refit on the rest, and the refit prediction at the withheld position is
// compared to the actual value. Scoring is independent of any grid.
package validation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"fieldmap/internal/models"
	"fieldmap/pkg/interpolation"
)

// Result holds the cross-validation metrics for one channel and method,
// plus descriptive statistics of the raw samples and the interpolated
// field for reporting context.
type Result struct {
	// RSquared is 1 - SSres/SStot over the folds that produced a defined
	// prediction. 0 when the sample values are constant; NaN when no fold
	// produced a prediction.
	RSquared float64

	// RMSE is the root mean squared prediction error over the same folds;
	// NaN when no fold produced a prediction.
	RMSE float64

	// NumUsed is the number of folds that produced a defined prediction.
	// Held-out positions falling outside the remaining hull are excluded
	// from the aggregate, not counted as errors.
	NumUsed int

	// NumSamples is the number of valid samples scored.
	NumSamples int

	// SampleMean and SampleStd describe the raw sample values.
	SampleMean, SampleStd float64

	// FieldMean, FieldStd, FieldMin, FieldMax and FieldRange describe the
	// defined cells of the interpolated field; NaN when no field was
	// supplied or no cell is defined.
	FieldMean, FieldStd, FieldMin, FieldMax, FieldRange float64
}

// Score measures the accuracy of the given interpolation parameters on the
// sample set. The field argument is the already-interpolated surface used
// only for its descriptive statistics and may be nil; leave-one-out metrics
// never depend on it.
func Score(samples []models.SamplePoint, field *interpolation.Field, params interpolation.Params) (*Result, error) {
	valid := models.ValidSamples(samples)
	valid, err := models.DedupSamples(valid)
	if err != nil {
		return nil, fmt.Errorf("scoring %s interpolation: %w", params.Method, err)
	}
	n := len(valid)
	if n < interpolation.MinSamples {
		return nil, fmt.Errorf("%w: need at least %d valid samples to score, got %d",
			models.ErrInsufficientData, interpolation.MinSamples, n)
	}

	actuals := make([]float64, 0, n)
	predictions := make([]float64, 0, n)
	rest := make([]models.SamplePoint, 0, n-1)

	for i := 0; i < n; i++ {
		rest = rest[:0]
		rest = append(rest, valid[:i]...)
		rest = append(rest, valid[i+1:]...)

		est, err := interpolation.NewEstimator(rest, params)
		if err != nil {
			if errors.Is(err, models.ErrInsufficientData) {
				// The remainder cannot carry a surface; this fold has no
				// prediction, like a held-out point outside the hull.
				continue
			}
			return nil, err
		}

		pred := est.At(valid[i].X, valid[i].Y)
		if math.IsNaN(pred) {
			continue
		}
		actuals = append(actuals, valid[i].Value)
		predictions = append(predictions, pred)
	}

	result := &Result{
		NumUsed:    len(actuals),
		NumSamples: n,
	}
	result.RSquared, result.RMSE = aggregate(actuals, predictions)

	sampleValues := make([]float64, n)
	for i, s := range valid {
		sampleValues[i] = s.Value
	}
	result.SampleMean, result.SampleStd = stat.MeanStdDev(sampleValues, nil)

	result.FieldMean = math.NaN()
	result.FieldStd = math.NaN()
	result.FieldMin = math.NaN()
	result.FieldMax = math.NaN()
	result.FieldRange = math.NaN()
	if field != nil {
		if defined := field.DefinedValues(); len(defined) > 0 {
			result.FieldMean, result.FieldStd = stat.MeanStdDev(defined, nil)
			result.FieldMin, result.FieldMax = bounds(defined)
			result.FieldRange = result.FieldMax - result.FieldMin
		}
	}

	return result, nil
}

// aggregate computes R-squared and RMSE over the defined folds. No folds at
// all yields NaN for both, distinguishing "no evidence" from a perfect or
// zero-variance fit.
func aggregate(actuals, predictions []float64) (rSquared, rmse float64) {
	k := len(actuals)
	if k == 0 {
		return math.NaN(), math.NaN()
	}

	mean := stat.Mean(actuals, nil)
	ssRes := 0.0
	ssTot := 0.0
	for i := range actuals {
		resid := actuals[i] - predictions[i]
		ssRes += resid * resid
		dev := actuals[i] - mean
		ssTot += dev * dev
	}

	if ssTot > 0 {
		rSquared = 1 - ssRes/ssTot
	} else {
		rSquared = 0
	}
	return rSquared, math.Sqrt(ssRes / float64(k))
}

func bounds(values []float64) (min, max float64) {
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
