package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"fieldmap/internal/models"
	"fieldmap/pkg/autocorrelation"
	"fieldmap/pkg/config"
	"fieldmap/pkg/grid"
	"fieldmap/pkg/interpolation"
	"fieldmap/pkg/validation"
)

func main() {
	// Parse command line arguments
	inputFile := flag.String("input", "", "CSV file of readings: id,x,y,<channel columns>")
	configPath := flag.String("config", "fieldmap.yaml", "Configuration file path")
	width := flag.Float64("width", 0, "Area width (overrides config)")
	height := flag.Float64("height", 0, "Area height (overrides config)")
	resolution := flag.Float64("resolution", 0, "Grid resolution (overrides config)")
	methodName := flag.String("method", "", "Interpolation method: linear, cubic or rbf (overrides config)")
	moranThreshold := flag.Float64("moran-threshold", 0, "Neighbor distance for Moran's I (overrides config)")
	channelList := flag.String("channels", "", "Comma-separated channels to map (default: all channel columns)")
	flag.Parse()

	// Validate inputs
	if *inputFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	// Load configuration and apply flag overrides
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *width > 0 {
		cfg.Area.Width = *width
	}
	if *height > 0 {
		cfg.Area.Height = *height
	}
	if *resolution > 0 {
		cfg.Area.Resolution = *resolution
	}
	if *methodName != "" {
		cfg.Interpolation.Method = *methodName
	}
	if *moranThreshold > 0 {
		cfg.Autocorrelation.DistanceThreshold = *moranThreshold
	}

	method, err := interpolation.ParseMethod(cfg.Interpolation.Method)
	if err != nil {
		log.Fatalf("Invalid method: %v", err)
	}
	params := interpolation.Params{
		Method:       method,
		RBFSmoothing: cfg.Interpolation.RBFSmoothing,
	}

	// Load the readings
	readings, channels, err := readReadings(*inputFile)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
	if *channelList != "" {
		channels = strings.Split(*channelList, ",")
	}

	fmt.Println("================================")
	fmt.Println("FIELDMAP - SPATIAL FIELD ESTIMATION AND VALIDATION")
	fmt.Println("================================")
	fmt.Printf("Readings: %d  Area: %g x %g  Resolution: %g  Method: %s\n",
		len(readings), cfg.Area.Width, cfg.Area.Height, cfg.Area.Resolution, method)

	// The mesh is built once and shared across channels
	g, err := grid.Build(cfg.Area.Width, cfg.Area.Height, cfg.Area.Resolution)
	if err != nil {
		log.Fatalf("Failed to build grid: %v", err)
	}
	fmt.Printf("Grid: %d x %d vertices\n", g.NumX(), g.NumY())

	for _, channel := range channels {
		samples := models.ChannelSamples(readings, channel)

		fmt.Printf("\n--- Channel: %s ---\n", channel)

		field, err := interpolation.Interpolate(samples, g, params)
		if err != nil {
			log.Printf("Skipping %s: interpolation failed: %v", channel, err)
			continue
		}

		result, err := validation.Score(samples, field, params)
		if err != nil {
			log.Printf("Skipping %s: validation failed: %v", channel, err)
			continue
		}
		printValidation(result, cfg.Output.Verbose)

		moran, err := autocorrelation.MoransI(models.ValidSamples(samples),
			cfg.Autocorrelation.DistanceThreshold)
		if err != nil {
			log.Printf("Moran's I unavailable for %s: %v", channel, err)
			continue
		}
		printMoran(moran, cfg.Autocorrelation.DistanceThreshold)
	}
}

func printValidation(r *validation.Result, verbose bool) {
	fmt.Printf("Cross-Validation (leave-one-out):\n")
	if r.NumUsed == 0 {
		fmt.Printf("  No fold produced a defined prediction (%d samples)\n", r.NumSamples)
	} else {
		fmt.Printf("  R-squared: %.4f\n", r.RSquared)
		fmt.Printf("  RMSE: %.4f\n", r.RMSE)
		fmt.Printf("  Folds used: %d of %d\n", r.NumUsed, r.NumSamples)
	}
	if verbose {
		fmt.Printf("Samples: mean %.3f  std %.3f\n", r.SampleMean, r.SampleStd)
		fmt.Printf("Field: mean %.3f  std %.3f  min %.3f  max %.3f  range %.3f\n",
			r.FieldMean, r.FieldStd, r.FieldMin, r.FieldMax, r.FieldRange)
	}
}

func printMoran(r *autocorrelation.Result, threshold float64) {
	fmt.Printf("Moran's I (neighbor distance %g): %.3f\n", threshold, r.I)
	switch {
	case r.I > 0.3:
		fmt.Println("  Strong positive spatial autocorrelation (clustered)")
	case r.I > 0:
		fmt.Println("  Weak positive spatial autocorrelation")
	case r.I > -0.3:
		fmt.Println("  Weak negative spatial autocorrelation")
	default:
		fmt.Println("  Strong negative spatial autocorrelation (dispersed)")
	}
}

// readReadings parses a CSV of positioned readings. The header row must
// start with id,x,y; every remaining column is a named channel. Blank cells
// are missing values.
func readReadings(path string) ([]models.Reading, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing input file: %w", err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("input file %s has no data rows", path)
	}

	header := records[0]
	if len(header) < 4 || header[0] != "id" || header[1] != "x" || header[2] != "y" {
		return nil, nil, fmt.Errorf("input header must be id,x,y,<channel...>, got %v", header)
	}
	channels := header[3:]

	readings := make([]models.Reading, 0, len(records)-1)
	for line, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, nil, fmt.Errorf("line %d: expected %d fields, got %d",
				line+2, len(header), len(rec))
		}

		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: bad id %q: %w", line+2, rec[0], err)
		}
		x, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: bad x %q: %w", line+2, rec[1], err)
		}
		y, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: bad y %q: %w", line+2, rec[2], err)
		}

		r := models.Reading{ID: id, X: x, Y: y, Channels: make(map[string]float64, len(channels))}
		for i, name := range channels {
			cell := strings.TrimSpace(rec[3+i])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: bad %s value %q: %w", line+2, name, cell, err)
			}
			if !math.IsNaN(v) {
				r.Channels[name] = v
			}
		}
		readings = append(readings, r)
	}
	return readings, channels, nil
}
