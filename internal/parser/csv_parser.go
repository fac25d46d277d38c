package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ParseVLEFile reads an x,y equilibrium CSV file.
func ParseVLEFile(filepath string) (*VLEData, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()
	return ParseVLEData(file)
}

// ParseVLEData reads equilibrium samples from CSV. Every data row carries the
// liquid mole fraction x in the first column and the vapor mole fraction y in
// the second; further columns are ignored. A first row that does not parse as
// numbers is taken as a header. Rows that cannot be used are skipped and
// reported in ParseErrors; the call only fails when the input is not CSV or
// too few samples remain.
func ParseVLEData(r io.Reader) (*VLEData, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV data: %w", err)
	}

	data := NewVLEData()
	type sample struct{ x, y float64 }
	samples := make([]sample, 0, len(allRows))
	seenData := false

	for rowIdx, row := range allRows {
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") { // Skip empty rows
			continue
		}
		if len(row) < 2 {
			data.ParseErrors = append(data.ParseErrors, fmt.Sprintf("Warning: CSV row %d has a single column, skipped.", rowIdx+1))
			continue
		}
		xs, ys := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		if errX != nil || errY != nil {
			if !seenData && data.Labels[0] == "" {
				data.Labels = [2]string{xs, ys}
				continue
			}
			data.ParseErrors = append(data.ParseErrors, fmt.Sprintf("Error converting values '%s','%s' on CSV row %d, skipped.", xs, ys, rowIdx+1))
			continue
		}
		seenData = true
		if math.IsNaN(x) || math.IsNaN(y) || x < 0 || x > 1 || y < 0 || y > 1 {
			data.ParseErrors = append(data.ParseErrors, fmt.Sprintf("Warning: CSV row %d - mole fractions (%g, %g) outside [0, 1], skipped.", rowIdx+1, x, y))
			continue
		}
		samples = append(samples, sample{x, y})
	}

	sort.SliceStable(samples, func(i, j int) bool { return samples[i].x < samples[j].x })
	for i, s := range samples {
		if i > 0 && s.x == samples[i-1].x {
			data.ParseErrors = append(data.ParseErrors, fmt.Sprintf("Warning: duplicate x=%g, keeping both samples.", s.x))
		}
		data.X = append(data.X, s.x)
		data.Y = append(data.Y, s.y)
	}

	if data.Len() < MinVLEPoints {
		return data, fmt.Errorf("need at least %d x,y samples, found %d", MinVLEPoints, data.Len())
	}
	return data, nil
}
