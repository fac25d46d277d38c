// Package analysis runs sensitivity sweeps over the McCabe-Thiele
// construction: how the number of stages and the feed stage respond to the
// reflux ratio and the feed quality.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/user/portfolio_go/internal/mccabe"
	"github.com/user/portfolio_go/internal/numeric"
)

// DefaultRefluxFactors are multiples of the minimum reflux swept when no
// explicit reflux grid is given.
var DefaultRefluxFactors = []float64{1.05, 1.1, 1.2, 1.3, 1.5, 1.75, 2, 2.5, 3, 4, 5}

// DefaultQs is the feed quality axis of the default sweep.
func DefaultQs() []float64 {
	return numeric.Linspace(-0.5, 1.5, 9)
}

// RefluxGrid returns reflux ratios for a sweep: multiples of the minimum
// reflux when it can be estimated, otherwise an even grid on [0.5, 10].
func RefluxGrid(curve mccabe.Curve, base mccabe.Params) []float64 {
	rmin, _, err := mccabe.MinimumReflux(curve, base)
	if err != nil || rmin <= 0 || math.IsNaN(rmin) {
		return numeric.Linspace(0.5, 10, 11)
	}
	rs := make([]float64, len(DefaultRefluxFactors))
	for i, f := range DefaultRefluxFactors {
		rs[i] = f * rmin
	}
	return rs
}

// SweepReflux steps off the column for each reflux ratio at the base feed
// quality.
func SweepReflux(curve mccabe.Curve, base mccabe.Params, rs []float64, opts mccabe.Options) (*SweepResults, error) {
	return SweepGrid(curve, base, rs, []float64{base.Q}, opts)
}

// SweepGrid steps off the column for every (R, q) combination. A failing
// design point is recorded as infeasible, it does not abort the sweep.
func SweepGrid(curve mccabe.Curve, base mccabe.Params, rs, qs []float64, opts mccabe.Options) (*SweepResults, error) {
	if curve == nil {
		return nil, fmt.Errorf("no equilibrium curve, cannot analyze")
	}
	if len(rs) == 0 || len(qs) == 0 {
		return nil, fmt.Errorf("empty sweep grid (%d reflux ratios, %d feed qualities)", len(rs), len(qs))
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}

	results := NewSweepResults(base, rs, qs)
	if rmin, _, err := mccabe.MinimumReflux(curve, base); err == nil {
		results.MinReflux = rmin
	} else {
		results.AnalysisErrors = append(results.AnalysisErrors, fmt.Sprintf("Minimum reflux: %v", err))
	}
	if res, err := mccabe.MinimumStages(curve, base, opts); err == nil {
		results.MinStages = res.Stages
	} else {
		results.AnalysisErrors = append(results.AnalysisErrors, fmt.Sprintf("Minimum stages: %v", err))
	}

	var stageCounts []float64
	for i, r := range rs {
		for j, q := range qs {
			p := base
			p.R, p.Q = r, q
			cell := SweepCell{RIndex: i, QIndex: j, R: r, Q: q}
			res, err := mccabe.Step(curve, p, opts)
			switch {
			case err != nil && errors.Is(err, mccabe.ErrStageLimit):
				cell.Error = "below minimum reflux"
			case err != nil:
				cell.Error = err.Error()
			case len(res.Warnings) > 0:
				cell.Error = res.Warnings[0]
			default:
				cell.Feasible = true
				cell.Stages = res.Stages
				cell.FeedStage = res.FeedStage
				stageCounts = append(stageCounts, float64(res.Stages))
			}
			results.Cells = append(results.Cells, cell)
		}
	}

	if len(stageCounts) == 0 {
		results.AnalysisErrors = append(results.AnalysisErrors, "No feasible design point in the sweep.")
		return results, nil
	}
	results.MeanStages = stat.Mean(stageCounts, nil)
	if len(stageCounts) > 1 {
		results.StdDevStages = stat.StdDev(stageCounts, nil)
	} else {
		results.StdDevStages = 0
	}

	// Collect the feasible designs for ranking
	for _, c := range results.Cells {
		if !c.Feasible {
			continue
		}
		d := RankedDesign{R: c.R, Q: c.Q, Stages: c.Stages, FeedStage: c.FeedStage}
		d.Value = float64(c.Stages)
		results.RankedByStages = append(results.RankedByStages, d)
		d.Value = c.R
		results.RankedByReflux = append(results.RankedByReflux, d)
	}
	// Sort the rankings
	sort.SliceStable(results.RankedByStages, func(i, j int) bool {
		a, b := results.RankedByStages[i], results.RankedByStages[j]
		if a.Value != b.Value {
			return a.Value < b.Value // Ascending
		}
		return a.R < b.R
	})
	sort.SliceStable(results.RankedByReflux, func(i, j int) bool {
		a, b := results.RankedByReflux[i], results.RankedByReflux[j]
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		return a.Stages < b.Stages
	})
	tracer().Debugf("sweep %dx%d: %d feasible, mean %.2f stages", len(rs), len(qs), len(stageCounts), results.MeanStages)
	return results, nil
}
