package analysis

import (
	"math"

	"github.com/user/portfolio_go/internal/mccabe"
)

// SweepCell holds the McCabe-Thiele outcome for one (R, q) design point.
type SweepCell struct {
	RIndex, QIndex int
	R, Q           float64
	Stages         int
	FeedStage      int
	Feasible       bool
	Error          string // If the construction failed for this design point
}

// StageValue returns the stage count as a float, NaN for infeasible cells.
func (c SweepCell) StageValue() float64 {
	if !c.Feasible {
		return math.NaN()
	}
	return float64(c.Stages)
}

// RankedDesign is used for ranking design points by different criteria.
type RankedDesign struct {
	R, Q      float64
	Stages    int
	FeedStage int
	Value     float64 // The value being ranked
}

// SweepResults holds all results of a sensitivity sweep.
type SweepResults struct {
	Base           mccabe.Params
	Rs, Qs         []float64
	Cells          []SweepCell // row-major, R outer, q inner
	MinReflux      float64     // at the base feed quality, NaN if unknown
	MinStages      int         // at total reflux, 0 if unknown
	MeanStages     float64
	StdDevStages   float64
	RankedByStages []RankedDesign // Sorted by stage count, ascending
	RankedByReflux []RankedDesign // Feasible designs sorted by reflux ratio, ascending
	AnalysisErrors []string
}

// NewSweepResults prepares an empty sweep over rs × qs.
func NewSweepResults(base mccabe.Params, rs, qs []float64) *SweepResults {
	return &SweepResults{
		Base:           base,
		Rs:             rs,
		Qs:             qs,
		Cells:          make([]SweepCell, 0, len(rs)*len(qs)),
		MinReflux:      math.NaN(),
		MeanStages:     math.NaN(),
		StdDevStages:   math.NaN(),
		RankedByStages: make([]RankedDesign, 0),
		RankedByReflux: make([]RankedDesign, 0),
		AnalysisErrors: make([]string, 0),
	}
}

// Cell returns the cell at grid position (i, j).
func (s *SweepResults) Cell(i, j int) SweepCell {
	return s.Cells[i*len(s.Qs)+j]
}

// StagesVsReflux gives, for every R, the stage count at the q closest to the
// base feed quality. Infeasible points are NaN.
func (s *SweepResults) StagesVsReflux() (rs, stages []float64) {
	if len(s.Qs) == 0 {
		return nil, nil
	}
	j := 0
	for k, q := range s.Qs {
		if math.Abs(q-s.Base.Q) < math.Abs(s.Qs[j]-s.Base.Q) {
			j = k
		}
	}
	stages = make([]float64, len(s.Rs))
	for i := range s.Rs {
		stages[i] = s.Cell(i, j).StageValue()
	}
	return s.Rs, stages
}
