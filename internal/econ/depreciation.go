package econ

import (
	"github.com/samber/lo"
)

// Depreciation schedules over life years plus the half-year tail period.
type Depreciation struct {
	Periods  []float64 // 1 .. life+1
	Straight []float64
	MACRS    []float64
}

// TotalStraight is the sum of the straight-line schedule, FCI − salvage.
func (d *Depreciation) TotalStraight() float64 {
	return lo.Sum(d.Straight)
}

// TotalMACRS is the sum of the MACRS schedule, the full FCI.
func (d *Depreciation) TotalMACRS() float64 {
	return lo.Sum(d.MACRS)
}

// BookValue after each period of a schedule.
func BookValue(fci float64, schedule []float64) []float64 {
	book := fci
	return lo.Map(schedule, func(d float64, _ int) float64 {
		book -= d
		return book
	})
}

// Depreciate builds the straight-line schedule ((FCI − salvage)/life per
// year, nothing in the tail period) and the MACRS schedule: double declining
// balance at rate 2/life with the half-year convention in the first and last
// period, switching to straight line over the remaining periods as soon as
// that gives the larger deduction.
func Depreciate(fci, salvage float64, life int) (*Depreciation, error) {
	if life <= 0 {
		return nil, inputErr("equipment life must be positive, have %d", life)
	}
	if fci < 0 || salvage < 0 || salvage > fci {
		return nil, inputErr("need 0 <= salvage <= FCI, have FCI=%g salvage=%g", fci, salvage)
	}
	total := life + 1
	d := &Depreciation{
		Periods:  lo.Map(lo.Range(total), func(i int, _ int) float64 { return float64(i + 1) }),
		Straight: make([]float64, total),
	}
	sl := (fci - salvage) / float64(life)
	for i := 0; i < life; i++ {
		d.Straight[i] = sl
	}

	rate := 2 / float64(life)
	book := fci
	dep := book * rate * 0.5
	d.MACRS = append(d.MACRS, dep)
	book -= dep
	for period := 2; period <= total; period++ {
		ddb := book * rate
		remaining := float64(total-period) + 0.5
		est := book / remaining
		if ddb > est {
			d.MACRS = append(d.MACRS, ddb)
			book -= ddb
			continue
		}
		for j := period; j < total; j++ {
			d.MACRS = append(d.MACRS, est)
		}
		d.MACRS = append(d.MACRS, est*0.5)
		break
	}
	tracer().Debugf("depreciation FCI=%g salvage=%g life=%d: SL %g, MACRS %g", fci, salvage, life, d.TotalStraight(), d.TotalMACRS())
	return d, nil
}
