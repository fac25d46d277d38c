package econ

import (
	"errors"
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompoundInterest(t *testing.T) {
	in, err := CompoundInterest(1000, 10, 2, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1000*math.Pow(1.05, 4), in.FutureCompound, 1e-9)
	assert.InDelta(t, 1200, in.FutureSimple, 1e-9)
	assert.InDelta(t, 15.50625, in.Difference(), 1e-9)
	require.Len(t, in.Compound.X, 5)
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, in.Compound.X)
	assert.InDelta(t, 1100, in.Simple.Y[2], 1e-9)

	_, err = CompoundInterest(1000, 10, 0, 12)
	assert.True(t, errors.Is(err, ErrInput))
}

func TestEAR(t *testing.T) {
	assert.InDelta(t, 0.1, EAR(10, 1), 1e-12)
	assert.InDelta(t, 0.1025, EAR(10, 2), 1e-12)
	assert.InDelta(t, math.E-1, MaxEAR(100), 1e-12)
	c, err := EARCurve(12, 12)
	require.NoError(t, err)
	require.Len(t, c.Y, 12)
	for i := 1; i < len(c.Y); i++ {
		assert.Greater(t, c.Y[i], c.Y[i-1])
		assert.Less(t, c.Y[i], MaxEAR(12))
	}
	_, err = EARCurve(12, 0)
	assert.Error(t, err)
}

func TestDiscountingAndNPV(t *testing.T) {
	assert.InDelta(t, 100, PresentValue(121, 10, 2), 1e-9)
	c, err := DiscountCurve(121, 10, 2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{121, 110, 100}, c.Y, 1e-9)
	assert.InDelta(t, -100+110/1.1+121/1.21, NPV(10, []float64{-100, 110, 121}), 1e-9)
}

func TestAnnuity(t *testing.T) {
	assert.InDelta(t, 250, AnnuityPayment(1000, 0, 4), 1e-12)
	// textbook value: 1000 at 10 % over 5 years
	assert.InDelta(t, 263.7975, AnnuityPayment(1000, 10, 5), 1e-4)
	c, err := AnnuityCurve(1000, 10, 5)
	require.NoError(t, err)
	assert.InDelta(t, 1100, c.Y[0], 1e-9)
	assert.InDelta(t, AnnuityPayment(1000, 10, 5), c.Y[4], 1e-12)
}

func TestPerpetuityAndInflation(t *testing.T) {
	pv, err := Perpetuity(50, 5)
	require.NoError(t, err)
	assert.InDelta(t, 1000, pv, 1e-9)
	_, err = Perpetuity(50, 0)
	assert.Error(t, err)
	c, err := PerpetuityCurve(50, 5)
	require.NoError(t, err)
	assert.Len(t, c.X, 100)
	assert.InDelta(t, 5, c.X[0], 1e-12)

	v, err := PurchasingPower(1000, 5, 5, 10)
	require.NoError(t, err)
	assert.InDelta(t, 1000, v, 1e-9)
	v, err = PurchasingPower(1000, 0, 10, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1000/1.1, v, 1e-9)
	_, err = PurchasingPower(1000, 5, -100, 1)
	assert.Error(t, err)
}

func TestDepreciation(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	d, err := Depreciate(1000, 100, 5)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, d.Periods)
	assert.InDelta(t, 900, d.TotalStraight(), 1e-9)
	assert.Equal(t, 0.0, d.Straight[5])
	// 5-year MACRS percentages: 20, 32, 19.2, 11.52, 11.52, 5.76
	assert.InDeltaSlice(t, []float64{200, 320, 192, 115.2, 115.2, 57.6}, d.MACRS, 1e-9)
	assert.InDelta(t, 1000, d.TotalMACRS(), 1e-9)
	book := BookValue(1000, d.MACRS)
	assert.InDelta(t, 0, book[len(book)-1], 1e-9)

	d, err = Depreciate(1000, 0, 1)
	require.NoError(t, err)
	assert.Len(t, d.MACRS, 2)
	assert.InDelta(t, 1000, d.TotalMACRS(), 1e-9)

	_, err = Depreciate(1000, 2000, 5)
	assert.Error(t, err)
	_, err = Depreciate(1000, 0, 0)
	assert.Error(t, err)
}

func TestAbbreviate(t *testing.T) {
	assert.Equal(t, "1.50M", Abbreviate(1.5e6))
	assert.Equal(t, "999.00", Abbreviate(999))
	assert.Equal(t, "2.00K", Abbreviate(2000))
	assert.Equal(t, "-3.25B", Abbreviate(-3.25e9))
	assert.Equal(t, "∞", Abbreviate(math.Inf(1)))
	assert.Equal(t, "∞", Abbreviate(1e40))
	assert.Equal(t, "$1,234.50", Money(1234.5))
	assert.Equal(t, "-$5.00", Money(-5))
	assert.Equal(t, "10.25%", Percent(0.1025))
}
