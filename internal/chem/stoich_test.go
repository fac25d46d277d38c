package chem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/portfolio_go/internal/parser"
)

func f(v float64) *float64 { return &v }

func TestMolarMass(t *testing.T) {
	mm, err := MolarMass("H2O")
	require.NoError(t, err)
	assert.InDelta(t, 18.015, mm, 1e-3)
	mm, err = MolarMass("Ca(OH)2")
	require.NoError(t, err)
	assert.InDelta(t, 74.092, mm, 1e-3)
	_, err = MolarMass("Xx2")
	assert.Error(t, err)
}

func TestWaterFormation(t *testing.T) {
	r, err := parser.ParseReaction("2H2 + O2 -> 2H2O")
	require.NoError(t, err)
	res, err := Stoichiometry(r, map[string]Amount{
		"H2": {Moles: f(4)},
		"O2": {Moles: f(1)},
	}, 100)
	require.NoError(t, err)
	assert.Equal(t, "O2", res.Limiting)
	require.Len(t, res.Products, 1)
	assert.InDelta(t, 2, res.Products[0].Produced, 1e-12)
	assert.InDelta(t, 2, res.Reactants[0].Excess, 1e-12)
	assert.InDelta(t, 0, res.Reactants[1].Excess, 1e-12)
	assert.InDelta(t, 2*18.015, res.Products[0].ProducedGrams(), 1e-2)
}

func TestConversionAndGrams(t *testing.T) {
	r, err := parser.ParseReaction("2H2 + O2 -> 2H2O")
	require.NoError(t, err)
	res, err := Stoichiometry(r, map[string]Amount{
		"H2": {Grams: f(2.016 * 4)},
		"O2": {Moles: f(1)},
	}, 50)
	require.NoError(t, err)
	assert.Equal(t, "O2", res.Limiting)
	assert.InDelta(t, 4, res.Reactants[0].Initial, 1e-9)
	assert.InDelta(t, 1, res.Reactants[0].Used, 1e-9)
	assert.InDelta(t, 3, res.Reactants[0].Excess, 1e-9)
	assert.InDelta(t, 1, res.Products[0].Produced, 1e-9)
}

func TestUnknownAmountsAndMasses(t *testing.T) {
	r, err := parser.ParseReaction("A + B -> D")
	require.NoError(t, err)
	_, err = Stoichiometry(r, map[string]Amount{}, 100)
	assert.Error(t, err)
	_, err = Stoichiometry(r, map[string]Amount{"A": {Grams: f(3)}}, 100)
	assert.Error(t, err)
	res, err := Stoichiometry(r, map[string]Amount{"A": {Moles: f(3)}}, 100)
	require.NoError(t, err)
	assert.Equal(t, "A", res.Limiting)
	assert.False(t, res.Reactants[1].Known)
	assert.InDelta(t, 3, res.Reactants[1].Used, 1e-12)
	assert.True(t, math.IsNaN(res.Products[0].ProducedGrams()))
	_, err = Stoichiometry(r, map[string]Amount{"A": {Moles: f(3)}}, 120)
	assert.Error(t, err)
}
