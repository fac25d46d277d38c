package thermo

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Component carries the pure-component data needed for low-pressure
// vapor-liquid equilibrium: Antoine constants for ln P[kPa] = A - B/(T[°C]+C)
// and the liquid molar volume used by the Wilson model.
type Component struct {
	Name        string
	Aliases     []string
	A, B, C     float64
	MolarVolume float64 // cm³/mol
	TMin, TMax  float64 // °C, range of the Antoine fit
}

// Psat returns the saturation pressure in Pa at temperature tK (Kelvin).
func (c Component) Psat(tK float64) float64 {
	return 1000 * math.Exp(c.A-c.B/(tK-kelvin+c.C))
}

// Tsat returns the saturation temperature in K at pressure pPa (Pascal).
func (c Component) Tsat(pPa float64) float64 {
	return c.B/(c.A-math.Log(pPa/1000)) - c.C + kelvin
}

const kelvin = 273.15

var components = []Component{
	{Name: "methanol", Aliases: []string{"ch3oh", "meoh", "methyl alcohol"}, A: 16.5785, B: 3638.27, C: 239.500, MolarVolume: 40.73, TMin: -11, TMax: 83},
	{Name: "ethanol", Aliases: []string{"c2h5oh", "etoh", "ethyl alcohol"}, A: 16.8958, B: 3795.17, C: 230.918, MolarVolume: 58.68, TMin: 3, TMax: 96},
	{Name: "water", Aliases: []string{"h2o"}, A: 16.3872, B: 3885.70, C: 230.170, MolarVolume: 18.07, TMin: 0, TMax: 200},
	{Name: "acetone", Aliases: []string{"propanone", "2-propanone"}, A: 14.3145, B: 2756.22, C: 228.060, MolarVolume: 74.05, TMin: -26, TMax: 77},
	{Name: "1-propanol", Aliases: []string{"propanol", "n-propanol"}, A: 16.1154, B: 3483.67, C: 205.807, MolarVolume: 75.14, TMin: 20, TMax: 116},
	{Name: "benzene", Aliases: []string{"c6h6"}, A: 13.7819, B: 2726.81, C: 217.572, MolarVolume: 89.41, TMin: 6, TMax: 104},
	{Name: "toluene", Aliases: []string{"methylbenzene"}, A: 13.9320, B: 3056.96, C: 217.625, MolarVolume: 106.85, TMin: 13, TMax: 136},
	{Name: "acetonitrile", Aliases: []string{"mecn", "ch3cn"}, A: 14.8950, B: 3413.10, C: 250.523, MolarVolume: 66.30, TMin: -27, TMax: 81},
	{Name: "methyl acetate", Aliases: []string{"methylacetate"}, A: 14.2456, B: 2662.78, C: 219.690, MolarVolume: 79.84, TMin: -23, TMax: 78},
	{Name: "1,4-dioxane", Aliases: []string{"dioxane"}, A: 15.0967, B: 3579.78, C: 240.337, MolarVolume: 85.71, TMin: 20, TMax: 105},
	{Name: "n-hexane", Aliases: []string{"hexane"}, A: 13.8193, B: 2696.04, C: 224.317, MolarVolume: 131.61, TMin: -19, TMax: 92},
	{Name: "n-heptane", Aliases: []string{"heptane"}, A: 13.8622, B: 2910.26, C: 216.432, MolarVolume: 147.47, TMin: 4, TMax: 123},
}

// wilsonPair holds the Wilson energy parameters a12, a21 in cal/mol for the
// ordered pair (first, second).
type wilsonPair struct {
	first, second string
	a12, a21      float64
}

var wilsonPairs = []wilsonPair{
	{"methanol", "water", 107.38, 469.55},
	{"1-propanol", "water", 775.48, 1351.90},
	{"water", "1,4-dioxane", 1696.98, -219.39},
	{"methanol", "acetonitrile", 504.31, 196.75},
	{"acetone", "methanol", -161.88, 583.11},
	{"methyl acetate", "methanol", -31.19, 813.18},
	{"methanol", "benzene", 1734.42, 183.04},
	{"ethanol", "toluene", 1556.45, 210.52},
	{"acetone", "water", 291.27, 1448.01},
}

// Lookup finds a component by name or alias, case-insensitively.
func Lookup(name string) (Component, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, c := range components {
		if c.Name == key {
			return c, nil
		}
		for _, a := range c.Aliases {
			if a == key {
				return c, nil
			}
		}
	}
	return Component{}, fmt.Errorf("unknown component %q", name)
}

// Names lists the canonical names of all known components, sorted.
func Names() []string {
	names := make([]string, len(components))
	for i, c := range components {
		names[i] = c.Name
	}
	sort.Strings(names)
	return names
}

// wilsonParams returns a12, a21 for the ordered pair (c1, c2) and whether the
// pair is tabulated.
func wilsonParams(c1, c2 string) (float64, float64, bool) {
	for _, p := range wilsonPairs {
		if p.first == c1 && p.second == c2 {
			return p.a12, p.a21, true
		}
		if p.first == c2 && p.second == c1 {
			return p.a21, p.a12, true
		}
	}
	return 0, 0, false
}
