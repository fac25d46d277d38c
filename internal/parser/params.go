package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRateConstants reads a comma separated list of numbers, "1.5, 0.5".
func ParseRateConstants(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("no rate constants given")
	}
	var ks []float64
	for _, item := range strings.Split(s, ",") {
		k, err := strconv.ParseFloat(strings.TrimSpace(item), 64)
		if err != nil {
			return nil, fmt.Errorf("rate constant %q is not a number", strings.TrimSpace(item))
		}
		ks = append(ks, k)
	}
	return ks, nil
}

// ParseConcentrations reads "H2:1, O2:1, H2O:0" into a map. Keys keep their
// case; a repeated species is an error.
func ParseConcentrations(s string) (map[string]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("no initial concentrations given")
	}
	c0 := make(map[string]float64)
	for _, item := range strings.Split(s, ",") {
		kv := strings.SplitN(item, ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("initial concentration %q is not of the form species:value", strings.TrimSpace(item))
		}
		name := strings.TrimSpace(kv[0])
		if name == "" {
			return nil, fmt.Errorf("initial concentration %q has no species", strings.TrimSpace(item))
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("initial concentration of %s: %q is not a number", name, strings.TrimSpace(kv[1]))
		}
		if _, dup := c0[name]; dup {
			return nil, fmt.Errorf("species %s listed twice", name)
		}
		c0[name] = v
	}
	return c0, nil
}

// SplitLines splits a multi-line text field into trimmed, non-empty lines.
func SplitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
