package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var termPattern = regexp.MustCompile(`^(\d*)\*?([A-Za-z(][\w()]*)$`)

// arrows accepted between the two sides of an equation, longest first.
var arrows = []string{"<->", "->", "→", "=>", "="}

// ParseReaction parses an equation such as "2H2 + O2 -> 2H2O" or
// "2A+B=C". Whitespace is ignored; a missing coefficient means 1.
func ParseReaction(equation string) (Reaction, error) {
	eq := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, equation)
	if eq == "" {
		return Reaction{}, fmt.Errorf("empty reaction equation")
	}
	var lhs, rhs string
	found := false
	for _, arrow := range arrows {
		if parts := strings.Split(eq, arrow); len(parts) == 2 {
			lhs, rhs, found = parts[0], parts[1], true
			break
		} else if len(parts) > 2 {
			return Reaction{}, fmt.Errorf("invalid reaction equation %q: more than one %q", equation, arrow)
		}
	}
	if !found {
		return Reaction{}, fmt.Errorf("invalid reaction equation %q. Use format like 'A + B -> C + D'", equation)
	}
	reactants, err := parseSide(lhs, "reactant")
	if err != nil {
		return Reaction{}, err
	}
	products, err := parseSide(rhs, "product")
	if err != nil {
		return Reaction{}, err
	}
	return Reaction{Reactants: reactants, Products: products}, nil
}

func parseSide(side, role string) ([]Term, error) {
	var terms []Term
	for _, s := range strings.Split(side, "+") {
		t, err := ParseTerm(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s format: %w", role, err)
		}
		terms = append(terms, t)
	}
	return terms, nil
}

// ParseTerm splits "2H2O" into coefficient 2 and species "H2O".
func ParseTerm(s string) (Term, error) {
	m := termPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Term{}, fmt.Errorf("%q", s)
	}
	t := Term{Coefficient: 1, Species: m[2]}
	if m[1] != "" {
		c, err := strconv.Atoi(m[1])
		if err != nil {
			return Term{}, fmt.Errorf("coefficient of %q: %w", s, err)
		}
		if c == 0 {
			return Term{}, fmt.Errorf("zero coefficient in %q", s)
		}
		t.Coefficient = c
	}
	return t, nil
}
