package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode"
)

var leadingCoefficient = regexp.MustCompile(`^(\d+)([A-Za-z(].*)$`)

// ParseFormula counts the atoms of each element in a formula like "C6H12O6"
// or "Ca(OH)2". Parentheses and brackets nest; a leading coefficient is not
// allowed here.
func ParseFormula(formula string) (map[string]int, error) {
	p := &formulaParser{src: []rune(formula)}
	counts, err := p.group(0)
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected %q at position %d in formula %q", p.src[p.pos], p.pos, formula)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("formula %q has no elements", formula)
	}
	return counts, nil
}

type formulaParser struct {
	src []rune
	pos int
}

func closing(open rune) rune {
	if open == '[' {
		return ']'
	}
	return ')'
}

func (p *formulaParser) group(depth int) (map[string]int, error) {
	counts := make(map[string]int)
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		switch {
		case r == '(' || r == '[':
			p.pos++
			inner, err := p.group(depth + 1)
			if err != nil {
				return nil, err
			}
			if p.pos >= len(p.src) || p.src[p.pos] != closing(r) {
				return nil, fmt.Errorf("unbalanced %q in formula %q", r, string(p.src))
			}
			p.pos++
			n := p.number()
			for el, c := range inner {
				counts[el] += c * n
			}
		case r == ')' || r == ']':
			if depth == 0 {
				return nil, fmt.Errorf("unbalanced %q in formula %q", r, string(p.src))
			}
			return counts, nil
		case unicode.IsUpper(r):
			start := p.pos
			p.pos++
			for p.pos < len(p.src) && unicode.IsLower(p.src[p.pos]) {
				p.pos++
			}
			el := string(p.src[start:p.pos])
			counts[el] += p.number()
		default:
			return nil, fmt.Errorf("unexpected %q at position %d in formula %q", r, p.pos, string(p.src))
		}
	}
	return counts, nil
}

// number reads an optional count, defaulting to 1.
func (p *formulaParser) number() int {
	start := p.pos
	for p.pos < len(p.src) && unicode.IsDigit(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return 1
	}
	n, _ := strconv.Atoi(string(p.src[start:p.pos]))
	return n
}

// FormulaParts splits a formula into display runs: element symbols and
// parenthesised groups as text, atom counts as subscripts. A leading
// coefficient ("2H2O") stays regular text.
func FormulaParts(formula string) []FormulaPart {
	var parts []FormulaPart
	chem := []rune(formula)
	if m := leadingCoefficient.FindStringSubmatch(formula); m != nil {
		parts = append(parts, FormulaPart{Text: m[1]})
		chem = []rune(m[2])
	}
	digits := func(i int) (string, int) {
		start := i
		for i < len(chem) && unicode.IsDigit(chem[i]) {
			i++
		}
		return string(chem[start:i]), i
	}
	for i := 0; i < len(chem); {
		r := chem[i]
		switch {
		case r == '(':
			depth, j := 1, i+1
			for j < len(chem) && depth > 0 {
				if chem[j] == '(' {
					depth++
				} else if chem[j] == ')' {
					depth--
				}
				j++
			}
			parts = append(parts, FormulaPart{Text: string(chem[i:j])})
			i = j
			if sub, next := digits(i); sub != "" {
				parts = append(parts, FormulaPart{Text: sub, Subscript: true})
				i = next
			}
		case unicode.IsLetter(r):
			parts = append(parts, FormulaPart{Text: string(r)})
			i++
			if sub, next := digits(i); sub != "" {
				parts = append(parts, FormulaPart{Text: sub, Subscript: true})
				i = next
			}
		default:
			parts = append(parts, FormulaPart{Text: string(r)})
			i++
		}
	}
	return parts
}
