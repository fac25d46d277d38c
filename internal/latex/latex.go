// Package latex converts LaTeX math, as produced by a MathQuill editor, into
// Python and NumPy expressions.
package latex

import (
	"regexp"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'latex'
func tracer() tracing.Trace {
	return tracing.Select("latex")
}

var (
	reLeftRight    = regexp.MustCompile(`\\left|\\right`)
	reOperatorname = regexp.MustCompile(`\\operatorname\{([^{}]+)\}`)
	reExp          = regexp.MustCompile(`\\?exp\(`)
	reFuncCommand  = regexp.MustCompile(`\\(sin|cos|tan|sinh|cosh|tanh|arcsin|arccos|arctan|arcsinh|arccosh|arctanh|log|ln)`)
	reSimplePower  = regexp.MustCompile(`([a-zA-Z0-9_]+)\s*\^([a-zA-Z0-9_]+)`)
	reCdot         = regexp.MustCompile(`\\cdot\s*`)
	reBracedPower  = regexp.MustCompile(`(\S+)\s*\^\{\s*([^}]+?)\s*\}`)

	reNumberPower = regexp.MustCompile(`([0-9.]+)\*\*\(([^)]+)\)`)
	reEPower      = regexp.MustCompile(`\be\*\*\(([^)]+)\)`)
	reLn          = regexp.MustCompile(`\bln\(([^)]+)\)`)
	reLog         = regexp.MustCompile(`\blog\(([^)]+)\)`)
	reTrig        = regexp.MustCompile(`\b(sin|cos|tan|sinh|cosh|tanh|arcsin|arccos|arctan|arcsinh|arccosh|arctanh)\(([^)]+)\)`)
)

// ToPython rewrites a LaTeX expression with Python operators: fractions
// become (num)/(den), powers become **, commands lose their backslash and
// braces turn into parentheses.
func ToPython(src string) string {
	expr := strings.Trim(src, "$")
	expr = reLeftRight.ReplaceAllString(expr, "")
	expr = ReplaceFractions(expr)
	expr = reOperatorname.ReplaceAllString(expr, "$1")
	expr = reExp.ReplaceAllString(expr, "e**(")
	expr = reFuncCommand.ReplaceAllString(expr, "$1")
	expr = reSimplePower.ReplaceAllString(expr, "$1**($2)")
	expr = reCdot.ReplaceAllString(expr, "*")
	expr = reBracedPower.ReplaceAllString(expr, "$1**($2)")
	expr = finish(expr)
	tracer().Debugf("latex %q -> python %q", src, expr)
	return expr
}

// ToNumpy converts LaTeX to Python first and then maps powers, exponentials,
// logarithms and trigonometric calls onto their np.* counterparts.
func ToNumpy(src string) string {
	return PythonToNumpy(ToPython(src))
}

// PythonToNumpy maps a Python expression onto NumPy calls. ln is the natural
// logarithm, log the decadic one.
func PythonToNumpy(expr string) string {
	expr = reNumberPower.ReplaceAllString(expr, "np.power($1, ($2))")
	expr = reEPower.ReplaceAllString(expr, "np.exp($1)")
	expr = replaceUnlessPrefixed(reLn, expr, "np.", "np.log($1)")
	expr = replaceUnlessPrefixed(reLog, expr, "np.", "np.log10($1)")
	expr = replaceUnlessPrefixed(reTrig, expr, "np.", "np.$1($2)")
	expr = reBracedPower.ReplaceAllString(expr, "$1**($2)")
	return finish(expr)
}

func finish(expr string) string {
	return strings.NewReplacer("{", "(", "}", ")", "^", "**").Replace(expr)
}

// replaceUnlessPrefixed works like ReplaceAllString but leaves matches
// that directly follow prefix untouched.
func replaceUnlessPrefixed(re *regexp.Regexp, s, prefix, template string) string {
	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
		if strings.HasSuffix(s[:m[0]], prefix) {
			continue
		}
		b.WriteString(s[last:m[0]])
		b.Write(re.ExpandString(nil, template, s, m))
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// ReplaceFractions rewrites every \frac{num}{den} as (num)/(den), matching
// braces so that arbitrarily nested fractions are handled. Malformed or
// unbalanced fractions are left as they are.
func ReplaceFractions(expr string) string {
	from := 0
	for {
		idx := strings.Index(expr[from:], `\frac`)
		if idx < 0 {
			return expr
		}
		idx += from
		num, endNum, ok := bracedGroup(expr, idx+len(`\frac`))
		if !ok {
			from = idx + len(`\frac`)
			continue
		}
		den, endDen, ok := bracedGroup(expr, endNum+1)
		if !ok {
			from = idx + len(`\frac`)
			continue
		}
		repl := "(" + ReplaceFractions(num) + ")/(" + ReplaceFractions(den) + ")"
		expr = expr[:idx] + repl + expr[endDen+1:]
		from = idx + len(repl)
	}
}

// bracedGroup finds the first '{' at or after start and returns its content
// and the index of the matching '}'.
func bracedGroup(s string, start int) (string, int, bool) {
	open := strings.IndexByte(s[start:], '{')
	if open < 0 {
		return "", 0, false
	}
	open += start
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[open+1 : i], i, true
			}
		}
	}
	return "", 0, false
}
