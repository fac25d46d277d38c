package latex

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestReplaceFractions(t *testing.T) {
	assert.Equal(t, "(a)/(b)", ReplaceFractions(`\frac{a}{b}`))
	assert.Equal(t, "((1)/(2))/(3)", ReplaceFractions(`\frac{\frac{1}{2}}{3}`))
	assert.Equal(t, "(x)/(y)+(1)/((2)/(z))", ReplaceFractions(`\frac{x}{y}+\frac{1}{\frac{2}{z}}`))
	assert.Equal(t, "(a_{1})/(b)", ReplaceFractions(`\frac{a_{1}}{b}`))
	assert.Equal(t, `\frac{a`, ReplaceFractions(`\frac{a`))
	assert.Equal(t, `\frac{a}`, ReplaceFractions(`\frac{a}`))
}

func TestToPython(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	cases := map[string]string{
		`$x^2$`:                                "x**(2)",
		`x^{2}+\sin\left(x\right)`:             "x**(2)+sin(x)",
		`2^{x}\cdot e^{3}`:                     "2**(x)*e**(3)",
		`\exp\left(-x\right)`:                  "e**(-x)",
		`\operatorname{sinc}\left(x\right)`:    "sinc(x)",
		`\frac{1}{1+\exp\left(-t\right)}`:      "(1)/(1+e**(-t))",
		`\ln\left(x\right)+\log\left(y\right)`: "ln(x)+log(y)",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToPython(in), in)
	}
}

func TestToNumpy(t *testing.T) {
	cases := map[string]string{
		`2^{x}\cdot e^{3}`:                           "np.power(2, (x))*np.exp(3)",
		`\exp\left(-x\right)`:                        "np.exp(-x)",
		`\ln\left(x\right)+\log\left(y\right)`:       "np.log(x)+np.log10(y)",
		`\sin\left(x\right)\cdot\cosh\left(y\right)`: "np.sin(x)*np.cosh(y)",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToNumpy(in), in)
	}
	assert.Equal(t, "np.log(x)", PythonToNumpy("np.log(x)"))
}
