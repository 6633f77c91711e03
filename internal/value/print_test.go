package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintScalars(t *testing.T) {
	assert.Equal(t, "nil", Print(Nil, false))
	assert.Equal(t, "true", Print(True, false))
	assert.Equal(t, "false", Print(False, false))
	assert.Equal(t, "3", Print(Number(3), false))
	assert.Equal(t, "3.5", Print(Number(3.5), false))
}

func TestPrintStringQuoting(t *testing.T) {
	s := FromString(NewString("hi"))
	assert.Equal(t, "hi", Print(s, false))
	assert.Equal(t, `"hi"`, Print(s, true))
}

func TestFormatNumberSpecials(t *testing.T) {
	assert.Equal(t, "+Inf", formatNumber(math.Inf(1)))
	assert.Equal(t, "-Inf", formatNumber(math.Inf(-1)))
	assert.Equal(t, "NaN", formatNumber(math.NaN()))
}

func TestPrintArrayQuotesElements(t *testing.T) {
	a := FromArray(NewArray([]Value{FromString(NewString("x")), Number(1)}))
	assert.Equal(t, `["x", 1]`, Print(a, false))
}
