package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/hookvm/internal/value"
)

func TestTraceFrameString(t *testing.T) {
	native := traceFrame{Name: "f", Native: true}
	assert.Equal(t, "  at f() in <native>", native.String())

	closure := traceFrame{Name: "g", File: "main.hk", Line: 12}
	assert.Equal(t, "  at g() in main.hk:12", closure.String())
}

func TestFormatTrace(t *testing.T) {
	err := value.Errf(value.ErrRange, "index out of bounds")
	trace := []traceFrame{{Name: "f", File: "a.hk", Line: 3}}
	out := FormatTrace(err, trace)
	assert.Equal(t, "runtime error: index out of bounds\n  at f() in a.hk:3", out)
}

func TestFormatTraceNoFrames(t *testing.T) {
	err := value.Errf(value.ErrType, "bad type")
	assert.Equal(t, "runtime error: bad type", FormatTrace(err, nil))
}

func TestItoa32Negative(t *testing.T) {
	assert.Equal(t, "-7", itoa32(-7))
	assert.Equal(t, "0", itoa32(0))
	assert.Equal(t, "123", itoa32(123))
}
