package vm

import (
	"strings"

	"go.uber.org/zap"

	"github.com/kristofer/hookvm/internal/value"
)

// traceFrame is one printed line of a runtime-error stack trace
// (spec.md §7): "  at <name>() in <file>:<line>", or "  at <name>() in
// <native>" for a native callable. Grounded on the teacher's
// pkg/vm/errors.go StackFrame, generalized to the kind/name/file/line
// shape spec.md requires.
type traceFrame struct {
	Name string
	File string
	Line int32
	// Native is true when this frame represents a native callable,
	// printed as "<native>" in place of a file:line location.
	Native bool
}

func (tf traceFrame) String() string {
	if tf.Native {
		return "  at " + tf.Name + "() in <native>"
	}
	return "  at " + tf.Name + "() in " + tf.File + ":" + itoa32(tf.Line)
}

// FormatTrace renders the full diagnostics-stream message for err:
// "runtime error: <message>" followed by one trace line per surviving
// frame, outermost last (spec.md §7).
func FormatTrace(err *value.RuntimeError, trace []traceFrame) string {
	var b strings.Builder
	b.WriteString("runtime error: ")
	b.WriteString(err.Message)
	for _, tf := range trace {
		b.WriteByte('\n')
		b.WriteString(tf.String())
	}
	return b.String()
}

// logTrace writes the formatted trace through the State's logger at
// Error level, using structured fields for the kind and frame count so
// the zap JSON encoder (when configured) stays machine-parseable while
// the default plain-text encoder reproduces spec.md §7's wire format.
func (s *State) logTrace(err *value.RuntimeError, trace []traceFrame) {
	msg := FormatTrace(err, trace)
	s.log.Error(msg,
		zap.String("kind", err.Kind.String()),
		zap.Int("frames", len(trace)),
	)
}

func itoa32(n int32) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
