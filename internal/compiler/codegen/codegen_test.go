package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/hookvm/internal/compiler/parser"
	"github.com/kristofer/hookvm/internal/value"
	"github.com/kristofer/hookvm/internal/vm"
)

// compileAndRun parses src, compiles it against a fresh vm.State (which
// satisfies Globals directly), and runs the resulting top-level
// function as a closure the same way cmd/hookvm's main does.
func compileAndRun(t *testing.T, src string) (value.Value, *vm.State) {
	t.Helper()
	p := parser.New("t.hk", src)
	prog, err := p.Parse()
	require.NoError(t, err)

	s := vm.New(0, nil, nil)
	fn, err := CompileProgram("t.hk", prog, s)
	require.NoError(t, err)

	cl := value.FromClosure(value.NewClosure(fn, nil))
	v, err := s.CallValue(cl, nil)
	require.NoError(t, err)
	return v, s
}

func TestCompileArithmeticExpression(t *testing.T) {
	v, _ := compileAndRun(t, `return 1 + 2 * 3;`)
	assert.Equal(t, 7.0, v.AsNumber())
}

func TestCompileLetAndTopLevelGlobal(t *testing.T) {
	v, _ := compileAndRun(t, `let x = 41; x = x + 1; return x;`)
	assert.Equal(t, 42.0, v.AsNumber())
}

func TestCompileIfElse(t *testing.T) {
	v, _ := compileAndRun(t, `
		let x = 5;
		if x > 3 {
			return "big";
		} else {
			return "small";
		}
	`)
	assert.Equal(t, "big", v.AsString().String())
}

func TestCompileWhileLoopWithBreakAndContinue(t *testing.T) {
	v, _ := compileAndRun(t, `
		mut i = 0;
		mut total = 0;
		while i < 10 {
			i = i + 1;
			if i == 3 {
				continue;
			}
			if i == 7 {
				break;
			}
			total = total + i;
		}
		return total;
	`)
	// 1+2+4+5+6 = 18 (3 skipped via continue, loop stops before adding 7)
	assert.Equal(t, 18.0, v.AsNumber())
}

func TestCompileForeachOverArray(t *testing.T) {
	v, _ := compileAndRun(t, `
		mut total = 0;
		foreach x in [1, 2, 3] {
			total = total + x;
		}
		return total;
	`)
	assert.Equal(t, 6.0, v.AsNumber())
}

func TestCompileForeachOverRange(t *testing.T) {
	v, _ := compileAndRun(t, `
		mut total = 0;
		foreach x in [1..3] {
			total = total + x;
		}
		return total;
	`)
	assert.Equal(t, 6.0, v.AsNumber())
}

func TestCompileLocalMutReassignmentInsideFunction(t *testing.T) {
	v, _ := compileAndRun(t, `
		fn sumTo(n) {
			mut total = 0;
			mut i = 0;
			while i < n {
				i = i + 1;
				total = total + i;
			}
			return total;
		}
		return sumTo(4);
	`)
	assert.Equal(t, 10.0, v.AsNumber())
}

func TestCompileFnDeclAndRecursiveCall(t *testing.T) {
	v, _ := compileAndRun(t, `
		fn fact(n) {
			if n < 2 {
				return 1;
			}
			return n * fact(n - 1);
		}
		return fact(5);
	`)
	assert.Equal(t, 120.0, v.AsNumber())
}

func TestCompileFnExprClosureCapturesNonlocal(t *testing.T) {
	v, _ := compileAndRun(t, `
		fn makeAdder(n) {
			return fn(x) { return x + n; };
		}
		let add5 = makeAdder(5);
		return add5(10);
	`)
	assert.Equal(t, 15.0, v.AsNumber())
}

func TestCompileStructDeclAndConstruct(t *testing.T) {
	v, _ := compileAndRun(t, `
		struct Point { x, y }
		let p = Point{x: 1, y: 2};
		return p.x + p.y;
	`)
	assert.Equal(t, 3.0, v.AsNumber())
}

func TestCompileFieldAssignment(t *testing.T) {
	v, _ := compileAndRun(t, `
		struct Point { x, y }
		mut p = Point{x: 1, y: 2};
		p.x = 9;
		return p.x;
	`)
	assert.Equal(t, 9.0, v.AsNumber())
}

func TestCompileIndexGetAndSet(t *testing.T) {
	v, _ := compileAndRun(t, `
		mut a = [1, 2, 3];
		a[1] = 99;
		return a[1];
	`)
	assert.Equal(t, 99.0, v.AsNumber())
}

func TestCompileLogicalShortCircuit(t *testing.T) {
	v, _ := compileAndRun(t, `
		fn boom() {
			return 1 / 0;
		}
		return false && boom();
	`)
	assert.False(t, v.AsBool())
}

func TestCompileAnonymousConstruct(t *testing.T) {
	v, _ := compileAndRun(t, `
		let p = { a: 1, b: 2 };
		return p.a + p.b;
	`)
	assert.Equal(t, 3.0, v.AsNumber())
}

func TestCompileBreakOutsideLoopErrors(t *testing.T) {
	p := parser.New("t.hk", `break;`)
	prog, err := p.Parse()
	require.NoError(t, err)
	s := vm.New(0, nil, nil)
	_, err = CompileProgram("t.hk", prog, s)
	require.Error(t, err)
}

func TestCompileAssignToUndeclaredNameErrors(t *testing.T) {
	p := parser.New("t.hk", `x = 1;`)
	prog, err := p.Parse()
	require.NoError(t, err)
	s := vm.New(0, nil, nil)
	_, err = CompileProgram("t.hk", prog, s)
	require.Error(t, err)
}
