// Command hookvm runs a hookvm script file: it lexes, parses and
// compiles the source with internal/compiler, then interprets the
// resulting chunk.Function with internal/vm.State. Configuration
// follows the teacher's cmd/smog/main.go in spirit (a small, flag-free
// script runner) but takes its flags through the standard library
// flag package per SPEC_FULL.md's AMBIENT STACK section, since the
// pack carries no CLI framework to ground a richer one on.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kristofer/hookvm/internal/chunk"
	"github.com/kristofer/hookvm/internal/compiler/codegen"
	"github.com/kristofer/hookvm/internal/compiler/parser"
	"github.com/kristofer/hookvm/internal/value"
	"github.com/kristofer/hookvm/internal/vm"
	"github.com/kristofer/hookvm/modules"
)

func main() {
	var (
		stackCapacity = flag.Int("stack-capacity", 256, "minimum value-stack capacity (rounded up to a power of two)")
		logLevel      = flag.String("loglevel", "error", "zap log level: debug, info, warn, error")
		disasm        = flag.Bool("disasm", false, "print the compiled chunk's disassembly instead of running it")
		modulePath    = flag.String("module-path", "", "directory searched for user modules (name.hk) before the built-in stdlib modules")
	)
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: hookvm [flags] <script.hk>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := args[0]

	log, err := newLogger(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	source, err := os.ReadFile(path)
	if err != nil {
		log.Error("failed to read script", zap.String("path", path), zap.Error(err))
		os.Exit(1)
	}

	resolver := vm.ModuleResolver(modules.Resolver())
	var fr *fileResolver
	if *modulePath != "" {
		fr = newFileResolver(*modulePath)
		resolver = vm.ChainResolver{fr, resolver}
	}
	state := vm.New(*stackCapacity, resolver, log)
	if fr != nil {
		fr.state = state
	}
	installBuiltins(state)

	fn, err := compile(path, string(source), state)
	if err != nil {
		log.Error("compile error", zap.String("path", path), zap.Error(err))
		os.Exit(1)
	}

	if *disasm {
		fn.FnChunk.Disassemble(os.Stdout, path)
		return
	}

	cl := value.FromClosure(value.NewClosure(fn, nil))
	result, err := state.CallValue(cl, nil)
	if err != nil {
		os.Exit(1)
	}
	if result.Type() != value.TypeNil {
		fmt.Println(value.Print(result, false))
	}
}

// compile runs the parser/codegen pipeline, the "minimal front end"
// SPEC_FULL.md's PACKAGE LAYOUT treats as a load-bearing contract
// rather than a complete grammar (see the codegen package doc
// comment). The parser lexes internally; the CLI never touches
// internal/compiler/lexer directly.
func compile(path, source string, state *vm.State) (*chunk.Function, error) {
	p := parser.New(path, source)
	prog, err := p.Parse()
	if err != nil {
		return nil, err
	}
	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("%d parse error(s): %v", len(errs), errs)
	}
	return codegen.CompileProgram(path, prog, state)
}

// installBuiltins defines the handful of globals every script expects
// regardless of which modules it imports: print/println for
// diagnostics and len for the three sized container types. Grounded on
// the teacher's primitives.go pattern of exposing host functionality as
// VM-callable natives, narrowed to spec.md's core value kinds instead
// of the teacher's full HTTP/crypto/compression surface.
func installBuiltins(state *vm.State) {
	state.DefineGlobal("print", value.FromNative(value.NewNative("print", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
		fmt.Print(value.Print(args[0], false))
		return value.Nil, value.StatusOK, nil
	})))
	state.DefineGlobal("println", value.FromNative(value.NewNative("println", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
		fmt.Println(value.Print(args[0], false))
		return value.Nil, value.StatusOK, nil
	})))
	state.DefineGlobal("len", value.FromNative(value.NewNative("len", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
		switch args[0].Type() {
		case value.TypeString:
			return value.Number(float64(args[0].AsString().Len())), value.StatusOK, nil
		case value.TypeArray:
			return value.Number(float64(args[0].AsArray().Len())), value.StatusOK, nil
		case value.TypeInstance:
			return value.Number(float64(args[0].AsInstance().Struct().Len())), value.StatusOK, nil
		default:
			return value.Nil, value.StatusError, value.Errf(value.ErrType, "len: value of type %s has no length", args[0].TypeName())
		}
	})))
}

// fileResolver resolves an import name to <dir>/<name>.hk, compiling
// and running it as its own top-level program; the program's return
// value becomes the module's value, the same contract the built-in
// stdlib modules satisfy with a namespace object. This is the
// "module-search-path" half of SPEC_FULL.md's CLI configuration
// section.
type fileResolver struct {
	dir   string
	state *vm.State
}

func newFileResolver(dir string) *fileResolver { return &fileResolver{dir: dir} }

func (r *fileResolver) Resolve(name string) (value.Value, error) {
	path := r.dir + string(os.PathSeparator) + name + ".hk"
	source, err := os.ReadFile(path)
	if err != nil {
		return value.Nil, vm.ErrModuleNotFound
	}
	fn, err := compile(path, string(source), r.state)
	if err != nil {
		return value.Nil, err
	}
	cl := value.FromClosure(value.NewClosure(fn, nil))
	return r.state.CallValue(cl, nil)
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		return nil, fmt.Errorf("invalid -loglevel %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
