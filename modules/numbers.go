package modules

import (
	"math"
	"math/rand"

	"github.com/kristofer/hookvm/internal/value"
)

// numbersModule mirrors original_source/core/numbers.c's exports:
// the float64 constants it pushes verbatim plus the srand/rand PRNG
// pair, backed here by math and math/rand instead of C's rand()/srand().
func numbersModule() value.Value {
	rng := rand.New(rand.NewSource(1))
	return namespace([]entry{
		constant("PI", value.Number(math.Pi)),
		constant("TAU", value.Number(2*math.Pi)),
		constant("LARGEST", value.Number(math.MaxFloat64)),
		constant("SMALLEST", value.Number(math.SmallestNonzeroFloat64)),
		constant("MAX_INTEGER", value.Number(float64(math.MaxInt64))),
		constant("MIN_INTEGER", value.Number(float64(math.MinInt64))),
		fn("srand", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			seed, err := intArg("numbers.srand", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			rng.Seed(seed)
			return value.Nil, value.StatusOK, nil
		}),
		fn("rand", 0, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			return value.Number(rng.Float64()), value.StatusOK, nil
		}),
		fn("abs", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			n, err := numberArg("numbers.abs", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			return value.Number(math.Abs(n)), value.StatusOK, nil
		}),
		fn("sqrt", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			n, err := numberArg("numbers.sqrt", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			if n < 0 {
				return value.Nil, value.StatusError, value.Errf(value.ErrRange, "numbers.sqrt: argument must be non-negative")
			}
			return value.Number(math.Sqrt(n)), value.StatusOK, nil
		}),
		fn("floor", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			n, err := numberArg("numbers.floor", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			return value.Number(math.Floor(n)), value.StatusOK, nil
		}),
		fn("ceil", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			n, err := numberArg("numbers.ceil", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			return value.Number(math.Ceil(n)), value.StatusOK, nil
		}),
		fn("pow", 2, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			base, err := numberArg("numbers.pow", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			exp, err := numberArg("numbers.pow", args, 1)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			return value.Number(math.Pow(base, exp)), value.StatusOK, nil
		}),
	})
}
