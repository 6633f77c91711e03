package modules

import (
	"unicode/utf8"

	"github.com/kristofer/hookvm/internal/value"
)

// utf8Module mirrors original_source/core/utf8.c's len/sub pair, a
// rune-aware complement to String's byte-oriented SliceIndex/SliceRange,
// backed by the standard library's unicode/utf8 instead of the
// original's hand-rolled decoder.
func utf8Module() value.Value {
	return namespace([]entry{
		fn("len", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			s, err := stringArg("utf8.len", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			if !utf8.ValidString(s) {
				return value.Nil, value.StatusError, value.Errf(value.ErrSerialization, "utf8.len: invalid UTF-8 sequence")
			}
			return value.Number(float64(utf8.RuneCountInString(s))), value.StatusOK, nil
		}),
		fn("sub", 3, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			s, err := stringArg("utf8.sub", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			if !utf8.ValidString(s) {
				return value.Nil, value.StatusError, value.Errf(value.ErrSerialization, "utf8.sub: invalid UTF-8 sequence")
			}
			start, err := intArg("utf8.sub", args, 1)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			end, err := intArg("utf8.sub", args, 2)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			runes := []rune(s)
			length := int64(len(runes))
			if start < 0 || end < start || end >= length {
				return value.Nil, value.StatusError, value.Errf(value.ErrRange, "utf8.sub: range [%d, %d] out of bounds for length %d", start, end, length)
			}
			return str(string(runes[start : end+1])), value.StatusOK, nil
		}),
	})
}
