package modules

import (
	"regexp"

	"github.com/kristofer/hookvm/internal/value"
)

// regexpModule mirrors original_source/core/regex.c's new/find/is_match
// trio: new compiles a pattern into a userdata handle, find and
// is_match take that handle back as their first argument. Backed by the
// standard library's regexp package instead of the original's bundled
// Oniguruma-style engine.
func regexpModule() value.Value {
	return namespace([]entry{
		fn("new", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			pattern, err := stringArg("regexp.new", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			re, cerr := regexp.Compile(pattern)
			if cerr != nil {
				return value.Nil, value.StatusError, value.Errf(value.ErrType, "regexp.new: %v", cerr)
			}
			return value.FromUserdata(value.NewUserdata("regexp.Regexp", re, nil)), value.StatusOK, nil
		}),
		fn("find", 2, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			re, err := regexpArg(args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			s, err := stringArg("regexp.find", args, 1)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			m := re.FindString(s)
			if m == "" && !re.MatchString(s) {
				return value.Nil, value.StatusOK, nil
			}
			return str(m), value.StatusOK, nil
		}),
		fn("is_match", 2, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			re, err := regexpArg(args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			s, err := stringArg("regexp.is_match", args, 1)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			return value.Bool(re.MatchString(s)), value.StatusOK, nil
		}),
	})
}

func regexpArg(args []value.Value, i int) (*regexp.Regexp, error) {
	if i >= len(args) {
		return nil, arityError("regexp", i+1, len(args))
	}
	if args[i].Type() != value.TypeUserdata || args[i].AsUserdata().Tag() != "regexp.Regexp" {
		return nil, argError("regexp", i, "a regexp handle", args[i])
	}
	return args[i].AsUserdata().Ptr().(*regexp.Regexp), nil
}
