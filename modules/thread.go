package modules

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kristofer/hookvm/internal/value"
)

// stateMu serializes every native-initiated call back into a script
// closure. spec.md's core explicitly treats concurrent evaluation as a
// Non-goal ("one State must never be entered concurrently from
// multiple goroutines"); new_thread still spawns a goroutine
// (grounded on original_source/core/hk_threading.c's pthread_create
// wrapper) but the callback it eventually runs is funneled through this
// mutex so two threads' callbacks into the same State can never
// interleave, trading true concurrency for the core's invariant rather
// than silently breaking it.
var stateMu sync.Mutex

type threadHandle struct {
	done chan struct{}
	err  error
}

// threadModule mirrors hk_threading.c's new_thread/new_mutex/new_cond/
// join/lock/unlock/wait/signal surface over sync.Mutex/sync.Cond and a
// goroutine per new_thread, plus a memoize primitive backed by
// x/sync/singleflight that the original has no equivalent for.
func threadModule() value.Value {
	group := &singleflight.Group{}
	return namespace([]entry{
		fn("new_thread", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			callee, err := callableArg("threading.new_thread", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			callee.Retain()
			th := &threadHandle{done: make(chan struct{})}
			go func() {
				defer close(th.done)
				defer callee.Release()
				stateMu.Lock()
				defer stateMu.Unlock()
				_, th.err = h.CallValue(callee, nil)
			}()
			return value.FromUserdata(value.NewUserdata("threading.thread", th, nil)), value.StatusOK, nil
		}),
		fn("join", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			th, err := threadArg(args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			<-th.done
			if th.err != nil {
				return value.Nil, value.StatusError, th.err
			}
			return value.Nil, value.StatusOK, nil
		}),
		fn("new_mutex", 0, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			return value.FromUserdata(value.NewUserdata("threading.mutex", &sync.Mutex{}, nil)), value.StatusOK, nil
		}),
		fn("lock", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			m, err := mutexArg(args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			m.Lock()
			return value.Nil, value.StatusOK, nil
		}),
		fn("unlock", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			m, err := mutexArg(args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			m.Unlock()
			return value.Nil, value.StatusOK, nil
		}),
		fn("new_cond", 0, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			return value.FromUserdata(value.NewUserdata("threading.cond", sync.NewCond(&sync.Mutex{}), nil)), value.StatusOK, nil
		}),
		fn("wait", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			c, err := condArg(args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			c.Wait()
			return value.Nil, value.StatusOK, nil
		}),
		fn("signal", 1, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			c, err := condArg(args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			c.Signal()
			return value.Nil, value.StatusOK, nil
		}),
		fn("memoize", 2, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			key, err := stringArg("threading.memoize", args, 0)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			callee, err := callableArg("threading.memoize", args, 1)
			if err != nil {
				return value.Nil, value.StatusError, err
			}
			result, callErr, _ := group.Do(key, func() (any, error) {
				stateMu.Lock()
				defer stateMu.Unlock()
				return h.CallValue(callee, nil)
			})
			if callErr != nil {
				return value.Nil, value.StatusError, callErr
			}
			return result.(value.Value), value.StatusOK, nil
		}),
	})
}

func threadArg(args []value.Value, i int) (*threadHandle, error) {
	if i >= len(args) {
		return nil, arityError("threading", i+1, len(args))
	}
	if args[i].Type() != value.TypeUserdata || args[i].AsUserdata().Tag() != "threading.thread" {
		return nil, argError("threading", i, "a thread handle", args[i])
	}
	return args[i].AsUserdata().Ptr().(*threadHandle), nil
}

func mutexArg(args []value.Value, i int) (*sync.Mutex, error) {
	if i >= len(args) {
		return nil, arityError("threading", i+1, len(args))
	}
	if args[i].Type() != value.TypeUserdata || args[i].AsUserdata().Tag() != "threading.mutex" {
		return nil, argError("threading", i, "a mutex handle", args[i])
	}
	return args[i].AsUserdata().Ptr().(*sync.Mutex), nil
}

func condArg(args []value.Value, i int) (*sync.Cond, error) {
	if i >= len(args) {
		return nil, arityError("threading", i+1, len(args))
	}
	if args[i].Type() != value.TypeUserdata || args[i].AsUserdata().Tag() != "threading.cond" {
		return nil, argError("threading", i, "a condition-variable handle", args[i])
	}
	return args[i].AsUserdata().Ptr().(*sync.Cond), nil
}
