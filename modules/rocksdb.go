package modules

import "github.com/kristofer/hookvm/internal/value"

// rocksdbModule is a contract-only stub. The original
// original_source/extensions/rocksdb.c is itself a placeholder
// (a single "dummy" native with no real RocksDB binding), so this
// keeps that shape exactly: one zero-arity export that succeeds, kept
// only so `import "rocksdb"` resolves the way the original distribution
// does.
func rocksdbModule() value.Value {
	return namespace([]entry{
		fn("dummy", 0, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			return value.Nil, value.StatusOK, nil
		}),
	})
}
