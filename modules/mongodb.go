package modules

import "github.com/kristofer/hookvm/internal/value"

// mongodbModule is a contract-only stub: it reproduces
// original_source/extensions/mongodb.c's exported names and arities
// (new_client/get_database/get_collection/insert_one) so scripts
// written against the real module still resolve the import and fail
// with a clear error at the call site, rather than at import time.
// There is no MongoDB driver in the example pack to ground a working
// implementation on (DESIGN.md records this as a dropped domain dep).
func mongodbModule() value.Value {
	unavailable := func(name string) value.NativeFunc {
		return func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
			return value.Nil, value.StatusError, value.Errf(value.ErrType, "mongodb.%s: no MongoDB driver is wired into this build", name)
		}
	}
	return namespace([]entry{
		fn("new_client", 1, unavailable("new_client")),
		fn("get_database", 2, unavailable("get_database")),
		fn("get_collection", 2, unavailable("get_collection")),
		fn("insert_one", 3, unavailable("insert_one")),
	})
}
