package modules

import (
	"github.com/kristofer/hookvm/internal/value"
	"github.com/kristofer/hookvm/internal/vm"
)

// Resolver builds the vm.MapResolver covering every stdlib module this
// package implements, keyed by the name scripts pass to `import`. An
// embedder wires it in directly, or chains it behind its own resolver
// via vm.ChainResolver for app-specific modules.
func Resolver() vm.MapResolver {
	return vm.MapResolver{
		"numbers": func() (value.Value, error) { return numbersModule(), nil },
		"utf8":    func() (value.Value, error) { return utf8Module(), nil },
		"regexp":  func() (value.Value, error) { return regexpModule(), nil },
		"encoding": func() (value.Value, error) { return encodingModule(), nil },
		"ecc":      func() (value.Value, error) { return eccModule(), nil },
		"threading": func() (value.Value, error) { return threadModule(), nil },
		"redis":    func() (value.Value, error) { return redisModule(), nil },
		"mongodb":  func() (value.Value, error) { return mongodbModule(), nil },
		"rocksdb":  func() (value.Value, error) { return rocksdbModule(), nil },
	}
}
