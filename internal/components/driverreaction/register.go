package driverreaction

import (
	"fmt"
	"time"

	"github.com/openpass-sim/kernel/internal/binding"
)

// init registers this component under the "driverreaction" name in the
// static binding registry, so a scenario configured with
// libraries["model"] containing {name: "driverreaction"} resolves without
// an external plug-in path. CreateInstance expects a single Config and
// a RandomSource passed through binding.Factory's variadic args.
func init() {
	binding.Register(binding.CategoryModel, "driverreaction",
		func() string { return "1.0.0" },
		createInstance,
		func(impl interface{}) {},
	)
}

func createInstance(info *binding.RuntimeInfo, cb *binding.Callbacks, args ...interface{}) (interface{}, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("driverreaction: CreateInstance requires (Config, RandomSource) args")
	}
	cfg, ok := args[0].(Config)
	if !ok {
		return nil, fmt.Errorf("driverreaction: CreateInstance arg[0] must be Config")
	}
	rng, ok := args[1].(RandomSource)
	if !ok {
		return nil, fmt.Errorf("driverreaction: CreateInstance arg[1] must be RandomSource")
	}
	if cfg.CycleTime <= 0 {
		cfg.CycleTime = 100 * time.Millisecond
	}
	return New(cfg, rng), nil
}
