package trajectoryfollower

import (
	"fmt"
	"time"

	"github.com/openpass-sim/kernel/internal/binding"
)

// init registers this component under the "trajectoryfollower" name in
// the static binding registry, so a scenario configured with
// libraries["model"] containing {name: "trajectoryfollower"} resolves
// without an external plug-in path. CreateInstance expects a single
// Config passed as the first variadic arg.
func init() {
	binding.Register(binding.CategoryModel, "trajectoryfollower",
		func() string { return "1.0.0" },
		createInstance,
		func(impl interface{}) {},
	)
}

func createInstance(info *binding.RuntimeInfo, cb *binding.Callbacks, args ...interface{}) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("trajectoryfollower: CreateInstance requires a Config arg")
	}
	cfg, ok := args[0].(Config)
	if !ok {
		return nil, fmt.Errorf("trajectoryfollower: CreateInstance arg[0] must be Config")
	}
	if len(cfg.Trajectory) == 0 {
		return nil, fmt.Errorf("trajectoryfollower: empty trajectory")
	}
	if cfg.CycleTime <= 0 {
		cfg.CycleTime = 100 * time.Millisecond
	}
	return New(cfg), nil
}
