package stochastics

import "github.com/openpass-sim/kernel/internal/binding"

// init registers Default as the "default" stochastics library in the
// static binding registry, so a scenario configured with
// libraries["stochastics"] = [{name: "default"}] resolves without an
// external plug-in path.
func init() {
	binding.Register(binding.CategoryStochastics, "default",
		func() string { return "1.0.0" },
		func(info *binding.RuntimeInfo, cb *binding.Callbacks, args ...interface{}) (interface{}, error) {
			return New(1), nil
		},
		func(impl interface{}) {},
	)
}
