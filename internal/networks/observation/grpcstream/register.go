package grpcstream

import (
	"google.golang.org/grpc"

	"github.com/openpass-sim/kernel/internal/binding"
)

// init registers this transport as the "grpcstream" observation library
// in the static binding registry, so a scenario configured
// with libraries["observation"] containing {name: "grpcstream"} resolves
// without an external plug-in path. CreateInstance accepts an optional
// *grpc.Server collaborator (internal/orchestrator's
// WithObservationCollaborators); when present, the new Server registers
// itself on it immediately so the caller's already-listening gRPC
// endpoint starts serving Observe calls for this invocation's frames.
func init() {
	binding.Register(binding.CategoryObservation, "grpcstream",
		func() string { return "1.0.0" },
		createInstance,
		func(impl interface{}) {},
	)
}

func createInstance(info *binding.RuntimeInfo, cb *binding.Callbacks, args ...interface{}) (interface{}, error) {
	publisher := NewPublisher()
	srv := NewServer(publisher)
	for _, a := range args {
		if grpcSrv, ok := a.(*grpc.Server); ok {
			RegisterObservationServer(grpcSrv, srv)
		}
	}
	return srv, nil
}
