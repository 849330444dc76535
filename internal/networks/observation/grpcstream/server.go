package grpcstream

import (
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ObservationServer is the server-streaming RPC implementation: one
// Observe call per connected client, forwarding every Struct the
// Publisher emits until the client disconnects or the stream errs.
type ObservationServer interface {
	Observe(req *structpb.Struct, stream grpc.ServerStream) error
}

// Server implements ObservationServer over a Publisher.
type Server struct {
	publisher *Publisher
}

// NewServer binds a Server to its Publisher.
func NewServer(p *Publisher) *Server {
	return &Server{publisher: p}
}

// Observe streams every subsequently published Struct to the caller
// until the stream's context is done.
func (s *Server) Observe(req *structpb.Struct, stream grpc.ServerStream) error {
	frames, cancel := s.publisher.Subscribe(64)
	defer cancel()

	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if err := stream.SendMsg(frame); err != nil {
				return err
			}
		}
	}
}

func observeHandler(srv interface{}, stream grpc.ServerStream) error {
	req := new(structpb.Struct)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(ObservationServer).Observe(req, stream)
}

// ServiceDesc is the hand-written grpc.ServiceDesc for the Observation
// service's single server-streaming method (no protoc toolchain is
// available in this environment to generate the usual *_grpc.pb.go
// stub). It is functionally identical to what
// protoc-gen-go-grpc would emit for an `rpc Observe(google.protobuf.Struct)
// returns (stream google.protobuf.Struct)` method.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "openpass.networks.observation.Observation",
	HandlerType: (*ObservationServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Observe",
			Handler:       observeHandler,
			ServerStreams: true,
		},
	},
}

// RegisterObservationServer registers srv on an *grpc.Server under
// ServiceDesc.
func RegisterObservationServer(s *grpc.Server, srv ObservationServer) {
	s.RegisterService(&ServiceDesc, srv)
}
