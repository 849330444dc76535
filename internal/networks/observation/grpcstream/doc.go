// Package grpcstream implements the observation network's live
// telemetry transport: a gRPC server-streaming service that fans out
// per-tick agent frames to subscribed observers.
package grpcstream
