// Package distsvc exposes the estimation core behind a tiny unary gRPC
// service, demonstrating the out-of-process collaborator boundary spec §1
// draws around the core: callers never link the estimator directly, they
// send a query and a vector id and get back a distance.
//
// The teacher's own RPCs (cmd/longbow) are protoc-generated Arrow Flight
// services; this demo has no .proto toolchain available, so the service
// descriptor and codec are hand-written the way grpc-go's own
// encoding.Codec extension point is designed to be used without protobuf,
// trading generated marshal code for a small registered JSON codec.
package distsvc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec lets this service's messages travel as JSON instead of
// protobuf wire format, since there is no generated .pb.go here.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string { return "json" }

// EstimateDistanceRequest carries a query vector and the id of a database
// vector already loaded into the server's active cluster fixture.
type EstimateDistanceRequest struct {
	Query    []float32 `json:"query"`
	VectorID uint32    `json:"vector_id"`
	Accurate bool      `json:"accurate"`
}

// EstimateDistanceResponse carries the resulting distance estimate.
type EstimateDistanceResponse struct {
	Distance float32 `json:"distance"`
}

// Server is implemented by anything that can answer an EstimateDistance
// call; cmd/saqbench's main.go supplies the implementation backed by a
// live cluster.Estimator.
type Server interface {
	EstimateDistance(context.Context, *EstimateDistanceRequest) (*EstimateDistanceResponse, error)
}

// ServiceDesc is the hand-written equivalent of a protoc-generated
// _ServiceDesc, registered with grpc.Server.RegisterService the same way
// generated code would.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "saqbench.DistanceService",
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "EstimateDistance",
			Handler:    estimateDistanceHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "saqbench/distsvc/service.go",
}

func estimateDistanceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(EstimateDistanceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).EstimateDistance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/saqbench.DistanceService/EstimateDistance"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).EstimateDistance(ctx, req.(*EstimateDistanceRequest))
	}
	return interceptor(ctx, in, info, handler)
}
