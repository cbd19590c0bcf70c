package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/xtding233/rngcrack/internal/config"
	"github.com/xtding233/rngcrack/internal/enchant"
	"github.com/xtding233/rngcrack/internal/session"
)

var rpcRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rngcrack_rpc_requests_total",
	Help: "gRPC requests by method and status code",
}, []string{"method", "code"})

// Server adapts session.Service to CrackerServer.
type Server struct {
	svc *session.Service
}

var _ CrackerServer = (*Server)(nil)

func NewServer(svc *session.Service) *Server { return &Server{svc: svc} }

// NewGRPCServer builds a grpc.Server with the Cracker and health services
// registered and request logging installed.
func NewGRPCServer(svc *session.Service, log *slog.Logger) (*grpc.Server, *health.Server) {
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(logInterceptor(log)))
	RegisterCrackerServer(gs, NewServer(svc))
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return gs, hs
}

func logInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		rpcRequests.WithLabelValues(info.FullMethod, code.String()).Inc()
		log.Debug("rpc", "method", info.FullMethod, "code", code.String(), "elapsed", time.Since(start))
		return resp, err
	}
}

// toStatus maps service errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrSessionNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, session.ErrNoPlan):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, session.ErrBadRequest),
		errors.Is(err, enchant.ErrUnknownItem),
		errors.Is(err, enchant.ErrUnknownEnchantment),
		errors.Is(err, config.ErrConfig):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// decode copies a Struct into a request type through its JSON form.
func decode(in *structpb.Struct, v any) error {
	b, err := in.MarshalJSON()
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if err := json.Unmarshal(b, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	return nil
}

func encode(v any, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(b); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func sessionID(in *structpb.Struct) (string, error) {
	id := in.GetFields()["id"].GetStringValue()
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "missing id")
	}
	return id, nil
}

func (s *Server) CreateSession(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req session.CreateRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return encode(s.svc.Create(req))
}

func (s *Server) GetState(_ context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	return encode(s.svc.Get(in.GetValue()))
}

func (s *Server) Observe(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := sessionID(in)
	if err != nil {
		return nil, err
	}
	var req session.ObserveRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return encode(s.svc.Observe(id, req))
}

func (s *Server) Finalize(_ context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	return encode(s.svc.Finalized(in.GetValue()))
}

func (s *Server) Steps(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := sessionID(in)
	if err != nil {
		return nil, err
	}
	var req session.StepsRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return encode(s.svc.Steps(id, req))
}

func (s *Server) Trusted(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := sessionID(in)
	if err != nil {
		return nil, err
	}
	var req session.TrustedRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return encode(s.svc.Trusted(id, req))
}

func (s *Server) Reset(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := sessionID(in)
	if err != nil {
		return nil, err
	}
	var req session.ResetRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return encode(s.svc.Reset(id, req))
}

func (s *Server) Plan(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := sessionID(in)
	if err != nil {
		return nil, err
	}
	var req session.PlanRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return encode(s.svc.Plan(id, req))
}

func (s *Server) Tick(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := sessionID(in)
	if err != nil {
		return nil, err
	}
	var req session.TickRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return encode(s.svc.Tick(id, req))
}

func (s *Server) DeleteSession(_ context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.svc.Delete(in.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}
