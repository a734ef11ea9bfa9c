package rpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/awut-validate/internal/logging"
	"github.com/danielpatrickdp/awut-validate/internal/report"
	"github.com/danielpatrickdp/awut-validate/internal/runner"
	"github.com/danielpatrickdp/awut-validate/internal/scorecard"
)

// #region replies
// CheckReply is the RunCheck response body.
type CheckReply struct {
	Check  string         `json:"check"`
	Status string         `json:"status"`
	Reason string         `json:"reason,omitempty"`
	Report map[string]any `json:"report,omitempty"`
}

// RunReply is the RunAll response body.
type RunReply struct {
	RunID     string              `json:"run_id"`
	Passed    bool                `json:"passed"`
	Scorecard scorecard.Scorecard `json:"scorecard"`
	Errored   []string            `json:"errored,omitempty"`
}

// #endregion replies

// #region server
// Server implements ValidationServer on top of a runner. Calls are
// serialized because every check writes to fixed output paths.
type Server struct {
	runner *runner.Runner
	logger *slog.Logger
	mu     sync.Mutex
}

// NewServer wraps r.
func NewServer(r *runner.Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{runner: r, logger: logger}
}

// RunCheck implements ValidationServer.
func (s *Server) RunCheck(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := req.GetFields()["check"].GetStringValue()
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "check is required")
	}

	s.mu.Lock()
	o, err := s.runner.RunCheck(ctx, name)
	s.mu.Unlock()
	if err != nil {
		return nil, toStatus(err)
	}

	reply := CheckReply{Check: o.Check, Status: o.Status, Reason: o.Reason}
	if o.Report != nil {
		body, err := report.ToStruct(o.Report)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		reply.Report = body.AsMap()
	}
	return encode(reply)
}

// RunAll implements ValidationServer.
func (s *Server) RunAll(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s.mu.Lock()
	res, err := s.runner.Run(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(RunReply{
		RunID:     res.RunID,
		Passed:    res.Scorecard.Passed,
		Scorecard: res.Scorecard,
		Errored:   res.Errored(),
	})
}

func encode(v any) (*structpb.Struct, error) {
	s, err := report.ToStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return s, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, runner.ErrUnknownCheck):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}
	return status.Error(codes.Internal, err.Error())
}

// #endregion server

// #region serve
// NewGRPCServer returns a grpc.Server with srv registered and calls logged.
func NewGRPCServer(srv ValidationServer, logger *slog.Logger) *grpc.Server {
	g := grpc.NewServer(grpc.UnaryInterceptor(logCalls(logger)))
	RegisterValidationServer(g, srv)
	return g
}

// Serve runs g on lis until ctx is done, then stops gracefully.
func Serve(ctx context.Context, g *grpc.Server, lis net.Listener) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			g.GracefulStop()
		case <-done:
		}
	}()
	if err := g.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func logCalls(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logging.LogOperation(logger, "rpc",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

// #endregion serve
