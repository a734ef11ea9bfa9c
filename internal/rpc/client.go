package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/awut-validate/internal/report"
)

// #region client-struct
// Client wraps the gRPC connection to a validation server.
type Client struct {
	conn   *grpc.ClientConn
	client ValidationClient
}

// #endregion client-struct

// #region constructor
// NewClient connects to addr without transport security. Extra options are
// appended after the credentials.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, client: NewValidationClient(conn)}, nil
}

// NewClientWithService creates a Client with an injected service implementation.
func NewClientWithService(svc ValidationClient) *Client {
	return &Client{client: svc}
}

// Close shuts down the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion constructor

// #region calls
// RunCheck runs one check remotely.
func (c *Client) RunCheck(ctx context.Context, name string) (CheckReply, error) {
	req, err := structpb.NewStruct(map[string]any{"check": name})
	if err != nil {
		return CheckReply{}, err
	}
	resp, err := c.client.RunCheck(ctx, req)
	if err != nil {
		return CheckReply{}, fmt.Errorf("run check rpc: %w", err)
	}
	var reply CheckReply
	if err := report.FromStruct(resp, &reply); err != nil {
		return CheckReply{}, err
	}
	return reply, nil
}

// RunAll runs every check remotely.
func (c *Client) RunAll(ctx context.Context) (RunReply, error) {
	resp, err := c.client.RunAll(ctx, &emptypb.Empty{})
	if err != nil {
		return RunReply{}, fmt.Errorf("run all rpc: %w", err)
	}
	var reply RunReply
	if err := report.FromStruct(resp, &reply); err != nil {
		return RunReply{}, err
	}
	return reply, nil
}

// #endregion calls
