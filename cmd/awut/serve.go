package main

import (
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/awut-validate/internal/logging"
	"github.com/danielpatrickdp/awut-validate/internal/rpc"
	"github.com/danielpatrickdp/awut-validate/internal/runner"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the checks over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := a.openStore()
			if err != nil {
				return err
			}
			if st != nil {
				defer logging.SafeClose(st, a.logger, "close store")
			}

			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}

			srv := rpc.NewServer(runner.New(a.cfg, st, a.logger), a.logger)
			a.logger.Info("serving", slog.String("addr", lis.Addr().String()), slog.String("service", rpc.ServiceName))
			return rpc.Serve(ctx, rpc.NewGRPCServer(srv, a.logger), lis)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:50071", "listen address")
	return cmd
}
