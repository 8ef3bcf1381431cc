// Command scan-agent walks a directory tree with `lfs find` on a fixed
// interval and publishes one ScanMessage per reported entry.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/olcf/polimor/internal/agentcli"
	"github.com/olcf/polimor/internal/codec"
	"github.com/olcf/polimor/internal/interval"
	"github.com/olcf/polimor/internal/messaging"
	"github.com/olcf/polimor/internal/scan"
)

func main() {
	var (
		common       agentcli.Common
		executable   string
		directory    string
		intervalSpec string
		backendName  string
	)

	root := &cobra.Command{
		Use:   "scan-agent",
		Short: "Walk a directory tree with lfs find and publish scan messages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := agentcli.LoadConfig(common.ConfigPath)
			if err != nil {
				return err
			}
			agent, _, err := agentcli.AgentEntry(cfg, common.AgentID, "scan_agents")
			if err != nil {
				return err
			}

			endpoint, err := agentcli.ResolveEndpoint(common.NATSServers, cfg)
			if err != nil {
				return err
			}
			stream, _, subject, err := agentcli.ResolveQueue(
				common.Stream, common.Consumer, common.Subject, cfg, agent.Queue)
			if err != nil {
				return err
			}

			backend := agentcli.ResolveBackend(backendName, cfg)

			iv, err := interval.Parse(intervalSpec)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := messaging.Open(ctx, backend, endpoint, logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			handle, err := svc.CreatePublisher(ctx, stream, subject)
			if err != nil {
				return err
			}
			pub := messaging.NewPublisher[codec.ScanMessage](handle, codec.EncodeScan)

			a := scan.New(executable, directory, iv, pub, logger)
			logger.Info("scan-agent: starting", zap.String("directory", directory), zap.Duration("interval", iv))
			return a.Run(ctx)
		},
	}

	root.Flags().StringVar(&common.ConfigPath, "config", "", "path to YAML config file")
	root.Flags().StringVar(&common.AgentID, "id", "", "this agent's id in the config file")
	root.Flags().StringArrayVar(&common.NATSServers, "nats_server", nil, "NATS server host:port (repeatable)")
	root.Flags().StringVar(&common.Stream, "stream", "", "stream name override")
	root.Flags().StringVar(&common.Consumer, "consumer", "", "consumer name override")
	root.Flags().StringVar(&common.Subject, "subject", "", "subject name override")
	root.Flags().StringVar(&backendName, "backend", "", `messaging backend: "nats" or "local"`)
	root.Flags().StringVar(&executable, "executable", "", "lfs executable path (default /usr/bin/lfs)")
	root.Flags().StringVar(&directory, "directory", "", "directory to walk")
	root.Flags().StringVar(&intervalSpec, "interval", "1h", "scan interval, e.g. 1d2h30m")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
