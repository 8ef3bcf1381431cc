// Command purge-agent consumes purge messages and removes the named path
// (or, with --dry_run, prints it instead).
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
	"github.com/olcf/polimor/internal/execagent"
	"github.com/olcf/polimor/internal/messaging"
)

func main() {
	var (
		common      agentcli.Common
		backendName string
		dryRun      bool
	)

	root := &cobra.Command{
		Use:   "purge-agent",
		Short: "Remove files named by incoming purge messages",
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
			agent, _, err := agentcli.AgentEntry(cfg, common.AgentID, "purge_agents")
			if err != nil {
				return err
			}

			endpoint, err := agentcli.ResolveEndpoint(common.NATSServers, cfg)
			if err != nil {
				return err
			}
			stream, consumer, subject, err := agentcli.ResolveQueue(
				common.Stream, common.Consumer, common.Subject, cfg, agent.Queue)
			if err != nil {
				return err
			}

			backend := agentcli.ResolveBackend(backendName, cfg)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := messaging.Open(ctx, backend, endpoint, logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			handle, err := svc.CreateSubscriber(ctx, stream, consumer, subject)
			if err != nil {
				return err
			}
			sub := messaging.NewSubscriber[codec.PurgeMessage](handle, codec.DecodePurge)

			receive := func(ctx context.Context) (string, error) {
				msg, err := sub.Receive(ctx)
				if err != nil {
					return "", err
				}
				return msg.Path, nil
			}

			logger.Info("purge-agent: starting", zap.Bool("dry_run", dryRun))
			return execagent.Loop(ctx, "purge-agent", receive, execagent.PurgeArgv, dryRun, logger)
		},
	}

	root.Flags().StringVar(&common.ConfigPath, "config", "", "path to YAML config file")
	root.Flags().StringVar(&common.AgentID, "id", "", "this agent's id in the config file")
	root.Flags().StringArrayVar(&common.NATSServers, "nats_server", nil, "NATS server host:port (repeatable)")
	root.Flags().StringVar(&common.Stream, "stream", "", "stream name override")
	root.Flags().StringVar(&common.Consumer, "consumer", "", "consumer name override")
	root.Flags().StringVar(&common.Subject, "subject", "", "subject name override")
	root.Flags().StringVar(&backendName, "backend", "", `messaging backend: "nats" or "local"`)
	root.Flags().BoolVar(&dryRun, "dry_run", false, "print the path instead of removing it")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
