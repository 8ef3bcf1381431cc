// Command recorder-agent fans incoming recorder messages out across N
// SQLite-backed shards by path hash, then runs one writer per shard,
// mirroring the original agent's per-shard db0/db1/db2 layout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/olcf/polimor/internal/agentcli"
	"github.com/olcf/polimor/internal/codec"
	"github.com/olcf/polimor/internal/messaging"
	"github.com/olcf/polimor/internal/recorder"
)

func main() {
	var (
		common      agentcli.Common
		backendName string
		dbDir       string
		shardCount  int
	)

	root := &cobra.Command{
		Use:   "recorder-agent",
		Short: "Fan recorder messages out to per-shard SQLite catalogs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if shardCount <= 0 {
				return fmt.Errorf("--shards must be positive")
			}

			cfg, err := agentcli.LoadConfig(common.ConfigPath)
			if err != nil {
				return err
			}
			agent, _, err := agentcli.AgentEntry(cfg, common.AgentID, "recording_agents")
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

			inHandle, err := svc.CreateSubscriber(ctx, stream, consumer, subject)
			if err != nil {
				return err
			}
			inSub := messaging.NewSubscriber[codec.RecorderMessage](inHandle, codec.DecodeRecorder)

			shardPubs := make([]*messaging.Publisher[codec.RecorderMessage], shardCount)
			writers := make([]*recorder.Writer, shardCount)
			for i := 0; i < shardCount; i++ {
				shardSubject := fmt.Sprintf("%s.shard%d", subject, i)
				shardStream := fmt.Sprintf("%s_shard%d", stream, i)
				shardConsumer := fmt.Sprintf("%s_shard%d", consumer, i)

				pubHandle, err := svc.CreatePublisher(ctx, shardStream, shardSubject)
				if err != nil {
					return fmt.Errorf("shard %d publisher: %w", i, err)
				}
				shardPubs[i] = messaging.NewPublisher[codec.RecorderMessage](pubHandle, codec.EncodeRecorder)

				subHandle, err := svc.CreateSubscriber(ctx, shardStream, shardConsumer, shardSubject)
				if err != nil {
					return fmt.Errorf("shard %d subscriber: %w", i, err)
				}
				shardSub := messaging.NewSubscriber[codec.RecorderMessage](subHandle, codec.DecodeRecorder)

				dsn := fmt.Sprintf("%s/db%d.sqlite", dbDir, i)
				w, err := recorder.OpenWriter(dsn, shardSub, logger)
				if err != nil {
					return fmt.Errorf("shard %d writer: %w", i, err)
				}
				defer w.Close()
				writers[i] = w
			}

			fanOut, err := recorder.NewFanOut(inSub, shardPubs, logger)
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return fanOut.Run(gctx) })
			for _, w := range writers {
				w := w
				g.Go(func() error { return w.Run(gctx) })
			}

			logger.Info("recorder-agent: starting", zap.Int("shards", shardCount))
			return g.Wait()
		},
	}

	root.Flags().StringVar(&common.ConfigPath, "config", "", "path to YAML config file")
	root.Flags().StringVar(&common.AgentID, "id", "", "this agent's id in the config file")
	root.Flags().StringArrayVar(&common.NATSServers, "nats_server", nil, "NATS server host:port (repeatable)")
	root.Flags().StringVar(&common.Stream, "stream", "", "stream name override")
	root.Flags().StringVar(&common.Consumer, "consumer", "", "consumer name override")
	root.Flags().StringVar(&common.Subject, "subject", "", "subject name override")
	root.Flags().StringVar(&backendName, "backend", "", `messaging backend: "nats" or "local"`)
	root.Flags().StringVar(&dbDir, "db_dir", "/var/lib/polimor", "directory holding per-shard SQLite files")
	root.Flags().IntVar(&shardCount, "shards", 3, "number of recorder shards")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
