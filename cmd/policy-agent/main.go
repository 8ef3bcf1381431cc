// Command policy-agent consumes scan messages, evaluates each against the
// purge/migrate policy, and republishes a decision message when one
// applies.
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
	"github.com/olcf/polimor/internal/messaging"
	"github.com/olcf/polimor/internal/policy"
)

func main() {
	var (
		common                            agentcli.Common
		scanStream, scanConsumer          string
		scanSubject                       string
		purgeStream, purgeSubject         string
		migrationStream, migrationSubject string
		purgeConsumer, migrationConsumer  string
		recorderStream, recorderConsumer  string
		recorderSubject                   string
		backendName                       string
	)

	root := &cobra.Command{
		Use:   "policy-agent",
		Short: "Evaluate scan messages against the purge/migrate policy",
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
			agent, _, err := agentcli.AgentEntry(cfg, common.AgentID, "policy_agents")
			if err != nil {
				return err
			}

			endpoint, err := agentcli.ResolveEndpoint(common.NATSServers, cfg)
			if err != nil {
				return err
			}

			sStream, sConsumer, sSubject, err := agentcli.ResolveQueue(scanStream, scanConsumer, scanSubject, cfg, agent.ScanQueue)
			if err != nil {
				return fmt.Errorf("scan queue: %w", err)
			}
			pStream, _, pSubject, err := agentcli.ResolveQueue(purgeStream, purgeConsumer, purgeSubject, cfg, agent.PurgeQueue)
			if err != nil {
				return fmt.Errorf("purge queue: %w", err)
			}
			mStream, _, mSubject, err := agentcli.ResolveQueue(migrationStream, migrationConsumer, migrationSubject, cfg, agent.MigrationQueue)
			if err != nil {
				return fmt.Errorf("migration queue: %w", err)
			}
			rStream, _, rSubject, err := agentcli.ResolveQueue(recorderStream, recorderConsumer, recorderSubject, cfg, agent.RecorderQueue)
			if err != nil {
				return fmt.Errorf("recorder queue: %w", err)
			}

			backend := agentcli.ResolveBackend(backendName, cfg)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := messaging.Open(ctx, backend, endpoint, logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			scanHandle, err := svc.CreateSubscriber(ctx, sStream, sConsumer, sSubject)
			if err != nil {
				return err
			}
			scanSub := messaging.NewSubscriber[codec.ScanMessage](scanHandle, codec.DecodeScan)

			purgeHandle, err := svc.CreatePublisher(ctx, pStream, pSubject)
			if err != nil {
				return err
			}
			purgePub := messaging.NewPublisher[codec.PurgeMessage](purgeHandle, codec.EncodePurge)

			migrateHandle, err := svc.CreatePublisher(ctx, mStream, mSubject)
			if err != nil {
				return err
			}
			migratePub := messaging.NewPublisher[codec.MigrationMessage](migrateHandle, codec.EncodeMigration)

			recorderHandle, err := svc.CreatePublisher(ctx, rStream, rSubject)
			if err != nil {
				return err
			}
			recorderPub := messaging.NewPublisher[codec.RecorderMessage](recorderHandle, codec.EncodeRecorder)

			engine := policy.New(scanSub, purgePub, migratePub, recorderPub, logger)
			logger.Info("policy-agent: starting")
			return engine.Run(ctx)
		},
	}

	root.Flags().StringVar(&common.ConfigPath, "config", "", "path to YAML config file")
	root.Flags().StringVar(&common.AgentID, "id", "", "this agent's id in the config file")
	root.Flags().StringArrayVar(&common.NATSServers, "nats_server", nil, "NATS server host:port (repeatable)")
	root.Flags().StringVar(&backendName, "backend", "", `messaging backend: "nats" or "local"`)

	root.Flags().StringVar(&scanStream, "scan_stream", "", "scan queue stream override")
	root.Flags().StringVar(&scanConsumer, "scan_consumer", "", "scan queue consumer override")
	root.Flags().StringVar(&scanSubject, "scan_subject", "", "scan queue subject override")
	root.Flags().StringVar(&purgeStream, "purge_stream", "", "purge queue stream override")
	root.Flags().StringVar(&purgeConsumer, "purge_consumer", "", "purge queue consumer override")
	root.Flags().StringVar(&purgeSubject, "purge_subject", "", "purge queue subject override")
	root.Flags().StringVar(&migrationStream, "migration_stream", "", "migration queue stream override")
	root.Flags().StringVar(&migrationConsumer, "migration_consumer", "", "migration queue consumer override")
	root.Flags().StringVar(&migrationSubject, "migration_subject", "", "migration queue subject override")
	root.Flags().StringVar(&recorderStream, "recorder_stream", "", "recorder queue stream override")
	root.Flags().StringVar(&recorderConsumer, "recorder_consumer", "", "recorder queue consumer override")
	root.Flags().StringVar(&recorderSubject, "recorder_subject", "", "recorder queue subject override")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
