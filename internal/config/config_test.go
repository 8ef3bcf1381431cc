package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olcf/polimor/internal/config"
)

const validYAML = `
version: "1"
messaging_service:
  backend: nats
  config:
    servers:
      - host: nats-0.olcf.internal
        port: 4222
    queues:
      scan:
        stream_name: SCAN
        consumer_name: scan-consumer
        subject: scan.events
      purge:
        stream_name: PURGE
        consumer_name: purge-consumer
        subject: purge.cmds
      migrate:
        stream_name: MIGR
        consumer_name: migr-consumer
        subject: migr.cmds
      record:
        stream_name: RECORD
        consumer_name: record-consumer
        subject: record.events
agents:
  scan:
    - id: scan-0
      queue: scan
  policy:
    - id: policy-0
      scan_queue: scan
      purge_queue: purge
      migration_queue: migrate
      recorder_queue: record
  purge:
    - id: purge-0
      queue: purge
  migration:
    - id: migration-0
      queue: migrate
  recording:
    - id: recording-0
      queue: record
`

func TestLoadBytes_Valid(t *testing.T) {
	v, err := config.LoadBytes([]byte(validYAML))
	require.NoError(t, err)
	assert.Equal(t, "1", v.Version())
	assert.Equal(t, "nats", v.MessagingBackend())
	require.Len(t, v.Servers(), 1)
	assert.Equal(t, "nats-0.olcf.internal", v.Servers()[0].Host)

	q, ok := v.Queue("purge")
	require.True(t, ok)
	assert.Equal(t, "PURGE", q.StreamName)

	agentType, agent, ok := v.AgentByID("policy-0")
	require.True(t, ok)
	assert.Equal(t, "policy", agentType)
	assert.Equal(t, "scan", agent.ScanQueue)
	assert.Equal(t, "record", agent.RecorderQueue)
}

func TestLoadBytes_RejectsUnknownQueueReference(t *testing.T) {
	bad := validYAML + "\n  strays:\n    - id: stray-0\n      queue: does-not-exist\n"
	_, err := config.LoadBytes([]byte(bad))
	require.Error(t, err)
}

func TestLoadBytes_RejectsDuplicateAgentID(t *testing.T) {
	bad := `
version: "1"
messaging_service:
  backend: local
  config:
    servers: []
    queues:
      scan:
        stream_name: SCAN
        consumer_name: c
        subject: s
agents:
  scan:
    - id: dup
      queue: scan
    - id: dup
      queue: scan
`
	_, err := config.LoadBytes([]byte(bad))
	require.Error(t, err)
}

func TestLoadBytes_RejectsBadBackend(t *testing.T) {
	bad := `
version: "1"
messaging_service:
  backend: carrier-pigeon
  config:
    servers: []
    queues: {}
agents: {}
`
	_, err := config.LoadBytes([]byte(bad))
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/path.yaml")
	require.Error(t, err)
	var cerr *config.Error
	require.ErrorAs(t, err, &cerr)
}
