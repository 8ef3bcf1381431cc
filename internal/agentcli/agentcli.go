// Package agentcli holds the flag-resolution logic shared by every agent
// binary's cobra command: load an optional config file, look up this
// agent's entry by id, and let any command-line value that was actually
// given override the corresponding config value. Grounded on
// original_source's scan_agent_cmd.cc parse_commandline/parse_config_file,
// which resolve every field (servers, stream, consumer, subject, ...)
// independently the same way.
package agentcli

import (
	"fmt"
	"strings"

	"github.com/olcf/polimor/internal/config"
	"github.com/olcf/polimor/internal/messaging"
)

// Common are the flags every agent binary accepts (§6.4).
type Common struct {
	ConfigPath  string
	AgentID     string
	NATSServers []string
	Stream      string
	Consumer    string
	Subject     string
}

// LoadConfig loads path if non-empty, returning (nil, nil) when no config
// file was given — agents can run purely off flags.
func LoadConfig(path string) (*config.View, error) {
	if path == "" {
		return nil, nil
	}
	return config.Load(path)
}

// ResolveEndpoint returns the comma-joined NATS server list to connect to.
// cliServers, when non-empty, always wins over the config file.
func ResolveEndpoint(cliServers []string, cfg *config.View) (string, error) {
	if len(cliServers) > 0 {
		return strings.Join(cliServers, ","), nil
	}
	if cfg == nil {
		return "", fmt.Errorf("must specify at least one --nats_server")
	}
	servers := cfg.Servers()
	if len(servers) == 0 {
		return "", fmt.Errorf("config has no messaging_service.config.servers entries")
	}
	parts := make([]string, len(servers))
	for i, s := range servers {
		parts[i] = fmt.Sprintf("%s:%d", s.Host, s.Port)
	}
	return strings.Join(parts, ","), nil
}

// AgentEntry looks up id in cfg and verifies it was declared with
// wantType. cfg may be nil, in which case (config.Agent{}, false, nil) is
// returned — the caller must then have every required value from flags.
func AgentEntry(cfg *config.View, id, wantType string) (config.Agent, bool, error) {
	if cfg == nil {
		return config.Agent{}, false, nil
	}
	agentType, agent, ok := cfg.AgentByID(id)
	if !ok {
		return config.Agent{}, false, fmt.Errorf("no agent with id %q in config", id)
	}
	if agentType != wantType {
		return config.Agent{}, false, fmt.Errorf("agent %q is type %q, expected %q", id, agentType, wantType)
	}
	return agent, true, nil
}

// ResolveQueue resolves the stream/consumer/subject triple for one queue
// name. Each of cliStream/cliConsumer/cliSubject independently overrides
// the config's value for that field when non-empty, matching the C++
// agent's per-flag override behavior.
func ResolveQueue(cliStream, cliConsumer, cliSubject string, cfg *config.View, queueName string) (stream, consumer, subject string, err error) {
	var q config.Queue
	if cfg != nil && queueName != "" {
		var ok bool
		q, ok = cfg.Queue(queueName)
		if !ok {
			return "", "", "", fmt.Errorf("config does not define queue %q", queueName)
		}
	}

	stream, err = resolveField(cliStream, q.StreamName, "stream")
	if err != nil {
		return "", "", "", err
	}
	consumer, err = resolveField(cliConsumer, q.ConsumerName, "consumer")
	if err != nil {
		return "", "", "", err
	}
	subject, err = resolveField(cliSubject, q.Subject, "subject")
	if err != nil {
		return "", "", "", err
	}
	return stream, consumer, subject, nil
}

// ResolveBackend picks the messaging backend: an explicit --backend flag
// value wins, else the config file's messaging_service.backend, else NATS.
func ResolveBackend(flagVal string, cfg *config.View) messaging.Backend {
	switch flagVal {
	case "local":
		return messaging.BackendLocal
	case "nats":
		return messaging.BackendNATS
	}
	if cfg != nil && cfg.MessagingBackend() == "local" {
		return messaging.BackendLocal
	}
	return messaging.BackendNATS
}

func resolveField(cliVal, cfgVal, name string) (string, error) {
	if cliVal != "" {
		return cliVal, nil
	}
	if cfgVal != "" {
		return cfgVal, nil
	}
	return "", fmt.Errorf("must specify a %s", name)
}
