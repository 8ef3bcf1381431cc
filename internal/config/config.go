// Package config loads and validates the YAML configuration shared by every
// agent binary, then exposes it as a read-only View. The on-disk shape
// mirrors the C++ config_parser contract (version, messaging-service
// backend and servers, queue properties keyed by name, agent properties
// keyed by id) that every PoliMOR deployment has shipped since the
// original implementation.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Error is returned for any problem loading or validating a config file:
// missing file, malformed YAML, schema violation, or a broken cross-
// reference (an agent naming a queue that isn't defined).
type Error struct {
	Path   string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %s", e.Path, e.Reason)
}

// Server is one messaging_service.config.servers[] entry.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Queue is one messaging_service.config.queues.<name> entry.
type Queue struct {
	StreamName   string `yaml:"stream_name"`
	ConsumerName string `yaml:"consumer_name"`
	Subject      string `yaml:"subject"`
}

// Agent is one agents.<type>[] entry. ScanQueue/PurgeQueue/MigrationQueue/
// RecorderQueue are only populated for policy agents, which publish to
// three queues and consume from a fourth.
type Agent struct {
	ID             string `yaml:"id"`
	Queue          string `yaml:"queue"`
	ScanQueue      string `yaml:"scan_queue"`
	PurgeQueue     string `yaml:"purge_queue"`
	MigrationQueue string `yaml:"migration_queue"`
	RecorderQueue  string `yaml:"recorder_queue"`
}

type messagingConfig struct {
	Servers []Server         `yaml:"servers"`
	Queues  map[string]Queue `yaml:"queues"`
}

type messagingService struct {
	Backend string          `yaml:"backend"`
	Config  messagingConfig `yaml:"config"`
}

// fileConfig is the raw shape decoded straight off disk, before the View
// wrapper layer validates cross-references and exposes the by-id/by-name
// lookups the agents actually call.
type fileConfig struct {
	Version          string             `yaml:"version"`
	MessagingService messagingService   `yaml:"messaging_service"`
	Agents           map[string][]Agent `yaml:"agents"`
}

// View is the read-only accessor every agent binary consults at startup.
// It is immutable after Load/LoadBytes succeeds: agents never write their
// config back, and re-reading a changed file means restarting the agent.
type View struct {
	raw fileConfig
}

// Load reads path, validates it against the JSON schema in schema.go, and
// checks the cross-reference invariants (every agent-referenced queue
// exists; every agent id is unique). It returns *Error on any failure.
func Load(path string) (*View, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Path: path, Reason: "file not found"}
		}
		return nil, &Error{Path: path, Reason: err.Error()}
	}
	v, err := LoadBytes(data)
	if err != nil {
		if cerr, ok := err.(*Error); ok {
			cerr.Path = path
			return nil, cerr
		}
		return nil, &Error{Path: path, Reason: err.Error()}
	}
	return v, nil
}

// LoadBytes is Load without the filesystem round trip, used by tests and
// by anything that already has the YAML in memory.
func LoadBytes(data []byte) (*View, error) {
	if err := validateSchema(data); err != nil {
		return nil, &Error{Reason: fmt.Sprintf("schema validation: %v", err)}
	}

	var cfg fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &Error{Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}

	v := &View{raw: cfg}
	if err := v.checkReferences(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *View) checkReferences() error {
	seen := make(map[string]bool)
	for agentType, agents := range v.raw.Agents {
		for _, a := range agents {
			if a.ID == "" {
				return &Error{Reason: fmt.Sprintf("agent of type %q has empty id", agentType)}
			}
			if seen[a.ID] {
				return &Error{Reason: fmt.Sprintf("duplicate agent id %q", a.ID)}
			}
			seen[a.ID] = true

			for _, q := range []string{a.Queue, a.ScanQueue, a.PurgeQueue, a.MigrationQueue, a.RecorderQueue} {
				if q == "" {
					continue
				}
				if _, ok := v.raw.MessagingService.Config.Queues[q]; !ok {
					return &Error{Reason: fmt.Sprintf("agent %q references undefined queue %q", a.ID, q)}
				}
			}
		}
	}
	return nil
}

// Version returns the config schema version string.
func (v *View) Version() string { return v.raw.Version }

// MessagingBackend returns the configured backend name ("nats" or "local").
func (v *View) MessagingBackend() string { return v.raw.MessagingService.Backend }

// Servers returns the configured broker endpoints.
func (v *View) Servers() []Server { return v.raw.MessagingService.Config.Servers }

// Queue looks up a queue definition by name. ok is false if no such queue
// is configured.
func (v *View) Queue(name string) (Queue, bool) {
	q, ok := v.raw.MessagingService.Config.Queues[name]
	return q, ok
}

// AgentTypes lists the agent type keys present under agents.
func (v *View) AgentTypes() []string {
	types := make([]string, 0, len(v.raw.Agents))
	for t := range v.raw.Agents {
		types = append(types, t)
	}
	return types
}

// AgentByID finds the agent entry with the given id along with the type it
// was declared under. ok is false if no agent has that id.
func (v *View) AgentByID(id string) (agentType string, agent Agent, ok bool) {
	for t, agents := range v.raw.Agents {
		for _, a := range agents {
			if a.ID == id {
				return t, a, true
			}
		}
	}
	return "", Agent{}, false
}
