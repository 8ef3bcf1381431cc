package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// configSchema is the JSON schema the §6.3 YAML shape is validated against
// before it is ever decoded into fileConfig. Validating against the
// schema first means a malformed file is rejected with every violation
// listed at once, rather than the decoder bailing out on the first bad
// field.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "messaging_service", "agents"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "messaging_service": {
      "type": "object",
      "required": ["backend", "config"],
      "properties": {
        "backend": {"type": "string", "enum": ["nats", "local"]},
        "config": {
          "type": "object",
          "required": ["servers", "queues"],
          "properties": {
            "servers": {
              "type": "array",
              "items": {
                "type": "object",
                "required": ["host", "port"],
                "properties": {
                  "host": {"type": "string", "minLength": 1},
                  "port": {"type": "integer", "minimum": 1, "maximum": 65535}
                }
              }
            },
            "queues": {
              "type": "object",
              "additionalProperties": {
                "type": "object",
                "required": ["stream_name", "consumer_name", "subject"],
                "properties": {
                  "stream_name": {"type": "string", "minLength": 1},
                  "consumer_name": {"type": "string", "minLength": 1},
                  "subject": {"type": "string", "minLength": 1}
                }
              }
            }
          }
        }
      }
    },
    "agents": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["id"],
          "properties": {
            "id": {"type": "string", "minLength": 1},
            "queue": {"type": "string"},
            "scan_queue": {"type": "string"},
            "purge_queue": {"type": "string"},
            "migration_queue": {"type": "string"},
            "recorder_queue": {"type": "string"}
          }
        }
      }
    }
  }
}`

// validateSchema converts yamlData to its JSON equivalent and checks it
// against configSchema, returning every violation joined into one error.
func validateSchema(yamlData []byte) error {
	var doc any
	if err := yaml.Unmarshal(yamlData, &doc); err != nil {
		return fmt.Errorf("parsing YAML for schema check: %w", err)
	}
	jsonDoc, err := json.Marshal(normalizeYAML(doc))
	if err != nil {
		return fmt.Errorf("converting YAML to JSON for schema check: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(configSchema)
	docLoader := gojsonschema.NewBytesLoader(jsonDoc)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("running schema validation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

// normalizeYAML recursively converts map[string]interface{} keyed maps
// (which yaml.v3 may nest as map[any]any in some decode paths) into
// map[string]any so encoding/json can marshal them.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[k] = normalizeYAML(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(vv)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = normalizeYAML(vv)
		}
		return out
	default:
		return val
	}
}
