// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// registrySchema rejects malformed seed files before anything reaches the
// database. Buckets and kinds are closed sets; everything else is free text.
const registrySchema = `{
	"type": "object",
	"required": ["version", "configurations"],
	"properties": {
		"version": {"type": "string"},
		"lastUpdated": {"type": "string"},
		"configurations": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["eventName", "subjectTemplate", "bodyTemplate", "rules"],
				"properties": {
					"eventName": {"type": "string", "minLength": 1},
					"subjectTemplate": {"type": "string"},
					"bodyTemplate": {"type": "string"},
					"active": {"type": "boolean"},
					"rules": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["bucket", "kind", "value"],
							"properties": {
								"bucket": {"enum": ["TO", "CC", "BCC"]},
								"kind": {"enum": ["BY_ROLE", "BY_ENTITY_RELATION", "FIXED_EMAIL", "EVENT_PARTICIPANT"]},
								"value": {"type": "string", "minLength": 1},
								"condition": {
									"type": "object",
									"additionalProperties": {"type": "string"}
								},
								"priority": {"type": "integer", "minimum": 0}
							}
						}
					}
				}
			}
		}
	}
}`

// LoadRegistry reads and validates a configuration seed file.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}

	var reg ConfigRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}
	return &reg, nil
}

// Validate checks raw registry JSON against the schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(registrySchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("invalid registry: %s", strings.Join(msgs, "; "))
	}
	return nil
}
