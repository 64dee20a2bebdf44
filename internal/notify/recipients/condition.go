// internal/notify/recipients/condition.go
package recipients

import (
	"encoding/json"

	"github.com/xeipuuv/gojsonschema"
)

// conditionSchema constrains condition blobs to a flat object of string
// values; anything else is treated as unparseable.
const conditionSchema = `{
	"type": "object",
	"additionalProperties": {"type": "string"}
}`

var conditionSchemaLoader = gojsonschema.NewStringLoader(conditionSchema)

// sameFacultyKey, when set to "true", narrows a BY_ROLE rule to users of the
// faculty carried in the event data.
const sameFacultyKey = "SameFaculty"

type conditionLogger interface {
	Warn(msg string, fields map[string]interface{})
}

// condition is a parsed BY_ROLE filter. Guards are exact-match requirements
// against the event data map; SameFaculty narrows the user lookup itself.
type condition struct {
	SameFaculty bool
	Guards      map[string]string
}

// parseCondition validates and decodes a condition blob. A malformed blob
// yields nil — the rule falls back to the unfiltered role set, which fails
// open rather than dropping recipients on a typo.
func parseCondition(raw string, log conditionLogger) *condition {
	if raw == "" {
		return nil
	}

	result, err := gojsonschema.Validate(conditionSchemaLoader, gojsonschema.NewStringLoader(raw))
	if err != nil || !result.Valid() {
		log.Warn("rule condition ignored, not a flat string object", map[string]interface{}{
			"condition": raw,
		})
		return nil
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		log.Warn("rule condition ignored, unmarshal failed", map[string]interface{}{
			"condition": raw,
		})
		return nil
	}

	cond := &condition{Guards: make(map[string]string)}
	for k, v := range fields {
		if k == sameFacultyKey {
			cond.SameFaculty = v == "true"
			continue
		}
		cond.Guards[k] = v
	}
	return cond
}

// matches reports whether every guard holds against the event data.
func (c *condition) matches(data map[string]string) bool {
	if c == nil {
		return true
	}
	for k, want := range c.Guards {
		if data[k] != want {
			return false
		}
	}
	return true
}
