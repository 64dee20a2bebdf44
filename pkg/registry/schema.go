// pkg/registry/schema.go
package registry

// ConfigRegistry is the file format for seeding notification configurations.
type ConfigRegistry struct {
	Version        string        `json:"version"`
	LastUpdated    string        `json:"lastUpdated"`
	Configurations []ConfigEntry `json:"configurations"`
}

type ConfigEntry struct {
	EventName       string      `json:"eventName"`
	SubjectTemplate string      `json:"subjectTemplate"`
	BodyTemplate    string      `json:"bodyTemplate"`
	Active          bool        `json:"active"`
	Rules           []RuleEntry `json:"rules"`
}

type RuleEntry struct {
	Bucket    string            `json:"bucket"`
	Kind      string            `json:"kind"`
	Value     string            `json:"value"`
	Condition map[string]string `json:"condition,omitempty"`
	Priority  int               `json:"priority"`
}
