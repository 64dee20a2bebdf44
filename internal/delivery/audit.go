// internal/delivery/audit.go
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"academic-notifications/internal/common/logger"

	"github.com/elastic/go-elasticsearch/v8"
)

// AuditEntry is the per-delivery document indexed for traceability.
type AuditEntry struct {
	JobID       string    `json:"jobId"`
	EventName   string    `json:"eventName,omitempty"`
	Subject     string    `json:"subject"`
	To          []string  `json:"to"`
	Cc          []string  `json:"cc,omitempty"`
	Bcc         []string  `json:"bcc,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	DeliveredAt time.Time `json:"deliveredAt"`
}

// Auditor writes delivery records to Elasticsearch. Auditing is best-effort;
// callers log failures and keep going.
type Auditor struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewAuditor(client *elasticsearch.Client, index string, log logger.Logger) *Auditor {
	return &Auditor{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "auditor"}),
	}
}

func (a *Auditor) Record(ctx context.Context, entry AuditEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	res, err := a.client.Index(
		a.index,
		bytes.NewReader(payload),
		a.client.Index.WithContext(ctx),
		a.client.Index.WithDocumentID(entry.JobID),
	)
	if err != nil {
		return fmt.Errorf("index audit entry: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index audit entry: %s", res.Status())
	}
	return nil
}
