// internal/store/audit.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"

	apperrors "inspection-ops/internal/common/errors"
	"inspection-ops/internal/common/logger"
)

// AuditEntry is one configuration-change record. Entries are write-only from
// the dashboard's point of view; operators query them straight in Kibana.
type AuditEntry struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"companyId"`
	Scope         string    `json:"scope"` // "notifications" or "chaseup"
	Actor         string    `json:"actor,omitempty"`
	EventsTouched []string  `json:"eventsTouched,omitempty"`
	At            time.Time `json:"at"`
}

// AuditRecorder indexes configuration changes into Elasticsearch. Audit
// failures are reported to the caller but must never block a save.
type AuditRecorder struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewAuditRecorder(client *elasticsearch.Client, index string, log logger.Logger) *AuditRecorder {
	return &AuditRecorder{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "audit-recorder"}),
	}
}

// Record indexes one audit document. A zero ID or timestamp is filled in.
func (a *AuditRecorder) Record(ctx context.Context, entry AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return apperrors.NewStoreWriteError("marshal audit entry", err)
	}

	res, err := a.client.Index(
		a.index,
		bytes.NewReader(body),
		a.client.Index.WithDocumentID(entry.ID),
		a.client.Index.WithContext(ctx),
	)
	if err != nil {
		return &apperrors.StandardError{
			Code:      apperrors.ErrCodeAuditIndexFailed,
			Message:   "Failed to index audit entry",
			Details:   err.Error(),
			Retryable: true,
			Timestamp: time.Now().UTC(),
		}
	}
	defer res.Body.Close()

	if res.IsError() {
		return &apperrors.StandardError{
			Code:      apperrors.ErrCodeAuditIndexFailed,
			Message:   "Failed to index audit entry",
			Details:   fmt.Sprintf("elasticsearch returned %s", res.Status()),
			Retryable: true,
			Timestamp: time.Now().UTC(),
		}
	}

	a.logger.Debug("audit entry indexed", map[string]interface{}{
		"auditId":   entry.ID,
		"companyId": entry.CompanyID,
		"scope":     entry.Scope,
	})
	return nil
}
