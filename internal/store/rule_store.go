// internal/store/rule_store.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"inspection-ops/internal/chaseup"
	apperrors "inspection-ops/internal/common/errors"
	"inspection-ops/internal/common/logger"
)

const (
	upsertRuleQuery = `INSERT INTO chaseup_rules (company_id, rule, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (company_id) DO UPDATE SET rule = EXCLUDED.rule, updated_at = NOW()`

	selectRuleQuery = `SELECT rule FROM chaseup_rules WHERE company_id = $1`
)

// RuleStore persists encoded chase-up rules in PostgreSQL, one row per
// company, the encoded rule as a JSONB document.
type RuleStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRuleStore(db *sql.DB, log logger.Logger) *RuleStore {
	return &RuleStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "rule-store"}),
	}
}

// Save upserts the encoded rule for a company.
func (s *RuleStore) Save(ctx context.Context, companyID string, rule *chaseup.EncodedRule) error {
	payload, err := json.Marshal(rule)
	if err != nil {
		return apperrors.NewStoreWriteError(fmt.Sprintf("marshal rule for company %s", companyID), err)
	}

	if _, err := s.db.ExecContext(ctx, upsertRuleQuery, companyID, payload); err != nil {
		return apperrors.NewStoreWriteError(fmt.Sprintf("save rule for company %s", companyID), err)
	}

	s.logger.Info("chase-up rule saved", map[string]interface{}{
		"companyId":   companyID,
		"maxSendings": rule.MaxSendings,
	})
	return nil
}

// Load fetches the encoded rule for a company. A company with no stored rule
// yields a CONFIG_NOT_FOUND error; callers usually map that to a fresh rule.
func (s *RuleStore) Load(ctx context.Context, companyID string) (*chaseup.EncodedRule, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, selectRuleQuery, companyID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewConfigNotFoundError(fmt.Sprintf("no chase-up rule for company %s", companyID))
	}
	if err != nil {
		return nil, apperrors.NewStoreReadError(fmt.Sprintf("load rule for company %s", companyID), err)
	}

	var rule chaseup.EncodedRule
	if err := json.Unmarshal(payload, &rule); err != nil {
		return nil, apperrors.NewStoreReadError(fmt.Sprintf("unmarshal rule for company %s", companyID), err)
	}
	return &rule, nil
}
