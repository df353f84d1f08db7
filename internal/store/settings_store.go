// internal/store/settings_store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	apperrors "inspection-ops/internal/common/errors"
	"inspection-ops/internal/common/logger"
	"inspection-ops/internal/notifications"
)

// settingsKey addresses one event's encoded pair for one company.
func settingsKey(companyID string, event notifications.EventID) string {
	return fmt.Sprintf("company:%s:notifications:%s", companyID, event)
}

// SettingsStore persists the encoded notification pairs in Redis. The store
// only moves the persisted shapes around; all interpretation belongs to the
// codec.
type SettingsStore struct {
	client *redis.Client
	logger logger.Logger
}

func NewSettingsStore(client *redis.Client, log logger.Logger) *SettingsStore {
	return &SettingsStore{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "settings-store"}),
	}
}

// Save writes every configured event's pair in one transactional pipeline.
// Events missing from the map are left untouched so partial saves are possible.
func (s *SettingsStore) Save(ctx context.Context, companyID string, catalog notifications.Catalog, events map[notifications.EventID]notifications.EncodedEvent) error {
	pipe := s.client.TxPipeline()
	for _, id := range catalog.Events {
		pair, ok := events[id]
		if !ok {
			continue
		}
		payload, err := json.Marshal(pair)
		if err != nil {
			return apperrors.NewStoreWriteError(fmt.Sprintf("marshal event %s", id), err)
		}
		pipe.Set(ctx, settingsKey(companyID, id), payload, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.NewStoreWriteError(fmt.Sprintf("save settings for company %s", companyID), err)
	}

	s.logger.Info("settings saved", map[string]interface{}{
		"companyId": companyID,
		"catalog":   catalog.Name,
		"events":    len(events),
	})
	return nil
}

// Load fetches whatever pairs exist for the catalog. Missing events are simply
// absent from the result; the codec defaults them. A pair that no longer
// unmarshals is skipped with a warning rather than failing the whole load.
func (s *SettingsStore) Load(ctx context.Context, companyID string, catalog notifications.Catalog) (map[notifications.EventID]notifications.EncodedEvent, error) {
	out := make(map[notifications.EventID]notifications.EncodedEvent)

	for _, id := range catalog.Events {
		raw, err := s.client.Get(ctx, settingsKey(companyID, id)).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, apperrors.NewStoreReadError(fmt.Sprintf("load settings for company %s event %s", companyID, id), err)
		}

		var pair notifications.EncodedEvent
		if err := json.Unmarshal([]byte(raw), &pair); err != nil {
			s.logger.Warn("skipping unreadable settings entry", map[string]interface{}{
				"companyId": companyID,
				"event":     string(id),
				"error":     err.Error(),
			})
			continue
		}
		out[id] = pair
	}

	return out, nil
}

// Delete removes every stored pair of the catalog for a company.
func (s *SettingsStore) Delete(ctx context.Context, companyID string, catalog notifications.Catalog) error {
	keys := make([]string, 0, len(catalog.Events))
	for _, id := range catalog.Events {
		keys = append(keys, settingsKey(companyID, id))
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return apperrors.NewStoreWriteError(fmt.Sprintf("delete settings for company %s", companyID), err)
	}
	return nil
}
