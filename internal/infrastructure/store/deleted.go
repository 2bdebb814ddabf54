package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/prelovedguru/backend/internal/domain"
)

// DeletedIDs stores each set of hidden identifiers as a JSON array of strings
// under its key.
type DeletedIDs struct {
	kv     domain.KeyValueStore
	logger *zap.Logger
	mu     sync.Mutex
}

// NewDeletedIDs creates a deleted-ID repository over a key-value store
func NewDeletedIDs(kv domain.KeyValueStore, logger *zap.Logger) *DeletedIDs {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeletedIDs{kv: kv, logger: logger}
}

// Load returns the IDs stored under key. A missing key is an empty set; a value
// that is not a JSON string array is logged and treated as empty.
func (d *DeletedIDs) Load(ctx context.Context, key string) (map[string]bool, error) {
	ids, err := d.list(ctx, key)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Append adds id to the set under key. Appending an ID already present is a no-op.
func (d *DeletedIDs) Append(ctx context.Context, key, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids, err := d.list(ctx, key)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}

	data, err := json.Marshal(append(ids, id))
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := d.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (d *DeletedIDs) list(ctx context.Context, key string) ([]string, error) {
	raw, ok, err := d.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if !ok || raw == "" {
		return []string{}, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		d.logger.Warn("ignoring malformed deleted-id list", zap.String("key", key), zap.Error(err))
		return []string{}, nil
	}
	return ids, nil
}
