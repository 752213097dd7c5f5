package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/rfpflow/workflow"
)

// BucketRuns is the KV bucket holding run snapshots.
const BucketRuns = "RFPFLOW_RUNS"

// KVStore is a RunStore backed by NATS JetStream KV, for deployments
// that already run the workflow as a NATS service.
type KVStore struct {
	runs jetstream.KeyValue
}

// NewKVStore binds to the runs bucket, creating it if needed.
func NewKVStore(ctx context.Context, js jetstream.JetStream) (*KVStore, error) {
	kv, err := js.KeyValue(ctx, BucketRuns)
	if err != nil {
		// Bucket doesn't exist, create it
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      BucketRuns,
			Description: "rfpflow run snapshots",
			History:     5, // Keep last 5 revisions
		})
		if err != nil {
			return nil, fmt.Errorf("create runs bucket: %w", err)
		}
	}
	return &KVStore{runs: kv}, nil
}

// Put implements RunStore.
func (s *KVStore) Put(ctx context.Context, state *workflow.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal run snapshot: %w", err)
	}
	if _, err := s.runs.Put(ctx, state.RunID, data); err != nil {
		return fmt.Errorf("store run %s: %w", state.RunID, err)
	}
	return nil
}

// Get implements RunStore.
func (s *KVStore) Get(ctx context.Context, runID string) (*workflow.State, error) {
	entry, err := s.runs.Get(ctx, runID)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	var state workflow.State
	if err := json.Unmarshal(entry.Value(), &state); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return &state, nil
}

// Delete implements RunStore.
func (s *KVStore) Delete(ctx context.Context, runID string) error {
	err := s.runs.Delete(ctx, runID)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("delete run %s: %w", runID, err)
	}
	return nil
}

// List implements RunStore.
func (s *KVStore) List(ctx context.Context) ([]string, error) {
	lister, err := s.runs.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var ids []string
	for id := range lister.Keys() {
		ids = append(ids, id)
	}
	return ids, nil
}
