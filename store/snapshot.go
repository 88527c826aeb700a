package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/theoremus-urban-solutions/library-occupancy/occupancy"
)

// DefaultSnapshotKey is the slot holding the last live snapshot
const DefaultSnapshotKey = "libraryOccupancy"

const receivedAtField = "receivedAt"

// EncodeSnapshot serialises s as a protobuf Struct
func EncodeSnapshot(s occupancy.Snapshot) ([]byte, error) {
	fields := make(map[string]any, occupancy.AreaCount+1)
	for _, a := range occupancy.Areas() {
		fields[string(a)] = float64(s.Values.Get(a))
	}
	if !s.ReceivedAt.IsZero() {
		fields[receivedAtField] = s.ReceivedAt.UTC().Format(time.RFC3339Nano)
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot struct: %w", err)
	}
	return proto.Marshal(st)
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot. A plain JSON
// object keyed by area name is accepted as well.
func DecodeSnapshot(data []byte) (occupancy.Snapshot, error) {
	var raw map[string]any
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return occupancy.Snapshot{}, fmt.Errorf("failed to decode snapshot json: %w", err)
		}
	} else {
		var st structpb.Struct
		if err := proto.Unmarshal(data, &st); err != nil {
			return occupancy.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
		}
		raw = st.AsMap()
	}
	var at time.Time
	if s, ok := raw[receivedAtField].(string); ok {
		at, _ = time.Parse(time.RFC3339Nano, s)
	}
	return occupancy.NewSnapshot(raw, at), nil
}

// SnapshotStore persists the latest live snapshot in one cache slot
type SnapshotStore struct {
	cache Cache
	key   string
}

// NewSnapshotStore binds c to key; an empty key uses DefaultSnapshotKey
func NewSnapshotStore(c Cache, key string) *SnapshotStore {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &SnapshotStore{cache: c, key: key}
}

// Key returns the slot name
func (s *SnapshotStore) Key() string { return s.key }

// Load returns the cached snapshot; ok is false when the slot is empty
func (s *SnapshotStore) Load(ctx context.Context) (occupancy.Snapshot, bool, error) {
	data, err := s.cache.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return occupancy.Snapshot{}, false, nil
	}
	if err != nil {
		return occupancy.Snapshot{}, false, err
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return occupancy.Snapshot{}, false, err
	}
	return snap, true, nil
}

// Save overwrites the slot with snap
func (s *SnapshotStore) Save(ctx context.Context, snap occupancy.Snapshot) error {
	data, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.key, data)
}
