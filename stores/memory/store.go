package memory

import (
	"context"
	"formintake/core"
	"sync"

	"github.com/sirupsen/logrus"
)

// memStore keeps snapshots in a plain map. Useful for tests and for running
// without any configured backend.
type memStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{
		snapshots: make(map[string][]byte),
	}
}

func (s *memStore) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.snapshots[key]
	s.mu.RUnlock()

	log := logrus.WithField("snapshot_key", key)
	if !ok {
		log.Debug("Snapshot key has never been written")
		return nil, core.ErrNotFound
	}

	out := make([]byte, len(data))
	copy(out, data)
	log.WithField("data_length", len(out)).Debug("Snapshot loaded")
	return out, nil
}

func (s *memStore) Save(ctx context.Context, key string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)

	s.mu.Lock()
	s.snapshots[key] = stored
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"snapshot_key": key,
		"data_length":  len(data),
	}).Debug("Snapshot saved")
	return nil
}
