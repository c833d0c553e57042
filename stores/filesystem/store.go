package filesystem

import (
	"context"
	"fmt"
	"formintake/core"
	"log"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

type fsStore struct {
	basePath string
}

// NewStore creates a new filesystem-based store. Each snapshot key is a file
// under basePath.
func NewStore(basePath string) *fsStore {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		log.Fatalf("failed to create base directory: %v", err)
	}
	return &fsStore{basePath: basePath}
}

// keyPath rejects keys that would escape the base directory. Snapshot keys
// are simple names, never paths.
func (s *fsStore) keyPath(key string) (string, error) {
	if key == "" || filepath.Base(key) != key {
		return "", fmt.Errorf("invalid snapshot key %q", key)
	}
	return filepath.Join(s.basePath, key+".json"), nil
}

func (s *fsStore) Load(ctx context.Context, key string) ([]byte, error) {
	filePath, err := s.keyPath(key)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"snapshot_key": key, "file_path": filePath})

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("Snapshot file does not exist")
			return nil, core.ErrNotFound
		}
		log.WithError(err).Error("Failed to read snapshot file")
		return nil, err
	}

	log.WithField("data_length", len(data)).Debug("Snapshot loaded")
	return data, nil
}

func (s *fsStore) Save(ctx context.Context, key string, data []byte) error {
	filePath, err := s.keyPath(key)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"snapshot_key": key, "file_path": filePath})

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.WithError(err).Error("Failed to write snapshot file")
		return err
	}

	log.WithField("data_length", len(data)).Debug("Snapshot saved")
	return nil
}
