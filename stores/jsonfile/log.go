package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"formintake/core"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// entryLog appends form posts to a single JSON array file. The whole file is
// read and rewritten on every append with no locking, which is fine for a
// single-user tool.
type entryLog struct {
	path string
}

// NewEntryLog creates a flat-file log at path. Parent directories are
// created as needed.
func NewEntryLog(path string) *entryLog {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logrus.WithError(err).WithField("dir", dir).Fatal("Failed to create log directory")
		}
	}
	return &entryLog{path: path}
}

func (l *entryLog) read() ([]core.FormEntry, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []core.FormEntry{}, nil
		}
		return nil, err
	}
	var entries []core.FormEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("corrupt entry log %s: %w", l.path, err)
	}
	return entries, nil
}

// Append adds entry to the end of the log file.
func (l *entryLog) Append(ctx context.Context, entry core.FormEntry) error {
	log := logrus.WithFields(logrus.Fields{"path": l.path, "name": entry.Name})

	entries, err := l.read()
	if err != nil {
		log.WithError(err).Error("Failed to read entry log")
		return err
	}
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		log.WithError(err).Error("Failed to write entry log")
		return err
	}

	log.WithField("total", len(entries)).Info("Form entry appended")
	return nil
}

// Entries returns everything in the log, oldest first.
func (l *entryLog) Entries(ctx context.Context) ([]core.FormEntry, error) {
	return l.read()
}
