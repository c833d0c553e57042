package core

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by SnapshotStore.Load when the key has never been
// written. Callers treat it as "empty log", not as a failure.
var ErrNotFound = errors.New("snapshot not found")

type (
	// SubmissionRecord is the immutable, persisted result of a completed
	// submission. The Timestamp is a ULID assigned at creation; it is unique,
	// monotonic, and serves as the record's only key.
	SubmissionRecord struct {
		Timestamp   string    `json:"timestamp"`
		Name        string    `json:"name"`
		Email       string    `json:"email"`
		Age         string    `json:"age,omitempty"`
		Gender      string    `json:"gender"`
		Bio         string    `json:"bio,omitempty"`
		Hobbies     []string  `json:"hobbies"`
		ProfileURL  *string   `json:"profileUrl"`
		SubmittedAt time.Time `json:"submittedAt"`
	}

	// SnapshotStore is the durable key-value persistence backing the
	// submission log. One named entry holds the JSON-serialized, newest-first
	// sequence of records; every create or delete rewrites it in full.
	SnapshotStore interface {
		// Load returns the bytes stored under key, or ErrNotFound if the key
		// has never been saved.
		Load(ctx context.Context, key string) ([]byte, error)

		// Save overwrites the entry under key with data.
		Save(ctx context.Context, key string, data []byte) error
	}

	// FormEntry is one post accepted by the standalone form endpoint. It is
	// unrelated to SubmissionRecord; the two surfaces share no storage.
	FormEntry struct {
		Name        string    `json:"name"`
		Email       string    `json:"email"`
		Message     string    `json:"message"`
		SubmittedAt time.Time `json:"submittedAt"`
	}

	// EntryLog is the append-only flat-file log behind the form endpoint.
	EntryLog interface {
		Append(ctx context.Context, entry FormEntry) error
	}
)
