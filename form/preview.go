package form

import (
	"formintake/core"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// Previewer issues display resources for a selected profile image. Handles
// are scoped to one image generation: whoever acquires a handle must release
// it exactly once when the image is superseded or cleared, or the backing
// resource leaks for the lifetime of the session.
type Previewer interface {
	Acquire(img *core.ProfileImage) (core.PreviewHandle, error)
	Release(handle core.PreviewHandle)
}

type previewEntry struct {
	mime string
	data []byte
}

// MemoryPreviewer keeps preview bytes in a token-indexed map and serves them
// through the /api/form/preview endpoint. Releasing a handle drops the entry.
type MemoryPreviewer struct {
	mu      sync.RWMutex
	entries map[string]previewEntry
}

func NewMemoryPreviewer() *MemoryPreviewer {
	return &MemoryPreviewer{
		entries: make(map[string]previewEntry),
	}
}

func (p *MemoryPreviewer) Acquire(img *core.ProfileImage) (core.PreviewHandle, error) {
	token := ulid.Make().String()

	p.mu.Lock()
	p.entries[token] = previewEntry{mime: img.MIME, data: img.Data}
	p.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"preview_token": token,
		"file_name":     img.Name,
		"data_length":   len(img.Data),
	}).Debug("Preview acquired")

	return core.PreviewHandle{
		Token: token,
		URL:   "/api/form/preview?token=" + token,
	}, nil
}

func (p *MemoryPreviewer) Release(handle core.PreviewHandle) {
	p.mu.Lock()
	delete(p.entries, handle.Token)
	p.mu.Unlock()

	logrus.WithField("preview_token", handle.Token).Debug("Preview released")
}

// Get returns the bytes behind a live handle token.
func (p *MemoryPreviewer) Get(token string) (mime string, data []byte, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.entries[token]
	if !ok {
		return "", nil, false
	}
	return entry.mime, entry.data, true
}

// Live reports how many handles are currently held. Zero after every release
// path is the leak check the preview lifecycle must satisfy.
func (p *MemoryPreviewer) Live() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
