// Package form implements the data-collection core: a single live form
// state, submit-time validation, the preview-resource lifecycle, and the
// durable newest-first log of accepted submissions. The package is pure
// state-transition logic behind small ports (SnapshotStore, Encoder,
// Previewer, Clipboard); the HTTP layer is only a shell that feeds it
// events.
package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"formintake/core"
	"strings"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// Submit transaction lifecycle.
const (
	StateEditing    = "editing"
	StateEncoding   = "encoding"
	StatePersisting = "persisting"
)

const (
	eventSubmit  = "submit"
	eventEncoded = "encoded"
	eventDone    = "done"
	eventAbort   = "abort"
)

var (
	// ErrValidation is returned by Submit when the form has field errors.
	// The per-field messages are available through Errors.
	ErrValidation = errors.New("form has validation errors")

	// ErrSubmitInProgress is returned when Submit is called while a prior
	// submission is still encoding or persisting.
	ErrSubmitInProgress = errors.New("a submission is already in progress")
)

// Controller owns one session's form state and submission log. All event
// entry points serialize on an internal mutex; there is exactly one logical
// thread of control, matching the event-at-a-time model of the form.
type Controller struct {
	store     core.SnapshotStore
	key       string
	encoder   Encoder
	previewer Previewer
	clipboard Clipboard

	mu      sync.Mutex
	machine *fsm.FSM
	state   core.FormState
	errors  core.ValidationResult
	records []core.SubmissionRecord
	preview *core.PreviewHandle
}

// NewController wires a controller to its ports. key names the snapshot
// entry holding the submission log. clipboard may be nil when no clipboard
// integration exists.
func NewController(store core.SnapshotStore, key string, encoder Encoder, previewer Previewer, clipboard Clipboard) *Controller {
	machine := fsm.NewFSM(
		StateEditing,
		fsm.Events{
			{Name: eventSubmit, Src: []string{StateEditing}, Dst: StateEncoding},
			{Name: eventEncoded, Src: []string{StateEncoding}, Dst: StatePersisting},
			{Name: eventDone, Src: []string{StatePersisting}, Dst: StateEditing},
			{Name: eventAbort, Src: []string{StateEncoding, StatePersisting}, Dst: StateEditing},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				logrus.WithFields(logrus.Fields{
					"event": e.Event,
					"from":  e.Src,
					"to":    e.Dst,
				}).Debug("Submit lifecycle transition")
			},
		},
	)

	return &Controller{
		store:     store,
		key:       key,
		encoder:   encoder,
		previewer: previewer,
		clipboard: clipboard,
		machine:   machine,
	}
}

// Load reads the persisted submission log. A key that has never been
// written means an empty log; the stored order is kept verbatim.
func (c *Controller) Load(ctx context.Context) error {
	data, err := c.store.Load(ctx, c.key)
	if errors.Is(err, core.ErrNotFound) {
		logrus.WithField("snapshot_key", c.key).Info("No submission log yet, starting empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load submission log: %w", err)
	}

	var records []core.SubmissionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decode submission log: %w", err)
	}

	c.mu.Lock()
	c.records = records
	c.mu.Unlock()

	logrus.WithField("records", len(records)).Info("Submission log loaded")
	return nil
}

// SetField replaces the named scalar field. No validation happens here;
// that is deferred to submit time.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case "name":
		c.state.Name = value
	case "email":
		c.state.Email = value
	case "age":
		c.state.Age = value
	case "gender":
		c.state.Gender = value
	case "bio":
		c.state.Bio = value
	default:
		return fmt.Errorf("unknown form field %q", name)
	}
	return nil
}

// SetAgree replaces the consent flag.
func (c *Controller) SetAgree(agree bool) {
	c.mu.Lock()
	c.state.Agree = agree
	c.mu.Unlock()
}

// ToggleHobby adds or removes a hobby tag. The hobby collection has set
// semantics: checking an already-checked tag is a no-op, as is unchecking
// an absent one.
func (c *Controller) ToggleHobby(tag string, checked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if checked {
		if !c.state.HasHobby(tag) {
			c.state.Hobbies = append(c.state.Hobbies, tag)
		}
		return
	}
	for i, h := range c.state.Hobbies {
		if h == tag {
			c.state.Hobbies = append(c.state.Hobbies[:i], c.state.Hobbies[i+1:]...)
			return
		}
	}
}

// SelectProfile replaces the profile image (nil clears it) and keeps the
// preview in sync: the handle for the new image is acquired first, then the
// superseded one is released, so rapid reselection never strands a handle.
func (c *Controller) SelectProfile(img *core.ProfileImage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.preview
	c.preview = nil
	if img != nil && c.previewer != nil {
		handle, err := c.previewer.Acquire(img)
		if err != nil {
			logrus.WithError(err).Warn("Failed to acquire preview, showing placeholder")
		} else {
			c.preview = &handle
		}
	}
	c.state.Profile = img

	if old != nil && c.previewer != nil {
		c.previewer.Release(*old)
	}
}

// Submit runs the submission transaction: validate, encode the profile
// image, persist the grown log, reset the form. Validation failure publishes
// the field errors and leaves everything untouched. Encode and persistence
// failures abort with the state intact. The controller lock is dropped while
// the encoder runs; edits made during that window do not affect the captured
// snapshot.
func (c *Controller) Submit(ctx context.Context) (*core.SubmissionRecord, error) {
	c.mu.Lock()
	if err := c.machine.Event(ctx, eventSubmit); err != nil {
		c.mu.Unlock()
		return nil, ErrSubmitInProgress
	}

	result := Validate(c.state)
	if len(result) > 0 {
		c.errors = result
		_ = c.machine.Event(ctx, eventAbort)
		c.mu.Unlock()
		return nil, ErrValidation
	}
	c.errors = nil
	snapshot := c.state.Clone()
	c.mu.Unlock()

	var profileURL *string
	if snapshot.Profile != nil {
		url, err := c.encoder.Encode(ctx, snapshot.Profile)
		if err != nil {
			c.abort(ctx)
			return nil, fmt.Errorf("encode profile image: %w", err)
		}
		profileURL = &url
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.machine.Event(ctx, eventEncoded)

	record := core.SubmissionRecord{
		Timestamp:   ulid.Make().String(),
		Name:        snapshot.Name,
		Email:       snapshot.Email,
		Age:         strings.TrimSpace(snapshot.Age),
		Gender:      snapshot.Gender,
		Bio:         snapshot.Bio,
		Hobbies:     snapshot.Hobbies,
		ProfileURL:  profileURL,
		SubmittedAt: time.Now(),
	}
	if record.Hobbies == nil {
		record.Hobbies = []string{}
	}

	next := append([]core.SubmissionRecord{record}, c.records...)
	if err := c.persist(ctx, next); err != nil {
		_ = c.machine.Event(ctx, eventAbort)
		return nil, fmt.Errorf("persist submission log: %w", err)
	}
	c.records = next
	_ = c.machine.Event(ctx, eventDone)

	c.resetLocked()

	logrus.WithFields(logrus.Fields{
		"timestamp": record.Timestamp,
		"records":   len(next),
	}).Info("Submission persisted")
	return &record, nil
}

// Delete removes the record with the given timestamp from memory and from
// the durable snapshot. An unknown timestamp is a no-op, not an error.
func (c *Controller) Delete(ctx context.Context, timestamp string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, r := range c.records {
		if r.Timestamp == timestamp {
			idx = i
			break
		}
	}
	if idx < 0 {
		logrus.WithField("timestamp", timestamp).Debug("Delete of unknown timestamp ignored")
		return nil
	}

	next := make([]core.SubmissionRecord, 0, len(c.records)-1)
	next = append(next, c.records[:idx]...)
	next = append(next, c.records[idx+1:]...)

	if err := c.persist(ctx, next); err != nil {
		return fmt.Errorf("persist submission log: %w", err)
	}
	c.records = next

	logrus.WithFields(logrus.Fields{
		"timestamp": timestamp,
		"records":   len(next),
	}).Info("Submission deleted")
	return nil
}

// Reset discards the in-progress entry: fresh state, preview released,
// errors cleared. The submission log is untouched.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
}

// FormatRecord renders one record as indented JSON for clipboard use.
func (c *Controller) FormatRecord(timestamp string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range c.records {
		if r.Timestamp == timestamp {
			data, err := json.MarshalIndent(r, "", "  ")
			if err != nil {
				return "", false
			}
			return string(data), true
		}
	}
	return "", false
}

// Copy writes the textual rendering of a record to the clipboard port.
// Clipboard failures are non-critical and ignored.
func (c *Controller) Copy(timestamp string) {
	text, ok := c.FormatRecord(timestamp)
	if !ok || c.clipboard == nil {
		return
	}
	if err := c.clipboard.WriteText(text); err != nil {
		logrus.WithError(err).Debug("Clipboard write failed")
	}
}

// State returns a copy of the live form state.
func (c *Controller) State() core.FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Errors returns the validation result of the last submit attempt. Empty
// means no known errors.
func (c *Controller) Errors() core.ValidationResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := core.ValidationResult{}
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

// Records returns the submission log, newest first.
func (c *Controller) Records() []core.SubmissionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.SubmissionRecord(nil), c.records...)
}

// Preview returns the live preview handle, or nil when no image is selected
// and the display should fall back to a placeholder.
func (c *Controller) Preview() *core.PreviewHandle {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.preview == nil {
		return nil
	}
	handle := *c.preview
	return &handle
}

// Lifecycle reports the current submit transaction state.
func (c *Controller) Lifecycle() string {
	return c.machine.Current()
}

func (c *Controller) persist(ctx context.Context, records []core.SubmissionRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return c.store.Save(ctx, c.key, data)
}

func (c *Controller) abort(ctx context.Context) {
	c.mu.Lock()
	_ = c.machine.Event(ctx, eventAbort)
	c.mu.Unlock()
}

func (c *Controller) resetLocked() {
	c.state = core.FormState{}
	c.errors = nil
	if c.preview != nil {
		if c.previewer != nil {
			c.previewer.Release(*c.preview)
		}
		c.preview = nil
	}
}
