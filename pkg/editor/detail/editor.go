// Package detail shows and edits one field definition. Each supported field
// type gets a FieldEditor over its own form struct; Route picks the editor for
// a field reference.
package detail

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nexuscrm/fieldstudio/pkg/editor"
	"github.com/nexuscrm/fieldstudio/pkg/fieldtypes"
	"github.com/nexuscrm/fieldstudio/pkg/models"
)

// Mode is the view/edit toggle controlled by the host.
type Mode string

const (
	ModeView Mode = "view"
	ModeEdit Mode = "edit"
)

// Status is the load state of the fetched definition.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

var (
	ErrNotReady    = errors.New("field is not loaded")
	ErrNotEditing  = errors.New("field is not in edit mode")
	ErrSaveRunning = errors.New("a save is already in progress")
)

// FieldAPI is the part of the REST client a field editor needs.
type FieldAPI interface {
	GetField(ctx context.Context, object, code string) (fieldtypes.FieldDefinition, error)
	UpdateField(ctx context.Context, object, code string, attrs fieldtypes.Attributes) (*models.MutationResponse, error)
}

// FieldEditor holds the fetched definition of one field and a local shadow
// form. The fetched definition is only replaced by a successful fetch.
type FieldEditor[F any] struct {
	api      FieldAPI
	object   string
	ref      fieldtypes.FieldRef
	codec    codec[F]
	notifier editor.Notifier
	lifetime *editor.Lifetime

	mu         sync.Mutex
	status     Status
	mode       Mode
	fetched    *fieldtypes.FieldDefinition
	form       F
	fieldErrs  fieldtypes.ValidationErrors
	err        error
	saving     bool
	generation uint64

	// loaded runs after every successful fetch, outside the lock.
	loaded func(ctx context.Context, def fieldtypes.FieldDefinition)
}

func newFieldEditor[F any](ref fieldtypes.FieldRef, api FieldAPI, opts Options, c codec[F]) *FieldEditor[F] {
	return &FieldEditor[F]{
		api:      api,
		object:   opts.object(ref),
		ref:      ref,
		codec:    c,
		notifier: opts.notifier(),
		lifetime: editor.NewLifetime(),
		status:   StatusLoading,
		mode:     ModeView,
	}
}

// Ref returns the field reference the editor was created for.
func (e *FieldEditor[F]) Ref() fieldtypes.FieldRef { return e.ref }

// Object returns the API name of the owning object.
func (e *FieldEditor[F]) Object() string { return e.object }

func (e *FieldEditor[F]) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *FieldEditor[F]) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Saving reports whether a save request is in flight.
func (e *FieldEditor[F]) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// Err returns the last fetch or save failure, with the server message verbatim.
func (e *FieldEditor[F]) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// FieldErrors returns the inline errors of the last rejected submission.
func (e *FieldEditor[F]) FieldErrors() fieldtypes.ValidationErrors {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(fieldtypes.ValidationErrors, len(e.fieldErrs))
	for k, v := range e.fieldErrs {
		out[k] = v
	}
	return out
}

// Definition returns a copy of the last fetched definition.
func (e *FieldEditor[F]) Definition() (fieldtypes.FieldDefinition, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fetched == nil {
		return fieldtypes.FieldDefinition{}, false
	}
	return e.fetched.Clone(), true
}

// View returns the read-only form of the fetched definition.
func (e *FieldEditor[F]) View() (F, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fetched == nil {
		var zero F
		return zero, false
	}
	return e.codec.decode(e.fetched.Clone()), true
}

// Form returns a copy of the local form. It is only meaningful in edit mode.
func (e *FieldEditor[F]) Form() F {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.codec.copy(e.form)
}

// Load fetches the definition. A failed first load leaves the editor failed
// with no form; calling Load again retries. A failed refetch keeps the last
// fetched definition and records the error. While editing, the local form is kept.
func (e *FieldEditor[F]) Load(ctx context.Context) error {
	if e.lifetime.Closed() {
		return editor.ErrClosed
	}
	e.mu.Lock()
	e.generation++
	gen := e.generation
	if e.fetched == nil {
		e.status = StatusLoading
	}
	e.mu.Unlock()

	def, err := e.fetch(ctx)
	if errors.Is(err, editor.ErrClosed) {
		return err
	}

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return nil
	}
	if err != nil {
		if e.fetched == nil {
			e.status = StatusFailed
		}
		e.err = err
		e.mu.Unlock()
		return err
	}
	e.fetched = &def
	e.status = StatusReady
	e.err = nil
	e.mu.Unlock()

	if e.loaded != nil {
		e.loaded(ctx, def.Clone())
	}
	return nil
}

func (e *FieldEditor[F]) fetch(ctx context.Context) (fieldtypes.FieldDefinition, error) {
	ctx, done := e.lifetime.Bind(ctx)
	defer done()
	def, err := e.api.GetField(ctx, e.object, e.ref.APICode)
	if e.lifetime.Closed() {
		return fieldtypes.FieldDefinition{}, editor.ErrClosed
	}
	if err != nil {
		return fieldtypes.FieldDefinition{}, err
	}
	if def.Type != e.ref.Type {
		return fieldtypes.FieldDefinition{}, fmt.Errorf("field %s is a %s, not a %s", e.ref.APICode, def.Type, e.ref.Type)
	}
	return def, nil
}

// SetMode switches between view and edit. Entering edit resets the form to
// the fetched definition; leaving it discards local edits.
func (e *FieldEditor[F]) SetMode(mode Mode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch mode {
	case ModeEdit:
		if e.fetched == nil {
			return ErrNotReady
		}
		if e.mode != ModeEdit {
			e.resetFormTo(*e.fetched)
			e.mode = ModeEdit
		}
	case ModeView:
		e.cancelEdit()
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	return nil
}

// Update applies fn to the local form.
func (e *FieldEditor[F]) Update(fn func(form *F)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeEdit {
		return ErrNotEditing
	}
	fn(&e.form)
	return nil
}

// Cancel discards local edits and returns to view.
func (e *FieldEditor[F]) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelEdit()
}

func (e *FieldEditor[F]) cancelEdit() {
	var zero F
	e.form = zero
	e.fieldErrs = nil
	e.mode = ModeView
}

func (e *FieldEditor[F]) resetFormTo(def fieldtypes.FieldDefinition) {
	e.form = e.codec.decode(def.Clone())
	e.fieldErrs = nil
	e.err = nil
}

// Submission returns the attributes Save would send, or the inline errors
// that block it.
func (e *FieldEditor[F]) Submission() (fieldtypes.Attributes, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeEdit || e.fetched == nil {
		return nil, ErrNotEditing
	}
	return e.submission()
}

func (e *FieldEditor[F]) submission() (fieldtypes.Attributes, error) {
	attrs := fieldtypes.Attributes{
		fieldtypes.AttrType:    string(e.fetched.Type),
		fieldtypes.AttrAPICode: e.fetched.APICode,
	}
	e.codec.encode(e.codec.copy(e.form), attrs)
	if err := fieldtypes.Validate(attrs); err != nil {
		return nil, err
	}
	def, err := fieldtypes.Parse(attrs)
	if err != nil {
		return nil, err
	}
	return def.Flatten(), nil
}

// Save validates the form locally, sends it, and on success refetches and
// returns to view. A failure keeps edit mode and the form untouched.
func (e *FieldEditor[F]) Save(ctx context.Context) error {
	if e.lifetime.Closed() {
		return editor.ErrClosed
	}
	e.mu.Lock()
	if e.mode != ModeEdit || e.fetched == nil {
		e.mu.Unlock()
		return ErrNotEditing
	}
	if e.saving {
		e.mu.Unlock()
		return ErrSaveRunning
	}
	attrs, err := e.submission()
	if err != nil {
		var verrs fieldtypes.ValidationErrors
		if errors.As(err, &verrs) {
			e.fieldErrs = verrs
		}
		e.mu.Unlock()
		return err
	}
	e.fieldErrs = nil
	e.saving = true
	e.mu.Unlock()

	resp, err := e.update(ctx, attrs)

	e.mu.Lock()
	e.saving = false
	if errors.Is(err, editor.ErrClosed) {
		e.mu.Unlock()
		return err
	}
	if err != nil {
		e.err = err
		e.mu.Unlock()
		e.notifier.Notify(editor.Notification{Level: editor.LevelError, Message: err.Error()})
		return err
	}
	e.err = nil
	e.mu.Unlock()

	msg := "Field updated"
	if resp != nil && resp.Message != "" {
		msg = resp.Message
	}
	e.notifier.Notify(editor.Notification{Level: editor.LevelSuccess, Message: msg})

	loadErr := e.Load(ctx)
	e.mu.Lock()
	e.cancelEdit()
	e.mu.Unlock()
	if errors.Is(loadErr, editor.ErrClosed) {
		return loadErr
	}
	return nil
}

func (e *FieldEditor[F]) update(ctx context.Context, attrs fieldtypes.Attributes) (*models.MutationResponse, error) {
	ctx, done := e.lifetime.Bind(ctx)
	defer done()
	resp, err := e.api.UpdateField(ctx, e.object, e.ref.APICode, attrs)
	if e.lifetime.Closed() {
		return nil, editor.ErrClosed
	}
	return resp, err
}

// Close cancels in-flight requests; their results are discarded.
func (e *FieldEditor[F]) Close() {
	e.lifetime.Close()
}
