// Package optionset edits the ordered options of a global value set.
//
// Rows carry a LocalID that only lives in memory; it is stripped before
// anything is written back. An option's order is always its position plus one.
package optionset

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/nexuscrm/fieldstudio/pkg/editor"
	"github.com/nexuscrm/fieldstudio/pkg/valueset"
)

// LocalID identifies a row for the lifetime of the editor.
type LocalID string

// Row wraps an option with its client-only key.
type Row struct {
	Key    LocalID
	Option valueset.OptionRow
}

// Source addresses the metadata document holding the options.
type Source struct {
	Path    string
	RootKey string
	ItemKey string
}

// Normalized fills in the default root and item keys.
func (s Source) Normalized() Source {
	if s.RootKey == "" {
		s.RootKey = valueset.DefaultRootKey
	}
	if s.ItemKey == "" {
		s.ItemKey = valueset.DefaultItemKey
	}
	return s
}

// API is the part of the REST client the editor needs.
type API interface {
	GetMetadata(ctx context.Context, path string) ([]byte, error)
	PutMetadata(ctx context.Context, path string, doc []byte) error
}

// Canonical is the comparable projection of the editor state: no keys, order
// recomputed from position.
type Canonical struct {
	Title   string
	Sorting valueset.Sorting
	Items   []valueset.OptionRow
}

var (
	ErrNotLoaded    = errors.New("option set is not loaded")
	ErrUnknownRow   = errors.New("unknown row")
	errNoSourcePath = errors.New("option set has no source path")
)

// Editor holds the local state of one value set.
type Editor struct {
	api    API
	source Source

	mu         sync.Mutex
	loaded     bool
	raw        []byte
	items      []Row
	title      string
	sorting    valueset.Sorting
	snapshot   Canonical
	hasChanges bool
	err        error

	lifetime *editor.Lifetime
}

// New creates an editor for the document at source.
func New(api API, source Source) *Editor {
	return &Editor{
		api:      api,
		source:   source.Normalized(),
		sorting:  valueset.SortingNone,
		lifetime: editor.NewLifetime(),
	}
}

// Source returns the document address.
func (e *Editor) Source() Source {
	return e.source
}

// Close cancels in-flight requests. Results that arrive afterwards are dropped.
func (e *Editor) Close() {
	e.lifetime.Close()
}

// Load fetches the document and replaces the local state and snapshot.
func (e *Editor) Load(ctx context.Context) error {
	if e.source.Path == "" {
		return errNoSourcePath
	}
	if e.lifetime.Closed() {
		return editor.ErrClosed
	}
	ctx, done := e.lifetime.Bind(ctx)
	defer done()

	raw, err := e.api.GetMetadata(ctx, e.source.Path)
	if e.lifetime.Closed() {
		return editor.ErrClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.err = err
		return fmt.Errorf("load %s: %w", e.source.Path, err)
	}
	doc := parseDocument(raw, e.source)
	e.raw = raw
	e.title = doc.Title
	e.sorting = doc.Sorting
	e.items = make([]Row, 0, len(doc.Items))
	for _, o := range doc.Items {
		e.items = append(e.items, Row{Key: newLocalID(), Option: o})
	}
	e.renumber()
	e.snapshot = e.canonical()
	e.hasChanges = false
	e.loaded = true
	e.err = nil
	return nil
}

// Loaded reports whether a document has been loaded.
func (e *Editor) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// Items returns a copy of the rows in order.
func (e *Editor) Items() []Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Row, len(e.items))
	copy(out, e.items)
	return out
}

// Title returns the current title.
func (e *Editor) Title() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.title
}

// Sorting returns the current sorting.
func (e *Editor) Sorting() valueset.Sorting {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sorting
}

// HasChanges reports whether the state differs from the last loaded or saved snapshot.
func (e *Editor) HasChanges() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasChanges
}

// Err returns the message of the last failed load or save.
func (e *Editor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Canonical returns the comparable projection of the current state.
func (e *Editor) Canonical() Canonical {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canonical()
}

// AddRow appends an empty row and returns its key.
func (e *Editor) AddRow() LocalID {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := newLocalID()
	e.items = append(e.items, Row{Key: key, Option: valueset.OptionRow{Order: len(e.items) + 1}})
	e.touch()
	return key
}

// DeleteRow removes the row with key.
func (e *Editor) DeleteRow(key LocalID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(key)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRow, key)
	}
	e.items = append(e.items[:i], e.items[i+1:]...)
	e.touch()
	return nil
}

// Move moves the row at index from to index to.
func (e *Editor) Move(from, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if from < 0 || from >= len(e.items) || to < 0 || to >= len(e.items) {
		return fmt.Errorf("move %d -> %d: index out of range [0,%d)", from, to, len(e.items))
	}
	e.move(from, to)
	e.touch()
	return nil
}

// MoveKey moves the row with key so it sits directly above before. An empty
// before moves the row to the end.
func (e *Editor) MoveKey(key, before LocalID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	from := e.indexOf(key)
	if from < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRow, key)
	}
	to := len(e.items) - 1
	if before != "" {
		target := e.indexOf(before)
		if target < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownRow, before)
		}
		to = target
		if from < target {
			to = target - 1
		}
	}
	e.move(from, to)
	e.touch()
	return nil
}

// SetCell replaces one text column of a row.
func (e *Editor) SetCell(key LocalID, column, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(key)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRow, key)
	}
	o := &e.items[i].Option
	switch column {
	case valueset.ColumnLabel:
		o.Label = value
	case valueset.ColumnCode:
		o.Code = value
	case valueset.ColumnIconSet:
		o.IconSet = value
	case valueset.ColumnIcon:
		o.Icon = value
	default:
		return fmt.Errorf("column %q is not editable", column)
	}
	e.touch()
	return nil
}

// SetDefault sets a row's default flag. Other rows are left as they are.
func (e *Editor) SetDefault(key LocalID, on bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(key)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRow, key)
	}
	e.items[i].Option.Default = on
	e.touch()
	return nil
}

// SetTitle sets the value set title.
func (e *Editor) SetTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.title = title
	e.touch()
}

// SetSorting sets how consumers order the options.
func (e *Editor) SetSorting(s valueset.Sorting) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sorting = valueset.ParseSorting(string(s))
	e.touch()
}

// Payload renders the document that Save would send.
func (e *Editor) Payload() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.payload()
}

func (e *Editor) payload() ([]byte, error) {
	return buildDocument(e.raw, e.source, e.canonical())
}

// Save writes the current state. On success it becomes the new snapshot; on
// failure the local state is kept for a retry.
func (e *Editor) Save(ctx context.Context) error {
	if e.lifetime.Closed() {
		return editor.ErrClosed
	}
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	doc, err := e.payload()
	current := e.canonical()
	e.mu.Unlock()
	if err != nil {
		return err
	}

	ctx, done := e.lifetime.Bind(ctx)
	defer done()
	err = e.api.PutMetadata(ctx, e.source.Path, doc)
	if e.lifetime.Closed() {
		return editor.ErrClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.err = err
		return err
	}
	e.raw = doc
	e.snapshot = current
	e.hasChanges = !reflect.DeepEqual(e.canonical(), e.snapshot)
	e.err = nil
	return nil
}

func (e *Editor) indexOf(key LocalID) int {
	for i, r := range e.items {
		if r.Key == key {
			return i
		}
	}
	return -1
}

func (e *Editor) move(from, to int) {
	if from == to {
		return
	}
	row := e.items[from]
	e.items = append(e.items[:from], e.items[from+1:]...)
	e.items = append(e.items[:to], append([]Row{row}, e.items[to:]...)...)
}

// touch re-derives order and the dirty flag after a mutation.
func (e *Editor) touch() {
	e.renumber()
	e.hasChanges = !reflect.DeepEqual(e.canonical(), e.snapshot)
}

func (e *Editor) renumber() {
	for i := range e.items {
		e.items[i].Option.Order = i + 1
	}
}

func (e *Editor) canonical() Canonical {
	c := Canonical{
		Title:   e.title,
		Sorting: valueset.ParseSorting(string(e.sorting)),
		Items:   make([]valueset.OptionRow, len(e.items)),
	}
	for i, r := range e.items {
		c.Items[i] = r.Option
		c.Items[i].Order = i + 1
	}
	return c
}

func newLocalID() LocalID {
	return LocalID(uuid.NewString())
}
