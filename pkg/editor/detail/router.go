package detail

import (
	"context"
	"fmt"

	"github.com/nexuscrm/fieldstudio/pkg/editor"
	"github.com/nexuscrm/fieldstudio/pkg/editor/optionset"
	"github.com/nexuscrm/fieldstudio/pkg/fieldtypes"
	"github.com/nexuscrm/fieldstudio/pkg/metadata"
)

// API is everything the routed editors call.
type API interface {
	FieldAPI
	optionset.API
}

// Options configures routed editors.
type Options struct {
	// Object is the owning object. When empty it is taken from the ref's file path.
	Object   string
	Notifier editor.Notifier
	// OnBack is invoked by the unsupported editor's Back action.
	OnBack func()
}

func (o Options) object(ref fieldtypes.FieldRef) string {
	if o.Object != "" {
		return o.Object
	}
	object, _, _ := metadata.ParseFieldPath(ref.FilePath)
	return object
}

func (o Options) notifier() editor.Notifier {
	if o.Notifier == nil {
		return editor.Discard
	}
	return o.Notifier
}

// Editor is the surface shared by every routed editor.
type Editor interface {
	Ref() fieldtypes.FieldRef
	Status() Status
	Mode() Mode
	SetMode(mode Mode) error
	Load(ctx context.Context) error
	Save(ctx context.Context) error
	Cancel()
	Close()
	Err() error
}

type (
	TextEditor     = FieldEditor[TextForm]
	NumberEditor   = FieldEditor[NumberForm]
	DateTimeEditor = FieldEditor[DateTimeForm]
	CheckboxEditor = FieldEditor[CheckboxForm]
	LookupEditor   = FieldEditor[LookupForm]
)

func NewTextEditor(ref fieldtypes.FieldRef, api FieldAPI, opts Options) *TextEditor {
	return newFieldEditor(ref, api, opts, textCodec)
}

func NewNumberEditor(ref fieldtypes.FieldRef, api FieldAPI, opts Options) *NumberEditor {
	return newFieldEditor(ref, api, opts, numberCodec)
}

func NewDateTimeEditor(ref fieldtypes.FieldRef, api FieldAPI, opts Options) *DateTimeEditor {
	return newFieldEditor(ref, api, opts, dateTimeCodec)
}

func NewCheckboxEditor(ref fieldtypes.FieldRef, api FieldAPI, opts Options) *CheckboxEditor {
	return newFieldEditor(ref, api, opts, checkboxCodec)
}

func NewLookupEditor(ref fieldtypes.FieldRef, api FieldAPI, opts Options) *LookupEditor {
	return newFieldEditor(ref, api, opts, lookupCodec)
}

// Route returns the editor for ref.Type. Types without an editor, AddressField
// included, get an UnsupportedEditor.
func Route(ref fieldtypes.FieldRef, api API, opts Options) Editor {
	switch ref.Type {
	case fieldtypes.TypeText:
		return NewTextEditor(ref, api, opts)
	case fieldtypes.TypeNumber:
		return NewNumberEditor(ref, api, opts)
	case fieldtypes.TypeDateTime:
		return NewDateTimeEditor(ref, api, opts)
	case fieldtypes.TypeCheckbox:
		return NewCheckboxEditor(ref, api, opts)
	case fieldtypes.TypeDropDownList:
		return NewDropDownListEditor(ref, api, opts)
	case fieldtypes.TypeLookup:
		return NewLookupEditor(ref, api, opts)
	default:
		return &UnsupportedEditor{ref: ref, onBack: opts.OnBack}
	}
}

// UnsupportedEditor is the terminal state for a type without an editor. Its
// only action is Back.
type UnsupportedEditor struct {
	ref    fieldtypes.FieldRef
	onBack func()
}

const UnsupportedMessage = "Unsupported field type"

func (u *UnsupportedEditor) Ref() fieldtypes.FieldRef { return u.ref }
func (u *UnsupportedEditor) Status() Status           { return StatusFailed }
func (u *UnsupportedEditor) Mode() Mode               { return ModeView }
func (u *UnsupportedEditor) Cancel()                  {}
func (u *UnsupportedEditor) Close()                   {}
func (u *UnsupportedEditor) Message() string          { return UnsupportedMessage }

func (u *UnsupportedEditor) Err() error {
	return fmt.Errorf("%w: %q", fieldtypes.ErrUnsupportedFieldType, u.ref.Type)
}

func (u *UnsupportedEditor) SetMode(Mode) error         { return u.Err() }
func (u *UnsupportedEditor) Load(context.Context) error { return u.Err() }
func (u *UnsupportedEditor) Save(context.Context) error { return u.Err() }

// Back leaves the unsupported view.
func (u *UnsupportedEditor) Back() {
	if u.onBack != nil {
		u.onBack()
	}
}
