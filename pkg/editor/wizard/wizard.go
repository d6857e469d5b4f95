// Package wizard creates a field step by step, or edits every attribute of an
// existing one from the form step.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nexuscrm/fieldstudio/pkg/capabilities"
	"github.com/nexuscrm/fieldstudio/pkg/editor"
	"github.com/nexuscrm/fieldstudio/pkg/fieldtypes"
	"github.com/nexuscrm/fieldstudio/pkg/models"
	"github.com/nexuscrm/fieldstudio/pkg/valueset"
)

// API is the part of the REST client the wizard calls.
type API interface {
	CreateField(ctx context.Context, object string, attrs fieldtypes.Attributes) (*models.MutationResponse, error)
	UpdateField(ctx context.Context, object, code string, attrs fieldtypes.Attributes) (*models.MutationResponse, error)
	CreateGlobalValueSet(ctx context.Context, req models.CreateGlobalValueSetRequest) (*models.GlobalValueSetSummary, error)
	ListObjectDefinitions(ctx context.Context) ([]models.ObjectDefinition, error)
	ListGlobalValueSets(ctx context.Context) ([]models.GlobalValueSetSummary, error)
}

// Options configures a wizard.
type Options struct {
	Capabilities capabilities.Set
	Notifier     editor.Notifier
}

// SourceChoice picks where a drop-down list takes its options from.
type SourceChoice string

const (
	SourceExisting SourceChoice = "existing"
	SourceNew      SourceChoice = "new"
)

// Source is the state of the sourceSelection step.
type Source struct {
	Choice SourceChoice
	// Existing is the picked global value set.
	Existing models.GlobalValueSetSummary
	// NewName, NewTitle and NewValues describe a value set to create on submit.
	// NewValues is newline-delimited.
	NewName   string
	NewTitle  string
	NewValues string
}

// Inline error keys of the non-attribute inputs.
const (
	ErrKeyFieldType = "fieldType"
	ErrKeyName      = "name"
	ErrKeyValues    = "values"
)

var (
	ErrNotAtForm     = errors.New("the field can only be submitted from the form step")
	ErrBackDisabled  = errors.New("back is disabled when editing a field")
	ErrAlreadyClosed = errors.New("wizard already finished")
	ErrSubmitRunning = errors.New("a submission is already in progress")
)

// Wizard holds the state of one create or edit session.
type Wizard struct {
	api      API
	object   string
	caps     capabilities.Set
	notifier editor.Notifier
	lifetime *editor.Lifetime
	machine  *stepMachine

	mu         sync.Mutex
	editing    bool
	original   fieldtypes.FieldDefinition
	step       Step
	fieldType  fieldtypes.FieldType
	attrs      fieldtypes.Attributes
	source     Source
	created    *models.GlobalValueSetSummary
	objects    []models.ObjectDefinition
	fieldErrs  fieldtypes.ValidationErrors
	notice     string
	err        error
	submitting bool
	done       bool
}

// NewCreate starts a wizard that creates a field on object.
func NewCreate(api API, object string, opts Options) *Wizard {
	w := newWizard(api, object, opts)
	w.step = StepFieldType
	w.attrs = fieldtypes.Attributes{}
	return w
}

// NewEdit opens def at the form step. The type and apiCode cannot change and
// Back is disabled.
func NewEdit(api API, object string, def fieldtypes.FieldDefinition, opts Options) *Wizard {
	w := newWizard(api, object, opts)
	w.editing = true
	w.original = def.Clone()
	w.step = StepForm
	w.fieldType = def.Type
	w.attrs = def.Flatten()
	return w
}

func newWizard(api API, object string, opts Options) *Wizard {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = editor.Discard
	}
	caps := opts.Capabilities
	return &Wizard{
		api:      api,
		object:   object,
		caps:     caps,
		notifier: notifier,
		lifetime: editor.NewLifetime(),
		machine:  newStepMachine(),
		source:   Source{Choice: SourceExisting},
	}
}

// Choices lists the field types the enabled capabilities allow, coming-soon
// types included.
func (w *Wizard) Choices() []fieldtypes.TypeSchema {
	var out []fieldtypes.TypeSchema
	for _, c := range fieldtypes.Choices() {
		if w.caps.Enabled(c.Capability) {
			out = append(out, c)
		}
	}
	return out
}

func (w *Wizard) allowed(t fieldtypes.FieldType) bool {
	for _, c := range w.Choices() {
		if c.Type == t {
			return true
		}
	}
	return false
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) Editing() bool { return w.editing }

func (w *Wizard) FieldType() fieldtypes.FieldType {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fieldType
}

// Notice is the blocking message of the last Next, such as "coming soon".
func (w *Wizard) Notice() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.notice
}

// FieldErrors returns the inline errors that blocked the last Next or Submit.
func (w *Wizard) FieldErrors() fieldtypes.ValidationErrors {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(fieldtypes.ValidationErrors, len(w.fieldErrs))
	for k, v := range w.fieldErrs {
		out[k] = v
	}
	return out
}

// Err returns the server message of the last failed submission.
func (w *Wizard) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Done reports whether the field was saved and the wizard can close.
func (w *Wizard) Done() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

// Values returns a copy of the form values, derived address columns included.
func (w *Wizard) Values() fieldtypes.Attributes {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.values()
}

func (w *Wizard) values() fieldtypes.Attributes {
	out := make(fieldtypes.Attributes, len(w.attrs)+5)
	for k, v := range w.attrs {
		if l, ok := v.([]string); ok {
			v = append([]string{}, l...)
		}
		out[k] = v
	}
	out[fieldtypes.AttrType] = string(w.fieldType)
	if w.fieldType == fieldtypes.TypeAddress {
		cols := w.addressColumns()
		out[fieldtypes.AttrStreetAddressColumn] = cols.StreetAddressColumn
		out[fieldtypes.AttrCityColumn] = cols.CityColumn
		out[fieldtypes.AttrStateProvinceColumn] = cols.StateProvinceColumn
		out[fieldtypes.AttrZipCodeColumn] = cols.ZipCodeColumn
		out[fieldtypes.AttrCountryColumn] = cols.CountryColumn
	}
	return out
}

// addressColumns derives from the live apiCode while creating and keeps the
// stored columns while editing.
func (w *Wizard) addressColumns() fieldtypes.AddressAttributes {
	if w.editing && w.original.Address != nil {
		return *w.original.Address
	}
	return fieldtypes.AddressColumns(text(w.attrs[fieldtypes.AttrAPICode]))
}

// Disabled reports whether an input is read-only.
func (w *Wizard) Disabled(name string) bool {
	if name == fieldtypes.AttrType {
		return true
	}
	if name == fieldtypes.AttrAPICode {
		return w.editing
	}
	schema, ok := fieldtypes.Schema(w.FieldType())
	if !ok {
		return false
	}
	a, ok := schema.Attribute(name)
	return ok && a.Derived
}

// SelectType picks the field type on the first step. The form is reset to the
// type's defaults; apiCode and label carry over.
func (w *Wizard) SelectType(t fieldtypes.FieldType) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.editing || w.step != StepFieldType {
		return fmt.Errorf("the field type can only be chosen on the %s step", StepFieldType)
	}
	if !w.allowed(t) {
		return fmt.Errorf("%w: %q", fieldtypes.ErrUnsupportedFieldType, t)
	}
	attrs, err := fieldtypes.DefaultTemplate(t)
	if err != nil {
		attrs = fieldtypes.Attributes{}
	}
	for _, keep := range []string{fieldtypes.AttrAPICode, fieldtypes.AttrLabel, fieldtypes.AttrHelpText, fieldtypes.AttrPlaceHolder} {
		if v, ok := w.attrs[keep]; ok {
			attrs[keep] = v
		}
	}
	w.fieldType = t
	w.attrs = attrs
	w.notice = ""
	w.fieldErrs = nil
	return nil
}

// Set writes one form value. Read-only inputs are rejected.
func (w *Wizard) Set(name string, value any) error {
	if w.Disabled(name) {
		return fmt.Errorf("%s is read-only", name)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if l, ok := value.([]string); ok {
		value = append([]string{}, l...)
	}
	w.attrs[name] = value
	return nil
}

// Source returns the sourceSelection state.
func (w *Wizard) Source() Source {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.source
}

// UpdateSource applies fn to the sourceSelection state.
func (w *Wizard) UpdateSource(fn func(s *Source)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.source)
}

// CanGoBack reports whether Back is available on the current step.
func (w *Wizard) CanGoBack() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.editing {
		return false
	}
	r, err := routeFor(w.fieldType)
	if err != nil {
		return false
	}
	return w.machine.CanTransition(w.step, ActionBack, r)
}

// Back returns to the previous step.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.editing {
		return ErrBackDisabled
	}
	r, err := routeFor(w.fieldType)
	if err != nil {
		return err
	}
	next, err := w.machine.Transition(w.step, ActionBack, r)
	if err != nil {
		return err
	}
	w.step = next
	w.fieldErrs = nil
	w.notice = ""
	return nil
}

// Next validates the current step and advances. A blocked Next leaves the
// step unchanged and explains why through FieldErrors or Notice.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fieldErrs = nil
	w.notice = ""

	if w.step == StepFieldType && w.fieldType == "" {
		w.fieldErrs = fieldtypes.ValidationErrors{ErrKeyFieldType: "Select a field type"}
		return w.fieldErrs
	}
	r, err := routeFor(w.fieldType)
	if err != nil {
		w.notice = err.Error()
		return err
	}
	if errs := w.validateStep(); len(errs) > 0 {
		w.fieldErrs = errs
		return errs
	}
	next, err := w.machine.Transition(w.step, ActionNext, r)
	if err != nil {
		return err
	}
	if w.step == StepSourceSelection {
		w.applySource()
	}
	w.step = next
	return nil
}

func (w *Wizard) validateStep() fieldtypes.ValidationErrors {
	errs := fieldtypes.ValidationErrors{}
	switch w.step {
	case StepSubtype:
		name := fieldtypes.AttrSubtype
		if w.fieldType == fieldtypes.TypeDateTime {
			name = fieldtypes.AttrFieldType
		}
		schema, _ := fieldtypes.Schema(w.fieldType)
		a, _ := schema.Attribute(name)
		if v, ok := fieldtypes.NormalizeEnum(text(w.attrs[name]), a.Enum); ok {
			w.attrs[name] = v
		} else {
			errs[name] = fmt.Sprintf("Select one of %s", strings.Join(a.Enum, ", "))
		}
	case StepSourceSelection:
		switch w.source.Choice {
		case SourceNew:
			if err := valueset.ValidateName(w.source.NewName); err != nil {
				errs[ErrKeyName] = err.Error()
			}
			if len(valueset.ParseValues(w.source.NewValues)) == 0 {
				errs[ErrKeyValues] = "At least one value is required"
			}
		default:
			if w.source.Existing.SourcePath == "" {
				errs[fieldtypes.AttrSourcePath] = "Select a global value set"
			}
		}
	case StepLookupObject:
		if text(w.attrs[fieldtypes.AttrReferencedObject]) == "" {
			errs[fieldtypes.AttrReferencedObject] = "Select an object"
		}
	}
	return errs
}

// applySource copies the chosen value set into the form.
func (w *Wizard) applySource() {
	switch w.source.Choice {
	case SourceNew:
		w.attrs[fieldtypes.AttrSourceType] = string(fieldtypes.SourceTypeGlobal)
		w.attrs[fieldtypes.AttrSourcePath] = valueset.PathFor(strings.TrimSpace(w.source.NewName))
		w.attrs[fieldtypes.AttrRootKey] = valueset.DefaultRootKey
		w.attrs[fieldtypes.AttrItemKey] = valueset.DefaultItemKey
	default:
		e := w.source.Existing
		w.attrs[fieldtypes.AttrSourcePath] = e.SourcePath
		if e.RootKey != "" {
			w.attrs[fieldtypes.AttrRootKey] = e.RootKey
		}
		if e.ItemKey != "" {
			w.attrs[fieldtypes.AttrItemKey] = e.ItemKey
		}
	}
}

// Objects loads the business objects for the lookup pickers.
func (w *Wizard) Objects(ctx context.Context) ([]models.ObjectDefinition, error) {
	ctx, done := w.lifetime.Bind(ctx)
	defer done()
	objects, err := w.api.ListObjectDefinitions(ctx)
	if w.lifetime.Closed() {
		return nil, editor.ErrClosed
	}
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.objects = objects
	w.mu.Unlock()
	return objects, nil
}

// GlobalValueSets loads the value sets for the source picker.
func (w *Wizard) GlobalValueSets(ctx context.Context) ([]models.GlobalValueSetSummary, error) {
	ctx, done := w.lifetime.Bind(ctx)
	defer done()
	sets, err := w.api.ListGlobalValueSets(ctx)
	if w.lifetime.Closed() {
		return nil, editor.ErrClosed
	}
	return sets, err
}

// Submission returns the attributes Submit would send, or the inline errors
// that block it.
func (w *Wizard) Submission() (fieldtypes.Attributes, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submission()
}

func (w *Wizard) submission() (fieldtypes.Attributes, error) {
	if w.step != StepForm {
		return nil, ErrNotAtForm
	}
	attrs := w.values()
	if w.editing {
		attrs[fieldtypes.AttrType] = string(w.original.Type)
		attrs[fieldtypes.AttrAPICode] = w.original.APICode
	}
	if err := fieldtypes.Validate(attrs); err != nil {
		return nil, err
	}
	def, err := fieldtypes.Parse(attrs)
	if err != nil {
		return nil, err
	}
	if def.Lookup != nil {
		if errs := w.checkDisplayColumns(def.Lookup); len(errs) > 0 {
			return nil, errs
		}
	}
	if def.DropDownList != nil {
		if errs := w.checkDropDownCapabilities(def.DropDownList); len(errs) > 0 {
			return nil, errs
		}
	}
	return def.Flatten(), nil
}

// gatedValues names the enum values that need a capability.
var gatedValues = map[string]map[string]string{
	fieldtypes.AttrSubtype:    {string(fieldtypes.SelectSubtypeMulti): capabilities.MultiSelectLists},
	fieldtypes.AttrSourceType: {string(fieldtypes.SourceTypeUniversal): capabilities.UniversalValueSets},
}

// AllowedValues lists the enum values of a form input the enabled
// capabilities allow. Inputs without an enum return nil.
func (w *Wizard) AllowedValues(name string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	schema, ok := fieldtypes.Schema(w.fieldType)
	if !ok {
		return nil
	}
	a, ok := schema.Attribute(name)
	if !ok || len(a.Enum) == 0 {
		return nil
	}
	var out []string
	for _, v := range a.Enum {
		if w.caps.Enabled(w.gate(name, v)) {
			out = append(out, v)
		}
	}
	return out
}

func (w *Wizard) gate(name, value string) string {
	if w.fieldType != fieldtypes.TypeDropDownList {
		return ""
	}
	return gatedValues[name][value]
}

// checkDropDownCapabilities rejects gated values unless they are already
// stored on the field being edited.
func (w *Wizard) checkDropDownCapabilities(d *fieldtypes.DropDownListAttributes) fieldtypes.ValidationErrors {
	var stored fieldtypes.DropDownListAttributes
	if w.editing && w.original.DropDownList != nil {
		stored = *w.original.DropDownList
	}
	errs := fieldtypes.ValidationErrors{}
	if d.Subtype != stored.Subtype && !w.caps.Enabled(w.gate(fieldtypes.AttrSubtype, string(d.Subtype))) {
		errs[fieldtypes.AttrSubtype] = "Multi-select lists are not enabled"
	}
	if d.SourceType != stored.SourceType && !w.caps.Enabled(w.gate(fieldtypes.AttrSourceType, string(d.SourceType))) {
		errs[fieldtypes.AttrSourceType] = "Universal value sets are not enabled"
	}
	return errs
}

// checkDisplayColumns runs only when the object list has been loaded.
func (w *Wizard) checkDisplayColumns(l *fieldtypes.LookupAttributes) fieldtypes.ValidationErrors {
	errs := fieldtypes.ValidationErrors{}
	if capabilities.HasDuplicates(l.DisplayColumns) {
		errs[fieldtypes.AttrDisplayColumns] = "Display columns must be unique"
		return errs
	}
	for _, o := range w.objects {
		if o.APIName != l.ReferencedObject {
			continue
		}
		if ok, missing := capabilities.Subset(l.DisplayColumns, o.FieldCodes()); !ok {
			errs[fieldtypes.AttrDisplayColumns] = fmt.Sprintf("%s has no field %s", o.APIName, strings.Join(missing, ", "))
		}
		if ok, _ := capabilities.Subset([]string{l.PrimaryDisplayField}, o.FieldCodes()); !ok {
			errs[fieldtypes.AttrPrimaryDisplayField] = fmt.Sprintf("%s has no field %s", o.APIName, l.PrimaryDisplayField)
		}
	}
	return errs
}

// Submit validates the form, creates a new value set when one was requested,
// then creates or updates the field. Nothing is sent when validation fails.
func (w *Wizard) Submit(ctx context.Context) error {
	if w.lifetime.Closed() {
		return editor.ErrClosed
	}
	w.mu.Lock()
	if w.done {
		w.mu.Unlock()
		return ErrAlreadyClosed
	}
	if w.submitting {
		w.mu.Unlock()
		return ErrSubmitRunning
	}
	attrs, err := w.submission()
	if err != nil {
		var verrs fieldtypes.ValidationErrors
		if errors.As(err, &verrs) {
			w.fieldErrs = verrs
		}
		w.mu.Unlock()
		return err
	}
	w.fieldErrs = nil
	w.submitting = true
	needsValueSet := !w.editing && w.fieldType == fieldtypes.TypeDropDownList &&
		w.source.Choice == SourceNew &&
		(w.created == nil || w.created.Name != strings.TrimSpace(w.source.NewName))
	source := w.source
	w.mu.Unlock()

	ctx, done := w.lifetime.Bind(ctx)
	defer done()

	var resp *models.MutationResponse
	if needsValueSet {
		var created *models.GlobalValueSetSummary
		created, err = w.api.CreateGlobalValueSet(ctx, models.CreateGlobalValueSetRequest{
			Name:   strings.TrimSpace(source.NewName),
			Title:  source.NewTitle,
			Values: valueset.ParseValues(source.NewValues),
		})
		if err == nil {
			w.mu.Lock()
			w.created = created
			w.mu.Unlock()
		}
	}
	if err == nil {
		if w.editing {
			resp, err = w.api.UpdateField(ctx, w.object, w.original.APICode, attrs)
		} else {
			resp, err = w.api.CreateField(ctx, w.object, attrs)
		}
	}
	w.mu.Lock()
	w.submitting = false
	if w.lifetime.Closed() {
		w.mu.Unlock()
		return editor.ErrClosed
	}
	if err != nil {
		w.err = err
		w.mu.Unlock()
		w.notifier.Notify(editor.Notification{Level: editor.LevelError, Message: err.Error()})
		return err
	}
	w.err = nil
	w.done = true
	w.mu.Unlock()

	msg := "Field saved"
	if resp != nil && resp.Message != "" {
		msg = resp.Message
	}
	w.notifier.Notify(editor.Notification{Level: editor.LevelSuccess, Message: msg})
	return nil
}

// Submitting reports whether a submission is in flight.
func (w *Wizard) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

// Close cancels in-flight requests.
func (w *Wizard) Close() {
	w.lifetime.Close()
}

func text(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
