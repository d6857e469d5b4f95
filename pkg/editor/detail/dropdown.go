package detail

import (
	"context"
	"sync"

	"github.com/nexuscrm/fieldstudio/pkg/editor/optionset"
	"github.com/nexuscrm/fieldstudio/pkg/fieldtypes"
)

// DropDownListEditor edits a drop-down list field and embeds an option-set
// editor for the value set its sourcePath points at. The two are saved
// independently.
type DropDownListEditor struct {
	*FieldEditor[DropDownListForm]

	api       optionset.API
	optionsMu sync.Mutex
	options   *optionset.Editor
}

func NewDropDownListEditor(ref fieldtypes.FieldRef, api API, opts Options) *DropDownListEditor {
	d := &DropDownListEditor{
		FieldEditor: newFieldEditor(ref, api, opts, dropDownListCodec),
		api:         api,
	}
	d.FieldEditor.loaded = d.syncOptions
	return d
}

// Options returns the embedded option-set editor, or nil when the field has no
// source path.
func (d *DropDownListEditor) Options() *optionset.Editor {
	d.optionsMu.Lock()
	defer d.optionsMu.Unlock()
	return d.options
}

// syncOptions points the option-set editor at the field's current source.
// Pending option edits survive a refetch that keeps the same source.
func (d *DropDownListEditor) syncOptions(ctx context.Context, def fieldtypes.FieldDefinition) {
	v := def.DropDownList
	if v == nil || v.SourcePath == "" {
		return
	}
	src := optionset.Source{Path: v.SourcePath, RootKey: v.RootKey, ItemKey: v.ItemKey}.Normalized()

	d.optionsMu.Lock()
	current := d.options
	if current != nil && current.Source() == src {
		d.optionsMu.Unlock()
		if !current.Loaded() {
			_ = current.Load(ctx)
		}
		return
	}
	next := optionset.New(d.api, src)
	d.options = next
	d.optionsMu.Unlock()

	if current != nil {
		current.Close()
	}
	_ = next.Load(ctx)
}

// Close cancels the field and option-set requests.
func (d *DropDownListEditor) Close() {
	d.FieldEditor.Close()
	if opts := d.Options(); opts != nil {
		opts.Close()
	}
}
