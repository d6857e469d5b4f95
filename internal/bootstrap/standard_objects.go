package bootstrap

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/nexuscrm/fieldstudio/internal/application/services"
	"github.com/nexuscrm/fieldstudio/internal/domain/models"
	"github.com/nexuscrm/fieldstudio/internal/logger"
	"github.com/nexuscrm/fieldstudio/pkg/errors"
	"github.com/nexuscrm/fieldstudio/pkg/fieldtypes"
	apimodels "github.com/nexuscrm/fieldstudio/pkg/models"
)

//go:embed standard_objects.json
var standardObjectsJSON []byte

// StandardObject is one seeded business object with its fields.
type StandardObject struct {
	APIName     string                  `json:"apiName"`
	Label       string                  `json:"label"`
	PluralLabel string                  `json:"pluralLabel"`
	Fields      []fieldtypes.Attributes `json:"fields"`
}

// StandardData is the content of standard_objects.json.
type StandardData struct {
	ValueSets []apimodels.CreateGlobalValueSetRequest `json:"globalValueSets"`
	Objects   []StandardObject                        `json:"objects"`
}

func LoadStandardData() (*StandardData, error) {
	var data StandardData
	if err := json.Unmarshal(standardObjectsJSON, &data); err != nil {
		return nil, fmt.Errorf("failed to parse standard_objects.json: %w", err)
	}
	return &data, nil
}

// InitializeStandardObjects seeds value sets, objects and fields. Existing
// value sets and fields are left untouched, so the seed is safe to rerun.
func InitializeStandardObjects(ctx context.Context, sm *services.ServiceManager) error {
	logger.Info("Initializing standard objects")
	data, err := LoadStandardData()
	if err != nil {
		return err
	}

	for _, vs := range data.ValueSets {
		if _, err := sm.ValueSets.Create(ctx, vs); err != nil && !errors.IsConflict(err) {
			return fmt.Errorf("failed to seed value set %s: %w", vs.Name, err)
		}
	}

	// Objects first: lookup fields check the fields of the object they reference.
	for _, obj := range data.Objects {
		rec := models.ObjectRecord{APIName: obj.APIName, Label: obj.Label, PluralLabel: obj.PluralLabel}
		if err := sm.Repos.Objects.Upsert(ctx, rec); err != nil {
			return err
		}
	}
	created := 0
	for _, obj := range data.Objects {
		for _, field := range obj.Fields {
			_, err := sm.Fields.CreateField(ctx, obj.APIName, field)
			switch {
			case err == nil:
				created++
			case errors.IsConflict(err):
			default:
				return fmt.Errorf("failed to seed field %s.%v: %w", obj.APIName, field[fieldtypes.AttrAPICode], err)
			}
		}
	}
	logger.Info("Standard objects ready", "objects", len(data.Objects), "fieldsCreated", created)
	return nil
}
