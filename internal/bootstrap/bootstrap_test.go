package bootstrap

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/nexuscrm/fieldstudio/internal/infrastructure/persistence"
	"github.com/nexuscrm/fieldstudio/pkg/capabilities"
	"github.com/nexuscrm/fieldstudio/pkg/fieldtypes"
	"github.com/nexuscrm/fieldstudio/pkg/valueset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	for _, stmt := range SchemaStatements() {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, InitializeSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitializeCapabilities(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()
	repo := persistence.NewSettingRepository(db)
	countQuery := regexp.QuoteMeta(fmt.Sprintf("SELECT COUNT(*) FROM %s", persistence.TableCompanySetting))

	mock.ExpectQuery(countQuery).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO "+persistence.TableCompanySetting)).
		WithArgs(capabilities.LookupFields, true).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO "+persistence.TableCompanySetting)).
		WithArgs(capabilities.MultiSelectLists, true).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, InitializeCapabilities(context.Background(), repo, []string{capabilities.LookupFields, capabilities.MultiSelectLists}))

	mock.ExpectQuery(countQuery).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	require.NoError(t, InitializeCapabilities(context.Background(), repo, []string{capabilities.UniversalValueSets}))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStandardData_IsValid(t *testing.T) {
	data, err := LoadStandardData()
	require.NoError(t, err)
	require.Len(t, data.Objects, 3)

	sets := map[string]bool{}
	for _, vs := range data.ValueSets {
		require.NoError(t, valueset.ValidateName(vs.Name))
		sets[valueset.PathFor(vs.Name)] = true
	}

	fields := map[string][]string{}
	for _, obj := range data.Objects {
		for _, f := range obj.Fields {
			fields[obj.APIName] = append(fields[obj.APIName], f[fieldtypes.AttrAPICode].(string))
		}
	}

	for _, obj := range data.Objects {
		for _, f := range obj.Fields {
			t.Run(obj.APIName+"."+f[fieldtypes.AttrAPICode].(string), func(t *testing.T) {
				require.NoError(t, fieldtypes.Validate(f))
				def, err := fieldtypes.Parse(f)
				require.NoError(t, err)
				if def.DropDownList != nil {
					assert.True(t, sets[def.DropDownList.SourcePath], "value set %s is seeded", def.DropDownList.SourcePath)
				}
				if def.Lookup != nil {
					ok, missing := capabilities.Subset(def.Lookup.DisplayColumns, fields[def.Lookup.ReferencedObject])
					assert.True(t, ok, "missing columns %v", missing)
				}
			})
		}
	}
}
