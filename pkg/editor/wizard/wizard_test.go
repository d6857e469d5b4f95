package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/nexuscrm/fieldstudio/pkg/capabilities"
	"github.com/nexuscrm/fieldstudio/pkg/editor"
	"github.com/nexuscrm/fieldstudio/pkg/fieldtypes"
	"github.com/nexuscrm/fieldstudio/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) CreateField(ctx context.Context, object string, attrs fieldtypes.Attributes) (*models.MutationResponse, error) {
	args := m.Called(ctx, object, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MutationResponse), args.Error(1)
}

func (m *MockAPI) UpdateField(ctx context.Context, object, code string, attrs fieldtypes.Attributes) (*models.MutationResponse, error) {
	args := m.Called(ctx, object, code, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MutationResponse), args.Error(1)
}

func (m *MockAPI) CreateGlobalValueSet(ctx context.Context, req models.CreateGlobalValueSetRequest) (*models.GlobalValueSetSummary, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GlobalValueSetSummary), args.Error(1)
}

func (m *MockAPI) ListObjectDefinitions(ctx context.Context) ([]models.ObjectDefinition, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ObjectDefinition), args.Error(1)
}

func (m *MockAPI) ListGlobalValueSets(ctx context.Context) ([]models.GlobalValueSetSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.GlobalValueSetSummary), args.Error(1)
}

func TestStepMachine_Transitions(t *testing.T) {
	sm := newStepMachine()

	tests := []struct {
		name        string
		from        Step
		action      Action
		route       route
		expectedTo  Step
		shouldError bool
	}{
		{"fieldType -> subtype", StepFieldType, ActionNext, routeSubtype, StepSubtype, false},
		{"fieldType -> sourceSelection", StepFieldType, ActionNext, routeSource, StepSourceSelection, false},
		{"fieldType -> lookupObject", StepFieldType, ActionNext, routeLookup, StepLookupObject, false},
		{"fieldType -> form", StepFieldType, ActionNext, routeDirect, StepForm, false},
		{"subtype -> form", StepSubtype, ActionNext, routeSubtype, StepForm, false},
		{"form -> subtype via Back", StepForm, ActionBack, routeSubtype, StepSubtype, false},
		{"form -> sourceSelection via Back", StepForm, ActionBack, routeSource, StepSourceSelection, false},
		{"form -> fieldType via Back", StepForm, ActionBack, routeDirect, StepFieldType, false},
		{"lookupObject -> fieldType via Back", StepLookupObject, ActionBack, routeLookup, StepFieldType, false},

		{"form has no Next", StepForm, ActionNext, routeDirect, StepForm, true},
		{"fieldType has no Back", StepFieldType, ActionBack, routeDirect, StepFieldType, true},
		{"subtype is not on the lookup route", StepSubtype, ActionNext, routeLookup, StepSubtype, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := sm.Transition(tc.from, tc.action, tc.route)
			if tc.shouldError {
				assert.Error(t, err)
				assert.Equal(t, tc.from, next, "Step should not change on invalid transition")
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedTo, next)
			}
		})
	}
}

func TestNext_RoutesByType(t *testing.T) {
	tests := []struct {
		fieldType fieldtypes.FieldType
		want      Step
	}{
		{fieldtypes.TypeText, StepSubtype},
		{fieldtypes.TypeDateTime, StepSubtype},
		{fieldtypes.TypeDropDownList, StepSourceSelection},
		{fieldtypes.TypeLookup, StepLookupObject},
		{fieldtypes.TypeNumber, StepForm},
		{fieldtypes.TypeCheckbox, StepForm},
		{fieldtypes.TypeAddress, StepForm},
	}
	for _, tc := range tests {
		t.Run(string(tc.fieldType), func(t *testing.T) {
			w := NewCreate(&MockAPI{}, "Account", Options{})
			require.NoError(t, w.SelectType(tc.fieldType))
			require.NoError(t, w.Next())
			assert.Equal(t, tc.want, w.Step())
			assert.True(t, w.CanGoBack())
		})
	}
}

func TestNext_RequiresType(t *testing.T) {
	w := NewCreate(&MockAPI{}, "Account", Options{})
	assert.Error(t, w.Next())
	assert.Equal(t, "Select a field type", w.FieldErrors().Field(ErrKeyFieldType))
	assert.Equal(t, StepFieldType, w.Step())
}

func TestNext_ComingSoon(t *testing.T) {
	for _, ft := range []fieldtypes.FieldType{fieldtypes.TypeFormula, fieldtypes.TypeAmount} {
		w := NewCreate(&MockAPI{}, "Account", Options{})
		require.NoError(t, w.SelectType(ft))

		err := w.Next()
		assert.ErrorIs(t, err, ErrComingSoon)
		assert.Equal(t, StepFieldType, w.Step())
		assert.Contains(t, w.Notice(), "coming soon")
	}
}

func TestBack_MirrorsNext(t *testing.T) {
	w := NewCreate(&MockAPI{}, "Account", Options{})
	require.NoError(t, w.SelectType(fieldtypes.TypeText))
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	assert.Equal(t, StepForm, w.Step())

	require.NoError(t, w.Back())
	assert.Equal(t, StepSubtype, w.Step())
	require.NoError(t, w.Back())
	assert.Equal(t, StepFieldType, w.Step())
	assert.False(t, w.CanGoBack())
	assert.Error(t, w.Back())
}

func TestSubtypeStepValidatesEnum(t *testing.T) {
	w := NewCreate(&MockAPI{}, "Account", Options{})
	require.NoError(t, w.SelectType(fieldtypes.TypeText))
	require.NoError(t, w.Next())

	require.NoError(t, w.Set(fieldtypes.AttrSubtype, "fax"))
	assert.Error(t, w.Next())
	assert.NotEmpty(t, w.FieldErrors().Field(fieldtypes.AttrSubtype))

	require.NoError(t, w.Set(fieldtypes.AttrSubtype, "EMAIL"))
	require.NoError(t, w.Next())
	assert.Equal(t, "email", w.Values()[fieldtypes.AttrSubtype])
}

func TestNewGlobalValueSetNameRequired(t *testing.T) {
	api := &MockAPI{}
	w := NewCreate(api, "Account", Options{})
	require.NoError(t, w.SelectType(fieldtypes.TypeDropDownList))
	require.NoError(t, w.Next())
	w.UpdateSource(func(s *Source) {
		s.Choice = SourceNew
		s.NewValues = "Hot\nCold"
	})

	err := w.Next()

	var verrs fieldtypes.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Name is required", verrs.Field(ErrKeyName))
	assert.Equal(t, StepSourceSelection, w.Step())
	api.AssertNotCalled(t, "CreateGlobalValueSet", mock.Anything, mock.Anything)
}

func TestNewGlobalValueSetNeedsValidNameAndValues(t *testing.T) {
	w := NewCreate(&MockAPI{}, "Account", Options{})
	require.NoError(t, w.SelectType(fieldtypes.TypeDropDownList))
	require.NoError(t, w.Next())
	w.UpdateSource(func(s *Source) {
		s.Choice = SourceNew
		s.NewName = "2bad"
		s.NewValues = " \n \n"
	})

	assert.Error(t, w.Next())
	errs := w.FieldErrors()
	assert.NotEmpty(t, errs.Field(ErrKeyName))
	assert.Equal(t, "At least one value is required", errs.Field(ErrKeyValues))
}

func TestExistingGlobalValueSetMustBePicked(t *testing.T) {
	w := NewCreate(&MockAPI{}, "Account", Options{})
	require.NoError(t, w.SelectType(fieldtypes.TypeDropDownList))
	require.NoError(t, w.Next())

	assert.Error(t, w.Next())
	assert.NotEmpty(t, w.FieldErrors().Field(fieldtypes.AttrSourcePath))

	w.UpdateSource(func(s *Source) {
		s.Existing = models.GlobalValueSetSummary{Name: "Stage", SourcePath: "globalValueSets/Stage.globalValueSet-meta.xml", RootKey: "GlobalValueSet", ItemKey: "customValue"}
	})
	require.NoError(t, w.Next())
	assert.Equal(t, "globalValueSets/Stage.globalValueSet-meta.xml", w.Values()[fieldtypes.AttrSourcePath])
}

func TestLookupObjectRequired(t *testing.T) {
	w := NewCreate(&MockAPI{}, "Contact", Options{})
	require.NoError(t, w.SelectType(fieldtypes.TypeLookup))
	require.NoError(t, w.Next())

	assert.Error(t, w.Next())
	assert.Equal(t, "Select an object", w.FieldErrors().Field(fieldtypes.AttrReferencedObject))

	require.NoError(t, w.Set(fieldtypes.AttrReferencedObject, "Account"))
	require.NoError(t, w.Next())
	assert.Equal(t, StepForm, w.Step())
}

func TestCapabilitiesFilterChoices(t *testing.T) {
	w := NewCreate(&MockAPI{}, "Account", Options{Capabilities: capabilities.New(capabilities.MultiSelectLists)})
	for _, c := range w.Choices() {
		assert.NotEqual(t, fieldtypes.TypeLookup, c.Type)
	}
	assert.Error(t, w.SelectType(fieldtypes.TypeLookup))

	w = NewCreate(&MockAPI{}, "Account", Options{Capabilities: capabilities.New(capabilities.LookupFields)})
	assert.NoError(t, w.SelectType(fieldtypes.TypeLookup))
}

func TestNumberDecimalPlacesBlocksSubmit(t *testing.T) {
	api := &MockAPI{}
	w := NewCreate(api, "Account", Options{})
	require.NoError(t, w.SelectType(fieldtypes.TypeNumber))
	require.NoError(t, w.Next())
	require.NoError(t, w.Set(fieldtypes.AttrAPICode, "discount"))
	require.NoError(t, w.Set(fieldtypes.AttrLabel, "Discount"))
	require.NoError(t, w.Set(fieldtypes.AttrDecimalPlaces, "11"))

	err := w.Submit(context.Background())

	var verrs fieldtypes.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Decimal places must be between 0 and 10", w.FieldErrors().Field(fieldtypes.AttrDecimalPlaces))
	api.AssertNotCalled(t, "CreateField", mock.Anything, mock.Anything, mock.Anything)
	assert.False(t, w.Done())
}

func TestAddressColumnsFollowAPICodeWhileCreating(t *testing.T) {
	api := &MockAPI{}
	w := NewCreate(api, "Account", Options{})
	require.NoError(t, w.SelectType(fieldtypes.TypeAddress))
	require.NoError(t, w.Next())

	require.NoError(t, w.Set(fieldtypes.AttrAPICode, "ship"))
	assert.Equal(t, "shipCity", w.Values()[fieldtypes.AttrCityColumn])
	require.NoError(t, w.Set(fieldtypes.AttrAPICode, "shipping"))
	assert.Equal(t, "shippingCity", w.Values()[fieldtypes.AttrCityColumn])

	assert.True(t, w.Disabled(fieldtypes.AttrCityColumn))
	assert.Error(t, w.Set(fieldtypes.AttrCityColumn, "custom"))
	assert.False(t, w.Disabled(fieldtypes.AttrAPICode))

	require.NoError(t, w.Set(fieldtypes.AttrLabel, "Shipping"))
	api.On("CreateField", mock.Anything, "Account", mock.MatchedBy(func(attrs fieldtypes.Attributes) bool {
		return attrs[fieldtypes.AttrZipCodeColumn] == "shippingZipCode" && attrs[fieldtypes.AttrType] == "AddressField"
	})).Return(&models.MutationResponse{Message: "Field created"}, nil)

	require.NoError(t, w.Submit(context.Background()))
	assert.True(t, w.Done())
	api.AssertExpectations(t)
}

func TestEditAddressShowsStoredColumnsDisabled(t *testing.T) {
	def := fieldtypes.FieldDefinition{
		Type:    fieldtypes.TypeAddress,
		APICode: "billing",
		Label:   "Billing",
		Address: func() *fieldtypes.AddressAttributes { a := fieldtypes.AddressColumns("billing"); return &a }(),
	}
	w := NewEdit(&MockAPI{}, "Account", def, Options{})

	assert.Equal(t, StepForm, w.Step())
	assert.False(t, w.CanGoBack())
	assert.ErrorIs(t, w.Back(), ErrBackDisabled)

	values := w.Values()
	want := map[string]string{
		fieldtypes.AttrStreetAddressColumn: "billingStreetAddress",
		fieldtypes.AttrCityColumn:          "billingCity",
		fieldtypes.AttrStateProvinceColumn: "billingStateProvince",
		fieldtypes.AttrZipCodeColumn:       "billingZipCode",
		fieldtypes.AttrCountryColumn:       "billingCountry",
	}
	for name, col := range want {
		assert.Equal(t, col, values[name])
		assert.True(t, w.Disabled(name), name)
	}
	assert.True(t, w.Disabled(fieldtypes.AttrAPICode))
	assert.Error(t, w.Set(fieldtypes.AttrAPICode, "shipping"))
}

func TestSubmitEditUsesPut(t *testing.T) {
	api := &MockAPI{}
	notes := &editor.Recorder{}
	def := fieldtypes.FieldDefinition{Type: fieldtypes.TypeCheckbox, APICode: "active", Label: "Active", Checkbox: &fieldtypes.CheckboxAttributes{}}
	w := NewEdit(api, "Account", def, Options{Notifier: notes})
	require.NoError(t, w.Set(fieldtypes.AttrDefaultValue, "true"))

	api.On("UpdateField", mock.Anything, "Account", "active", mock.MatchedBy(func(attrs fieldtypes.Attributes) bool {
		return attrs[fieldtypes.AttrDefaultValue] == "true"
	})).Return(&models.MutationResponse{Message: "Field updated"}, nil)

	require.NoError(t, w.Submit(context.Background()))
	api.AssertExpectations(t)
	last, _ := notes.Last()
	assert.Equal(t, "Field updated", last.Message)
	assert.ErrorIs(t, w.Submit(context.Background()), ErrAlreadyClosed)
}

func TestSubmitCreatesValueSetOnce(t *testing.T) {
	api := &MockAPI{}
	notes := &editor.Recorder{}
	w := NewCreate(api, "Account", Options{Notifier: notes})
	require.NoError(t, w.SelectType(fieldtypes.TypeDropDownList))
	require.NoError(t, w.Next())
	w.UpdateSource(func(s *Source) {
		s.Choice = SourceNew
		s.NewName = "Rating"
		s.NewValues = "Hot\r\nWarm\nCold\n"
	})
	require.NoError(t, w.Next())
	require.NoError(t, w.Set(fieldtypes.AttrAPICode, "rating"))
	require.NoError(t, w.Set(fieldtypes.AttrLabel, "Rating"))

	api.On("CreateGlobalValueSet", mock.Anything, models.CreateGlobalValueSetRequest{Name: "Rating", Values: []string{"Hot", "Warm", "Cold"}}).
		Return(&models.GlobalValueSetSummary{Name: "Rating"}, nil).Once()
	api.On("CreateField", mock.Anything, "Account", mock.MatchedBy(func(attrs fieldtypes.Attributes) bool {
		return attrs[fieldtypes.AttrSourcePath] == "globalValueSets/Rating.globalValueSet-meta.xml"
	})).Return(nil, errors.New("field already exists")).Once()

	err := w.Submit(context.Background())
	assert.EqualError(t, err, "field already exists")
	assert.False(t, w.Done())
	last, _ := notes.Last()
	assert.Equal(t, editor.LevelError, last.Level)
	assert.Equal(t, "rating", w.Values()[fieldtypes.AttrAPICode], "form is kept for a retry")

	api.On("CreateField", mock.Anything, "Account", mock.Anything).Return(&models.MutationResponse{Message: "Field created"}, nil).Once()
	require.NoError(t, w.Submit(context.Background()))
	assert.True(t, w.Done())
	api.AssertNumberOfCalls(t, "CreateGlobalValueSet", 1)
}

func TestLookupDisplayColumnsMustExistOnObject(t *testing.T) {
	api := &MockAPI{}
	api.On("ListObjectDefinitions", mock.Anything).Return([]models.ObjectDefinition{
		{APIName: "Account", Fields: []fieldtypes.FieldRef{{APICode: "name"}, {APICode: "city"}}},
	}, nil)
	w := NewCreate(api, "Contact", Options{})
	_, err := w.Objects(context.Background())
	require.NoError(t, err)
	require.NoError(t, w.SelectType(fieldtypes.TypeLookup))
	require.NoError(t, w.Next())
	require.NoError(t, w.Set(fieldtypes.AttrReferencedObject, "Account"))
	require.NoError(t, w.Next())
	require.NoError(t, w.Set(fieldtypes.AttrAPICode, "account"))
	require.NoError(t, w.Set(fieldtypes.AttrLabel, "Account"))
	require.NoError(t, w.Set(fieldtypes.AttrPrimaryDisplayField, "name"))
	require.NoError(t, w.Set(fieldtypes.AttrDisplayColumns, []string{"name", "phone"}))

	var verrs fieldtypes.ValidationErrors
	require.ErrorAs(t, w.Submit(context.Background()), &verrs)
	assert.Equal(t, "Account has no field phone", verrs.Field(fieldtypes.AttrDisplayColumns))

	require.NoError(t, w.Set(fieldtypes.AttrDisplayColumns, []string{"name", "name"}))
	require.ErrorAs(t, w.Submit(context.Background()), &verrs)
	assert.Equal(t, "Display columns must be unique", verrs.Field(fieldtypes.AttrDisplayColumns))
	api.AssertNotCalled(t, "CreateField", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitCreatesRenamedValueSetAfterFailure(t *testing.T) {
	api := &MockAPI{}
	w := NewCreate(api, "Account", Options{})
	require.NoError(t, w.SelectType(fieldtypes.TypeDropDownList))
	require.NoError(t, w.Next())
	w.UpdateSource(func(s *Source) {
		s.Choice = SourceNew
		s.NewName = "Colors"
		s.NewValues = "Red\nBlue"
	})
	require.NoError(t, w.Next())
	require.NoError(t, w.Set(fieldtypes.AttrAPICode, "color"))
	require.NoError(t, w.Set(fieldtypes.AttrLabel, "Color"))

	api.On("CreateGlobalValueSet", mock.Anything, models.CreateGlobalValueSetRequest{Name: "Colors", Values: []string{"Red", "Blue"}}).
		Return(&models.GlobalValueSetSummary{Name: "Colors"}, nil).Once()
	api.On("CreateField", mock.Anything, "Account", mock.Anything).Return(nil, errors.New("conflict")).Once()
	require.Error(t, w.Submit(context.Background()))

	require.NoError(t, w.Back())
	w.UpdateSource(func(s *Source) { s.NewName = "Shades" })
	require.NoError(t, w.Next())

	api.On("CreateGlobalValueSet", mock.Anything, models.CreateGlobalValueSetRequest{Name: "Shades", Values: []string{"Red", "Blue"}}).
		Return(&models.GlobalValueSetSummary{Name: "Shades"}, nil).Once()
	api.On("CreateField", mock.Anything, "Account", mock.MatchedBy(func(attrs fieldtypes.Attributes) bool {
		return attrs[fieldtypes.AttrSourcePath] == "globalValueSets/Shades.globalValueSet-meta.xml"
	})).Return(&models.MutationResponse{Message: "Field created"}, nil).Once()

	require.NoError(t, w.Submit(context.Background()))
	assert.True(t, w.Done())
	api.AssertNumberOfCalls(t, "CreateGlobalValueSet", 2)
	api.AssertExpectations(t)
}

func TestDropDownCapabilitiesGateSubtypeAndSource(t *testing.T) {
	api := &MockAPI{}
	w := NewCreate(api, "Account", Options{Capabilities: capabilities.New(capabilities.LookupFields)})
	require.NoError(t, w.SelectType(fieldtypes.TypeDropDownList))
	assert.Equal(t, []string{"singleSelect"}, w.AllowedValues(fieldtypes.AttrSubtype))
	assert.Equal(t, []string{"GlobalMetadata"}, w.AllowedValues(fieldtypes.AttrSourceType))
	assert.Nil(t, w.AllowedValues(fieldtypes.AttrSourcePath))

	require.NoError(t, w.Next())
	w.UpdateSource(func(s *Source) {
		s.Existing = models.GlobalValueSetSummary{Name: "Stage", SourcePath: "globalValueSets/Stage.globalValueSet-meta.xml"}
	})
	require.NoError(t, w.Next())
	require.NoError(t, w.Set(fieldtypes.AttrAPICode, "stage"))
	require.NoError(t, w.Set(fieldtypes.AttrLabel, "Stage"))
	require.NoError(t, w.Set(fieldtypes.AttrSubtype, "multiSelect"))
	require.NoError(t, w.Set(fieldtypes.AttrSourceType, "UniversalMetadata"))

	var verrs fieldtypes.ValidationErrors
	require.ErrorAs(t, w.Submit(context.Background()), &verrs)
	assert.Equal(t, "Multi-select lists are not enabled", verrs.Field(fieldtypes.AttrSubtype))
	assert.Equal(t, "Universal value sets are not enabled", verrs.Field(fieldtypes.AttrSourceType))
	api.AssertNotCalled(t, "CreateField", mock.Anything, mock.Anything, mock.Anything)

	w = NewCreate(api, "Account", Options{Capabilities: capabilities.New(capabilities.MultiSelectLists, capabilities.UniversalValueSets)})
	require.NoError(t, w.SelectType(fieldtypes.TypeDropDownList))
	assert.Equal(t, []string{"singleSelect", "multiSelect"}, w.AllowedValues(fieldtypes.AttrSubtype))
}

func TestEditKeepsStoredMultiSelectWithoutCapability(t *testing.T) {
	api := &MockAPI{}
	def := fieldtypes.FieldDefinition{
		Type:    fieldtypes.TypeDropDownList,
		APICode: "tags",
		Label:   "Tags",
		DropDownList: &fieldtypes.DropDownListAttributes{
			Subtype:    fieldtypes.SelectSubtypeMulti,
			SourceType: fieldtypes.SourceTypeGlobal,
			SourcePath: "globalValueSets/Tags.globalValueSet-meta.xml",
			RootKey:    "GlobalValueSet",
			ItemKey:    "customValue",
		},
	}
	w := NewEdit(api, "Account", def, Options{Capabilities: capabilities.New(capabilities.LookupFields)})
	require.NoError(t, w.Set(fieldtypes.AttrLabel, "Labels"))

	api.On("UpdateField", mock.Anything, "Account", "tags", mock.MatchedBy(func(attrs fieldtypes.Attributes) bool {
		return attrs[fieldtypes.AttrSubtype] == "multiSelect" && attrs[fieldtypes.AttrLabel] == "Labels"
	})).Return(&models.MutationResponse{Message: "Field updated"}, nil)

	require.NoError(t, w.Submit(context.Background()))
	api.AssertExpectations(t)
}
