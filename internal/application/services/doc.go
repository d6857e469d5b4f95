// Package services provides the business logic behind the REST API:
//   - field definitions stored as XML metadata documents (FieldService)
//   - raw metadata document access (MetadataService)
//   - shared global value sets (ValueSetService)
//   - object definitions with their field lists (ObjectService)
//   - company setting switches (SettingsService)
//
// Services depend on the repository ports only, so they can be unit tested with mocks.
package services
