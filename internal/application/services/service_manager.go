package services

import (
	"database/sql"

	"github.com/nexuscrm/fieldstudio/internal/domain/ports"
	"github.com/nexuscrm/fieldstudio/internal/infrastructure/persistence"
)

// Repositories groups the persistence ports the services are built on.
type Repositories struct {
	Documents ports.DocumentRepository
	Objects   ports.ObjectRepository
	Settings  ports.SettingRepository
}

// ServiceManager orchestrates all services with dependency injection
type ServiceManager struct {
	Repos Repositories

	Fields    *FieldService
	Metadata  *MetadataService
	ValueSets *ValueSetService
	Objects   *ObjectService
	Settings  *SettingsService
}

// NewServiceManager creates a service manager backed by the MySQL repositories.
func NewServiceManager(db *sql.DB) *ServiceManager {
	return NewServiceManagerWithRepos(Repositories{
		Documents: persistence.NewDocumentRepository(db),
		Objects:   persistence.NewObjectRepository(db),
		Settings:  persistence.NewSettingRepository(db),
	})
}

// NewServiceManagerWithRepos wires the services in dependency order.
func NewServiceManagerWithRepos(repos Repositories) *ServiceManager {
	sm := &ServiceManager{Repos: repos}
	sm.Fields = NewFieldService(repos.Documents, repos.Objects)
	sm.Metadata = NewMetadataService(repos.Documents)
	sm.ValueSets = NewValueSetService(repos.Documents)
	sm.Objects = NewObjectService(repos.Objects, sm.Fields)
	sm.Settings = NewSettingsService(repos.Settings)
	return sm
}
