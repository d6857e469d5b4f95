package services

import (
	"context"

	"github.com/nexuscrm/fieldstudio/internal/domain/ports"
)

// SettingsService reads the company setting switches.
type SettingsService struct {
	settings ports.SettingRepository
}

func NewSettingsService(settings ports.SettingRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// Capabilities returns the enabled setting codes.
func (s *SettingsService) Capabilities(ctx context.Context) ([]string, error) {
	return s.settings.ListEnabled(ctx)
}
