package bootstrap

import (
	"context"

	"github.com/nexuscrm/fieldstudio/internal/domain/ports"
	"github.com/nexuscrm/fieldstudio/internal/logger"
)

// InitializeCapabilities enables the configured settings on an empty settings
// table. Once any setting exists the table is owned by the administrators.
func InitializeCapabilities(ctx context.Context, settings ports.SettingRepository, codes []string) error {
	n, err := settings.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Debug("Capabilities already initialized", "settings", n)
		return nil
	}
	for _, code := range codes {
		if err := settings.Upsert(ctx, code, true); err != nil {
			return err
		}
	}
	logger.Info("Capabilities initialized", "enabled", codes)
	return nil
}
