package app

import (
	"go.uber.org/fx"

	"github.com/dentelia/dentelia_backend/config"
	"github.com/dentelia/dentelia_backend/internal/service/record"
	"github.com/dentelia/dentelia_backend/internal/store"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideRecordService,
	),
)

func ProvideRecordService(st store.RecordStore, cfg *config.Config) record.Service {
	return record.New(st, record.Config{
		MaxCommitRetries: cfg.Record.MaxCommitRetries,
		SlotGuard:        cfg.Record.SlotGuard,
	})
}
