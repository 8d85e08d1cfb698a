package usecase

import (
	"context"

	"github.com/wadesk/wadesk/domains/health"
	"github.com/wadesk/wadesk/domains/provider"
	"gorm.io/gorm"
)

type healthService struct {
	version  string
	db       *gorm.DB
	adapters map[provider.Kind]provider.Adapter
}

func NewHealthService(version string, db *gorm.DB, adapters map[provider.Kind]provider.Adapter) health.IHealthUsecase {
	return &healthService{version: version, db: db, adapters: adapters}
}

func (s *healthService) GetStatus(ctx context.Context) (health.StatusResponse, error) {
	res := health.StatusResponse{
		Version:   s.version,
		Database:  "ok",
		Providers: map[string]bool{},
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		res.Database = err.Error()
	} else if err := sqlDB.PingContext(ctx); err != nil {
		res.Database = err.Error()
	}

	for kind, adapter := range s.adapters {
		res.Providers[string(kind)] = adapter.Configured()
	}
	return res, nil
}
