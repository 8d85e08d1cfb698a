package health

import "context"

type StatusResponse struct {
	Version   string          `json:"version"`
	Database  string          `json:"database"`
	Providers map[string]bool `json:"providers"`
}

type IHealthUsecase interface {
	GetStatus(ctx context.Context) (StatusResponse, error)
}
