package usecases

import (
	"analytics-exporter/internal/core/artifacts"
	"analytics-exporter/internal/core/domain"
)

type ExportRunRepository interface {
	Save(run domain.ExportRun) error
	FindByID(id string) (domain.ExportRun, error)
	FindByOwner(owner string, offset, limit int) ([]domain.ExportRun, int, error)
}

type ArtifactGenerator interface {
	Generate(format domain.Format, req artifacts.Request) (artifacts.Content, error)
}
