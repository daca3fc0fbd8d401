package jobs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tvshowcase/models"
	"tvshowcase/sample"
)

// Catalog is the part of the catalog store the reset job needs
type Catalog interface {
	Reset(ctx context.Context, catalog []models.SeedCategory) (int, error)
}

// CatalogResetJob wipes the store and seeds it again from the sample catalog,
// undoing whatever rentals and duplications clients made.
type CatalogResetJob struct {
	catalog Catalog
	source  func() ([]models.SeedCategory, error)
	log     *zap.Logger
}

// NewCatalogResetJob creates a reset job seeding from the embedded sample catalog
func NewCatalogResetJob(catalog Catalog, log *zap.Logger) *CatalogResetJob {
	return &CatalogResetJob{
		catalog: catalog,
		source:  sample.Catalog,
		log:     log,
	}
}

// Run replaces the catalog with the sample, returning the number of videos
// created. A failed reset leaves the previous catalog in place.
func (j *CatalogResetJob) Run(ctx context.Context) (int, error) {
	seed, err := j.source()
	if err != nil {
		return 0, err
	}

	created, err := j.catalog.Reset(ctx, seed)
	if err != nil {
		return 0, fmt.Errorf("failed to reset catalog: %w", err)
	}

	j.log.Info("catalog reset", zap.Int("categories", len(seed)), zap.Int("videos", created))
	return created, nil
}
