package repos

import (
	"github.com/tauraamui/framegrab/pkg/journal/models"
	"github.com/tauraamui/xerror"
)

type RunRepository struct {
	DB GormWrapper
}

func (r *RunRepository) Create(run *models.Run) error {
	return r.DB.Create(run).Error()
}

func (r *RunRepository) Save(run *models.Run) error {
	if err := r.DB.Save(run).Error(); err != nil {
		return xerror.Errorf("unable to save run %s: %w", run.ID, err)
	}
	return nil
}

// Latest returns up to limit runs, most recently started first.
func (r *RunRepository) Latest(limit int) ([]models.Run, error) {
	runs := []models.Run{}
	if err := r.DB.Order("started_at desc").Limit(limit).Find(&runs).Error(); err != nil {
		return nil, xerror.Errorf("unable to list latest runs: %w", err)
	}
	return runs, nil
}
