package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func init() {
	registerForAutomigration(&Run{})
}

// Run is one playback of a source, from open to close.
type Run struct {
	ID         string `gorm:"primaryKey"`
	Source     string
	Kind       string
	StartedAt  time.Time `gorm:"index"`
	FinishedAt *time.Time
	Delivered  int
	Failure    string
}

func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if len(r.ID) == 0 {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r Run) Finished() bool { return r.FinishedAt != nil }

func (r Run) Failed() bool { return len(r.Failure) > 0 }
