package journal

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/tauraamui/framegrab/pkg/journal/models"
	"github.com/tauraamui/framegrab/pkg/journal/repos"
	"github.com/tauraamui/framegrab/pkg/log"
	"github.com/tauraamui/xerror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Run = models.Run

var ErrClosed = xerror.New("journal is closed")

var fs = afero.NewOsFs()

var timeNow = func() time.Time {
	return time.Now()
}

var openDBConnection = func(path string) (*gorm.DB, error) {
	logger := logger.New(nil, logger.Config{LogLevel: logger.Silent})
	return gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger})
}

var autoMigrate = models.AutoMigrate

var closeDBConnection = func(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Journal records every run in a sqlite database so past runs can be
// listed later.
type Journal struct {
	db   *gorm.DB
	runs repos.RunRepository
}

func Open(path string) (*Journal, error) {
	if err := fs.MkdirAll(filepath.Dir(path), os.ModeDir|os.ModePerm); err != nil {
		return nil, xerror.Errorf("unable to create journal directory: %w", err)
	}

	log.Debug("Connecting to journal DB: %s", path)
	db, err := openDBConnection(path)
	if err != nil {
		return nil, xerror.Errorf("unable to open db connection: %w", err)
	}

	if err := autoMigrate(db); err != nil {
		if cerr := closeDBConnection(db); cerr != nil {
			log.Warn("Unable to close journal DB connection: %v", cerr)
		}
		return nil, xerror.Errorf("unable to run automigrations: %w", err)
	}

	return &Journal{db: db, runs: repos.RunRepository{DB: repos.Wrap(db)}}, nil
}

// Begin records the start of a run of source.
func (j *Journal) Begin(source, kind string) (*Run, error) {
	if j.db == nil {
		return nil, ErrClosed
	}

	run := Run{Source: source, Kind: kind, StartedAt: timeNow()}
	if err := j.runs.Create(&run); err != nil {
		return nil, xerror.Errorf("unable to record run start: %w", err)
	}
	return &run, nil
}

// Finish stamps run with its outcome. A nil failure means the run
// delivered every frame it was asked for.
func (j *Journal) Finish(run *Run, delivered int, failure error) error {
	if j.db == nil {
		return ErrClosed
	}

	finished := timeNow()
	run.FinishedAt = &finished
	run.Delivered = delivered
	if failure != nil {
		run.Failure = failure.Error()
	}
	return j.runs.Save(run)
}

func (j *Journal) Recent(n int) ([]Run, error) {
	if j.db == nil {
		return nil, ErrClosed
	}
	return j.runs.Latest(n)
}

func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	db := j.db
	j.db = nil
	return closeDBConnection(db)
}

const pathEnv = "FRAMEGRAB_JOURNAL"

// ResolvePath returns the journal location to use. An empty result means
// no journal was asked for.
func ResolvePath(configured string, lookup func(string) (string, bool)) string {
	if len(configured) > 0 || lookup == nil {
		return configured
	}
	path, _ := lookup(pathEnv)
	return path
}
