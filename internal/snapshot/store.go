package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"beproductive/backend/internal/focus"
)

// timerSnapshot is one persisted timer, keyed by the account it belongs to.
type timerSnapshot struct {
	Owner     string `gorm:"primaryKey"`
	State     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// Store keeps the focus timer state across client restarts.
type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if err := db.AutoMigrate(&timerSnapshot{}); err != nil {
		return nil, fmt.Errorf("migrate snapshot db: %w", err)
	}
	return &Store{db: db}, nil
}

// Save replaces the snapshot stored for owner.
func (s *Store) Save(ctx context.Context, owner string, state focus.State) error {
	encoded, err := focus.EncodeState(state)
	if err != nil {
		return err
	}
	record := timerSnapshot{Owner: owner, State: encoded, UpdatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored state for owner; ok is false when none exists.
func (s *Store) Load(ctx context.Context, owner string) (state focus.State, ok bool, err error) {
	var record timerSnapshot
	err = s.db.WithContext(ctx).Where("owner = ?", owner).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return focus.State{}, false, nil
	}
	if err != nil {
		return focus.State{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	state, err = focus.DecodeState(record.State)
	if err != nil {
		return focus.State{}, false, err
	}
	return state, true, nil
}

func (s *Store) Clear(ctx context.Context, owner string) error {
	if err := s.db.WithContext(ctx).Where("owner = ?", owner).Delete(&timerSnapshot{}).Error; err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
