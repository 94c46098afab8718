package sqlitestore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jrsteele09/go-cms-client/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var _ storage.Store = (*Store)(nil)

// entry is one persisted key.
type entry struct {
	Name      string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

func (entry) TableName() string {
	return "client_state"
}

// Store persists client state in a local sqlite file.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the sqlite database at path. Use ":memory:" for
// an ephemeral store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("sqlitestore.Open mkdir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitestore.Open: %w", err)
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("sqlitestore.Open migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(key string) (string, bool, error) {
	var e entry
	res := s.db.Where("name = ?", key).Limit(1).Find(&e)
	if res.Error != nil {
		return "", false, fmt.Errorf("sqlitestore.Get %s: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return "", false, nil
	}
	return e.Value, true, nil
}

func (s *Store) Set(key, value string) error {
	e := entry{Name: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("sqlitestore.Set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(key string) error {
	if err := s.db.Where("name = ?", key).Delete(&entry{}).Error; err != nil {
		return fmt.Errorf("sqlitestore.Remove %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
