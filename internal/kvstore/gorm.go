package kvstore

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one key of one profile in the kv_entries table.
type Entry struct {
	ProfileID string    `gorm:"column:profile_id;primaryKey;type:varchar(64)"`
	Key       string    `gorm:"column:entry_key;primaryKey;type:varchar(128)"`
	Value     string    `gorm:"column:entry_value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Entry) TableName() string {
	return "kv_entries"
}

// GormProvider stores every profile in a single SQL table through GORM
type GormProvider struct {
	db *gorm.DB
}

// NewGormProvider creates a provider on top of an open database
func NewGormProvider(db *gorm.DB) *GormProvider {
	return &GormProvider{db: db}
}

// Profile returns the Store for profileID
func (p *GormProvider) Profile(profileID string) Store {
	return &GormStore{db: p.db, profileID: profileID}
}

// GormStore is a Store backed by rows of kv_entries sharing a profile_id.
type GormStore struct {
	db        *gorm.DB
	profileID string
}

// Get finds the value stored under key
func (s *GormStore) Get(key string) (string, bool, error) {
	var entry Entry
	err := s.db.
		Where("profile_id = ? AND entry_key = ?", s.profileID, key).
		Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("kvstore: get %q: %w", key, err)
	}
	return entry.Value, true, nil
}

// Set upserts the value stored under key
func (s *GormStore) Set(key, value string) error {
	entry := Entry{
		ProfileID: s.profileID,
		Key:       key,
		Value:     value,
	}

	err := s.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}, {Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("kvstore: set %q: %w", key, err)
	}
	return nil
}

// Remove deletes the row stored under key
func (s *GormStore) Remove(key string) error {
	err := s.db.
		Where("profile_id = ? AND entry_key = ?", s.profileID, key).
		Delete(&Entry{}).Error
	if err != nil {
		return fmt.Errorf("kvstore: remove %q: %w", key, err)
	}
	return nil
}
