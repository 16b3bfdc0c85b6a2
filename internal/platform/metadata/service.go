package metadata

import (
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Generic Accessors ---

// GetValue retrieves a value for a given key from the metadata table.
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// If the key doesn't exist, return an empty string, which is a valid default.
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue creates or updates a value for a given key.
func SetValue(db *gorm.DB, key, value string) error {
	// Use GORM's OnConflict clause for an atomic "upsert" operation.
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&meta).Error
}

// DeleteValue removes a key from the metadata table. Missing keys are not an error.
func DeleteValue(db *gorm.DB, key string) error {
	return db.Unscoped().Where("key = ?", key).Delete(&Metadata{}).Error
}

// --- Specific Helpers for Type Conversion ---

// GetCurrentElectionID retrieves the ID of the election currently accepting ballots.
// A return value of 0 means no election has been started.
func GetCurrentElectionID(db *gorm.DB) (uint, error) {
	valueStr, err := GetValue(db, CurrentElectionIDKey)
	if err != nil {
		return 0, err
	}
	if valueStr == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(valueStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("无法解析元数据 '%s' 的值: %w", CurrentElectionIDKey, err)
	}
	return uint(id), nil
}

// SetCurrentElectionID formats and sets the current election ID.
func SetCurrentElectionID(db *gorm.DB, electionID uint) error {
	return SetValue(db, CurrentElectionIDKey, strconv.FormatUint(uint64(electionID), 10))
}

// ClearCurrentElectionID removes the current election pointer.
func ClearCurrentElectionID(db *gorm.DB) error {
	return DeleteValue(db, CurrentElectionIDKey)
}

// GetLastTallyRebuildVoteID retrieves and parses the last tally rebuild checkpoint.
func GetLastTallyRebuildVoteID(db *gorm.DB) (uint, error) {
	valueStr, err := GetValue(db, LastTallyRebuildVoteIDKey)
	if err != nil {
		return 0, err
	}
	if valueStr == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(valueStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("无法解析元数据 '%s' 的值: %w", LastTallyRebuildVoteIDKey, err)
	}
	return uint(id), nil
}

// SetLastTallyRebuildVoteID formats and sets the last tally rebuild checkpoint.
func SetLastTallyRebuildVoteID(db *gorm.DB, voteID uint) error {
	return SetValue(db, LastTallyRebuildVoteIDKey, strconv.FormatUint(uint64(voteID), 10))
}
