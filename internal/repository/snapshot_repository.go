package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertBatchSize bounds the rows sent in one INSERT statement.
const upsertBatchSize = 500

func findAllByID[T any](db *gorm.DB) ([]T, error) {
	var rows []T
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// upsertAll inserts rows, overwriting every column of rows whose primary
// key already exists.
func upsertAll[T any](db *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(rows, upsertBatchSize).Error
}
