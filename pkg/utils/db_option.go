package utils

import "gorm.io/gorm"

// DBOption rewires a gorm handle, typically onto an open transaction.
type DBOption func(db *gorm.DB) *gorm.DB

func WithTx(tx *gorm.DB) DBOption {
	return func(db *gorm.DB) *gorm.DB {
		return tx
	}
}

func ApplyOptions(db *gorm.DB, opts ...DBOption) *gorm.DB {
	for _, opt := range opts {
		db = opt(db)
	}
	return db
}
