package repository

import (
	"context"
	"errors"

	"paper-trading/internal/model"
	"paper-trading/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerRepository interface {
	// Seed creates the single cash row if it does not exist yet.
	Seed(ctx context.Context, startingBalance float64) error
	GetAvailable(ctx context.Context, opts ...utils.DBOption) (float64, error)
	// GetAvailableForUpdate reads the cash row under a row lock. Callers must
	// pass the transaction the subsequent SetAvailable runs in.
	GetAvailableForUpdate(ctx context.Context, opts ...utils.DBOption) (float64, error)
	SetAvailable(ctx context.Context, amount float64, opts ...utils.DBOption) error
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Seed(ctx context.Context, startingBalance float64) error {
	var ledger model.Ledger
	err := r.db.WithContext(ctx).First(&ledger, model.LedgerID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.WithContext(ctx).Create(&model.Ledger{
		ID:            model.LedgerID,
		AvailableCash: startingBalance,
	}).Error
}

func (r *ledgerRepository) GetAvailable(ctx context.Context, opts ...utils.DBOption) (float64, error) {
	var ledger model.Ledger
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if err := db.First(&ledger, model.LedgerID).Error; err != nil {
		return 0, err
	}
	return ledger.AvailableCash, nil
}

func (r *ledgerRepository) GetAvailableForUpdate(ctx context.Context, opts ...utils.DBOption) (float64, error) {
	var ledger model.Ledger
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ledger, model.LedgerID).Error; err != nil {
		return 0, err
	}
	return ledger.AvailableCash, nil
}

func (r *ledgerRepository) SetAvailable(ctx context.Context, amount float64, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return db.Model(&model.Ledger{}).
		Where("id = ?", model.LedgerID).
		Update("available_cash", amount).Error
}
