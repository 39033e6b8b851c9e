package repository

import (
	"context"
	"fmt"
	"strings"

	"paper-trading/internal/dto"
	"paper-trading/internal/model"
	"paper-trading/pkg/utils"

	"gorm.io/gorm"
)

type PositionRepository interface {
	Get(ctx context.Context, param dto.GetPositionsParam) ([]model.Position, error)
	Create(ctx context.Context, position *model.Position, opts ...utils.DBOption) error
	Update(ctx context.Context, position *model.Position, opts ...utils.DBOption) error
}

type positionRepository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) Get(ctx context.Context, param dto.GetPositionsParam) ([]model.Position, error) {
	var positions []model.Position

	qFilter := []string{}
	qFilterParam := []interface{}{}

	if len(param.IDs) > 0 {
		qFilter = append(qFilter, "id IN (?)")
		qFilterParam = append(qFilterParam, param.IDs)
	}

	if len(param.Tickers) > 0 {
		qFilter = append(qFilter, "ticker IN (?)")
		qFilterParam = append(qFilterParam, param.Tickers)
	}

	if param.Closed != nil {
		qFilter = append(qFilter, "closed = ?")
		qFilterParam = append(qFilterParam, *param.Closed)
	}

	if param.ActiveOn != nil {
		qFilter = append(qFilter, "target_close_date >= ?")
		qFilterParam = append(qFilterParam, *param.ActiveOn)
	}

	if len(qFilter) == 0 {
		return nil, fmt.Errorf("no filter provided")
	}

	if err := r.db.WithContext(ctx).
		Where(strings.Join(qFilter, " AND "), qFilterParam...).
		Order("open_date DESC").
		Find(&positions).Error; err != nil {
		return nil, err
	}

	return positions, nil
}

func (r *positionRepository) Create(ctx context.Context, position *model.Position, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(position).Error
}

func (r *positionRepository) Update(ctx context.Context, position *model.Position, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Save(position).Error
}
