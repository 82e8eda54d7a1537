package repo

import (
	"context"

	"github.com/stuproj/projectshelf/internal/modules/model"
	"gorm.io/gorm"
)

type HistoryRepo interface {
	Create(ctx context.Context, l *model.HistoryLog) error
	// List returns entries newest first; limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*model.HistoryLog, error)
}

type historyRepo struct{ db *gorm.DB }

func NewHistoryRepo(db *gorm.DB) HistoryRepo {
	return &historyRepo{db: db}
}

func (r *historyRepo) Create(ctx context.Context, l *model.HistoryLog) error {
	return conn(ctx, r.db).Create(l).Error
}

func (r *historyRepo) List(ctx context.Context, limit int) ([]*model.HistoryLog, error) {
	q := conn(ctx, r.db).Order("timestamp DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var items []*model.HistoryLog
	return items, q.Find(&items).Error
}
