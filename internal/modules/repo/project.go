package repo

import (
	"context"

	"github.com/stuproj/projectshelf/internal/modules/model"
	"gorm.io/gorm"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *model.Project) error
	Get(ctx context.Context, id uint) (*model.Project, error)
	Delete(ctx context.Context, id uint) error
	ListByYearDesc(ctx context.Context) ([]*model.Project, error)
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	return conn(ctx, r.db).Create(p).Error
}

// Get returns gorm.ErrRecordNotFound when no project has the given id.
func (r *projectRepo) Get(ctx context.Context, id uint) (*model.Project, error) {
	var p model.Project
	if err := conn(ctx, r.db).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete returns gorm.ErrRecordNotFound when nothing was deleted.
func (r *projectRepo) Delete(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Where("id = ?", id).Delete(&model.Project{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByYearDesc returns every project, latest year first and newest
// project first within a year.
func (r *projectRepo) ListByYearDesc(ctx context.Context) ([]*model.Project, error) {
	var items []*model.Project
	return items, conn(ctx, r.db).Order("year DESC, id DESC").Find(&items).Error
}
