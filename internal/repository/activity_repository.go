package repository

import (
	"helloworld_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// ActivityRepository 代码执行和 AI 调用日志
type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) CreateCodeRun(run *model.CodeRun) error {
	return r.DB.Create(run).Error
}

func (r *ActivityRepository) CreateAIGeneration(gen *model.AIGeneration) error {
	return r.DB.Create(gen).Error
}

// PurgeBefore 物理删除 cutoff 之前的日志，返回删除条数
func (r *ActivityRepository) PurgeBefore(cutoff time.Time) (int64, error) {
	var total int64
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().Where("created_at < ?", cutoff).Delete(&model.CodeRun{})
		if res.Error != nil {
			return res.Error
		}
		total += res.RowsAffected

		res = tx.Unscoped().Where("created_at < ?", cutoff).Delete(&model.AIGeneration{})
		if res.Error != nil {
			return res.Error
		}
		total += res.RowsAffected
		return nil
	})
	return total, err
}

func (r *ActivityRepository) RecentAIGenerations(learnerKey string, limit int) ([]model.AIGeneration, error) {
	var gens []model.AIGeneration
	err := r.DB.Where("learner_key = ?", learnerKey).
		Order("created_at DESC").
		Limit(limit).
		Find(&gens).Error
	return gens, err
}
