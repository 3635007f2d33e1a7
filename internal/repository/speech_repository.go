package repository

import (
	"helloworld_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SpeechRepository struct {
	DB *gorm.DB
}

func NewSpeechRepository(db *gorm.DB) *SpeechRepository {
	return &SpeechRepository{DB: db}
}

func (r *SpeechRepository) FindByKey(key string) (*model.SpeechClip, error) {
	var clip model.SpeechClip
	err := r.DB.Where("cache_key = ?", key).First(&clip).Error
	return &clip, err
}

// Save 同一 key 并发写入时后写覆盖
func (r *SpeechRepository) Save(clip *model.SpeechClip) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"storage_path", "url", "size", "chunks", "updated_at"}),
	}).Create(clip).Error
}
