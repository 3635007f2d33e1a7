package repository

import (
	"helloworld_backend/internal/model"

	"gorm.io/gorm"
)

type TypingRepository struct {
	DB *gorm.DB
}

func NewTypingRepository(db *gorm.DB) *TypingRepository {
	return &TypingRepository{DB: db}
}

func (r *TypingRepository) ListPassages(level model.Difficulty) ([]model.TypingPassage, error) {
	var passages []model.TypingPassage
	q := r.DB.Order("id ASC")
	if level != "" {
		q = q.Where("level = ?", level)
	}
	err := q.Find(&passages).Error
	return passages, err
}

func (r *TypingRepository) FindPassage(id uint) (*model.TypingPassage, error) {
	var passage model.TypingPassage
	err := r.DB.First(&passage, id).Error
	return &passage, err
}

func (r *TypingRepository) CreateScore(score *model.TypingScore) error {
	return r.DB.Create(score).Error
}

// TopScores 每个学习者取最好成绩，并列时取最早的一条
func (r *TypingRepository) TopScores(limit int) ([]model.TypingScore, error) {
	var scores []model.TypingScore
	best := r.DB.Model(&model.TypingScore{}).
		Select("learner_key, MAX(net_wpm) AS net_wpm").
		Group("learner_key")
	first := r.DB.Model(&model.TypingScore{}).
		Select("MIN(typing_scores.id)").
		Joins("JOIN (?) AS best ON best.learner_key = typing_scores.learner_key AND best.net_wpm = typing_scores.net_wpm", best).
		Group("typing_scores.learner_key")

	err := r.DB.Where("id IN (?)", first).
		Order("net_wpm DESC, id ASC").
		Limit(limit).
		Find(&scores).Error
	return scores, err
}
