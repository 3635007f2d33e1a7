package repository

import (
	"helloworld_backend/internal/model"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PracticeRepository struct {
	DB *gorm.DB
}

func NewPracticeRepository(db *gorm.DB) *PracticeRepository {
	return &PracticeRepository{DB: db}
}

type QuestionFilter struct {
	Topic      string
	Difficulty model.Difficulty
	Query      string
}

func (r *PracticeRepository) ListQuestions(f QuestionFilter) ([]model.PracticeQuestion, error) {
	var questions []model.PracticeQuestion
	q := r.DB.Omit("solution").Order("sort_order ASC, id ASC")
	if f.Topic != "" {
		q = q.Where("topic = ?", f.Topic)
	}
	if f.Difficulty != "" {
		q = q.Where("difficulty = ?", f.Difficulty)
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(prompt) LIKE ?", like, like)
	}
	err := q.Find(&questions).Error
	return questions, err
}

func (r *PracticeRepository) FindQuestionBySlug(slug string) (*model.PracticeQuestion, error) {
	var question model.PracticeQuestion
	err := r.DB.Where("slug = ?", slug).First(&question).Error
	return &question, err
}

func (r *PracticeRepository) FindQuestionsBySlugs(slugs []string) ([]model.PracticeQuestion, error) {
	var questions []model.PracticeQuestion
	if len(slugs) == 0 {
		return questions, nil
	}
	err := r.DB.Select("id", "slug", "difficulty").Where("slug IN ?", slugs).Find(&questions).Error
	return questions, err
}

func (r *PracticeRepository) Topics() ([]string, error) {
	var topics []string
	err := r.DB.Model(&model.PracticeQuestion{}).Distinct().Order("topic").Pluck("topic", &topics).Error
	return topics, err
}

// MarkSolved 重复标记不报错
func (r *PracticeRepository) MarkSolved(learnerKey string, questionIDs ...uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]model.SolvedQuestion, 0, len(questionIDs))
	for _, id := range questionIDs {
		rows = append(rows, model.SolvedQuestion{LearnerKey: learnerKey, QuestionID: id, SolvedAt: now})
	}
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *PracticeRepository) UnmarkSolved(learnerKey string, questionID uint) error {
	return r.DB.Where("learner_key = ? AND question_id = ?", learnerKey, questionID).
		Delete(&model.SolvedQuestion{}).Error
}

func (r *PracticeRepository) SolvedQuestionIDs(learnerKey string) (map[uint]time.Time, error) {
	var rows []model.SolvedQuestion
	if err := r.DB.Where("learner_key = ?", learnerKey).Find(&rows).Error; err != nil {
		return nil, err
	}
	solved := make(map[uint]time.Time, len(rows))
	for _, row := range rows {
		solved[row.QuestionID] = row.SolvedAt
	}
	return solved, nil
}

// SolvedSlugs 按完成时间排序
func (r *PracticeRepository) SolvedSlugs(learnerKey string) ([]string, error) {
	var slugs []string
	err := r.DB.Table("solved_questions").
		Select("practice_questions.slug").
		Joins("JOIN practice_questions ON practice_questions.id = solved_questions.question_id AND practice_questions.deleted_at IS NULL").
		Where("solved_questions.learner_key = ?", learnerKey).
		Order("solved_questions.solved_at ASC, solved_questions.id ASC").
		Pluck("practice_questions.slug", &slugs).Error
	return slugs, err
}

type DifficultyCount struct {
	Difficulty model.Difficulty
	Count      int64
}

func (r *PracticeRepository) CountByDifficulty() ([]DifficultyCount, error) {
	var counts []DifficultyCount
	err := r.DB.Model(&model.PracticeQuestion{}).
		Select("difficulty, COUNT(*) AS count").
		Group("difficulty").
		Scan(&counts).Error
	return counts, err
}

func (r *PracticeRepository) CountSolvedByDifficulty(learnerKey string) ([]DifficultyCount, error) {
	var counts []DifficultyCount
	err := r.DB.Table("solved_questions").
		Select("practice_questions.difficulty AS difficulty, COUNT(*) AS count").
		Joins("JOIN practice_questions ON practice_questions.id = solved_questions.question_id AND practice_questions.deleted_at IS NULL").
		Where("solved_questions.learner_key = ?", learnerKey).
		Group("practice_questions.difficulty").
		Scan(&counts).Error
	return counts, err
}
