package model

import "time"

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

var Difficulties = []Difficulty{Easy, Medium, Hard}

func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if v == d {
			return true
		}
	}
	return false
}

// swagger:model PracticeQuestion
type PracticeQuestion struct {
	BaseModel
	Slug        string     `gorm:"size:150;uniqueIndex;not null" json:"slug" yaml:"slug"`
	Title       string     `gorm:"size:255;not null" json:"title" yaml:"title"`
	Topic       string     `gorm:"size:50;index" json:"topic" yaml:"topic"`
	Difficulty  Difficulty `gorm:"size:10;index" json:"difficulty" yaml:"difficulty"`
	Prompt      string     `gorm:"type:text" json:"prompt" yaml:"prompt"`
	Language    string     `gorm:"size:30" json:"language" yaml:"language"`
	StarterCode string     `gorm:"type:text" json:"starterCode,omitempty" yaml:"starterCode"`
	Hint        string     `gorm:"size:500" json:"hint,omitempty" yaml:"hint"`
	Solution    string     `gorm:"type:text" json:"solution,omitempty" yaml:"solution"`
	SortOrder   int        `gorm:"default:0" json:"sortOrder" yaml:"order"`
}

func (PracticeQuestion) TableName() string {
	return "practice_questions"
}

// SolvedQuestion 学习者已完成的题目，同一学习者对同一题目只记录一次
type SolvedQuestion struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LearnerKey string    `gorm:"size:64;not null;uniqueIndex:idx_learner_question" json:"learnerKey"`
	QuestionID uint      `gorm:"not null;uniqueIndex:idx_learner_question" json:"questionId"`
	SolvedAt   time.Time `json:"solvedAt"`
}

func (SolvedQuestion) TableName() string {
	return "solved_questions"
}
