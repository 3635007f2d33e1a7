package model

type AIGenerationKind string

const (
	AIAsk     AIGenerationKind = "ask"
	AIQuiz    AIGenerationKind = "quiz"
	AIExplain AIGenerationKind = "explain"
	AIReview  AIGenerationKind = "review"
)

// AIGeneration 每次调用大模型的记录
type AIGeneration struct {
	BaseModel
	LearnerKey string           `gorm:"size:64;index" json:"-"`
	Kind       AIGenerationKind `gorm:"size:20;index" json:"kind"`
	Model      string           `gorm:"size:100" json:"model"`
	Prompt     string           `gorm:"type:text" json:"prompt"`
	Output     string           `gorm:"type:text" json:"output"`
	Status     string           `gorm:"size:20" json:"status"`
	Error      string           `gorm:"size:1000" json:"error,omitempty"`
	DurationMS int64            `json:"durationMs"`
}

func (AIGeneration) TableName() string {
	return "ai_generations"
}
