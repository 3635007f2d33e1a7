package model

// swagger:model TypingPassage
type TypingPassage struct {
	BaseModel
	Level      Difficulty `gorm:"size:10;index" json:"level" yaml:"level"`
	Title      string     `gorm:"size:150" json:"title" yaml:"title"`
	Text       string     `gorm:"type:text;not null" json:"text" yaml:"text"`
	TotalChars int        `json:"totalChars" yaml:"-"`
	TotalWords int        `json:"totalWords" yaml:"-"`
	Hash       string     `gorm:"size:64;uniqueIndex" json:"hash" yaml:"-"`
}

func (TypingPassage) TableName() string {
	return "typing_passages"
}

// swagger:model TypingScore
type TypingScore struct {
	BaseModel
	LearnerKey   string  `gorm:"size:64;index" json:"-"`
	Nickname     string  `gorm:"size:50" json:"nickname"`
	PassageID    uint    `gorm:"index" json:"passageId"`
	GrossWPM     float64 `json:"grossWpm"`
	NetWPM       float64 `gorm:"index" json:"netWpm"`
	Accuracy     float64 `json:"accuracy"`
	DurationMS   int64   `json:"durationMs"`
	TypedChars   int     `json:"typedChars"`
	CorrectChars int     `json:"correctChars"`
}

func (TypingScore) TableName() string {
	return "typing_scores"
}
