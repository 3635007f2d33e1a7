package model

// CodeRun 代码执行记录（不保存源码）
type CodeRun struct {
	BaseModel
	LearnerKey string `gorm:"size:64;index" json:"-"`
	Language   string `gorm:"size:30;index" json:"language"`
	Version    string `gorm:"size:30" json:"version"`
	CodeBytes  int    `json:"codeBytes"`
	ExitCode   int    `json:"exitCode"`
	Status     string `gorm:"size:20" json:"status"` // ok, error
	DurationMS int64  `json:"durationMs"`
}

func (CodeRun) TableName() string {
	return "code_runs"
}
