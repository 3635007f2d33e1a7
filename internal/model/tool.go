package model

type ToolCategory string

const (
	ToolCalculator ToolCategory = "calculator"
	ToolVisualizer ToolCategory = "visualizer"
	ToolCode       ToolCategory = "code"
	ToolFormatter  ToolCategory = "formatter"
	ToolGame       ToolCategory = "game"
	ToolDocument   ToolCategory = "document"
	ToolAI         ToolCategory = "ai"
)

// Tool 工具目录中的一个条目；Endpoint 为空表示纯前端工具
// swagger:model Tool
type Tool struct {
	BaseModel
	Slug        string       `gorm:"size:100;uniqueIndex;not null" json:"slug" yaml:"slug"`
	Name        string       `gorm:"size:150;not null" json:"name" yaml:"name"`
	Category    ToolCategory `gorm:"size:30;index" json:"category" yaml:"category"`
	Description string       `gorm:"size:500" json:"description" yaml:"description"`
	Icon        string       `gorm:"size:100" json:"icon" yaml:"icon"`
	Endpoint    string       `gorm:"size:150" json:"endpoint,omitempty" yaml:"endpoint"`
	SortOrder   int          `gorm:"default:0" json:"sortOrder" yaml:"order"`
}

func (Tool) TableName() string {
	return "tools"
}
