package model

// Page 官网静态页面（首页、关于我们、课程介绍等）
// swagger:model Page
type Page struct {
	BaseModel
	Slug      string `gorm:"size:100;uniqueIndex;not null" json:"slug" yaml:"slug"`
	Title     string `gorm:"size:255;not null" json:"title" yaml:"title"`
	Summary   string `gorm:"size:500" json:"summary" yaml:"summary"`
	Body      string `gorm:"type:text" json:"body" yaml:"body"`
	SortOrder int    `gorm:"default:0" json:"sortOrder" yaml:"order"`
}

func (Page) TableName() string {
	return "pages"
}
