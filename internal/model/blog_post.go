package model

import (
	"strings"
	"time"
)

// swagger:model BlogPost
type BlogPost struct {
	BaseModel
	Slug         string    `gorm:"size:150;uniqueIndex;not null" json:"slug" yaml:"slug"`
	Title        string    `gorm:"size:255;not null" json:"title" yaml:"title"`
	Excerpt      string    `gorm:"size:500" json:"excerpt" yaml:"excerpt"`
	Body         string    `gorm:"type:text" json:"body,omitempty" yaml:"body"`
	Category     string    `gorm:"size:50;index" json:"category" yaml:"category"`
	Tags         []string  `gorm:"type:text;serializer:json" json:"tags" yaml:"tags"`
	Author       string    `gorm:"size:100" json:"author" yaml:"author"`
	AuthorAvatar string    `gorm:"size:255" json:"authorAvatar" yaml:"authorAvatar"`
	CoverImage   string    `gorm:"size:255" json:"coverImage" yaml:"coverImage"`
	ReadMinutes  int       `gorm:"default:1" json:"readMinutes" yaml:"readMinutes"`
	PublishedAt  time.Time `gorm:"index" json:"publishedAt" yaml:"publishedAt"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}

// HasTag 标签匹配忽略大小写
func (p *BlogPost) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(strings.TrimSpace(t), strings.TrimSpace(tag)) {
			return true
		}
	}
	return false
}
