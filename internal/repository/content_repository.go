package repository

import (
	"helloworld_backend/internal/model"

	"gorm.io/gorm"
)

// ContentRepository 页面、博客和工具目录（只读内容）
type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) ListPages() ([]model.Page, error) {
	var pages []model.Page
	err := r.DB.Select("id", "slug", "title", "summary", "sort_order", "created_at", "updated_at").
		Order("sort_order ASC").Find(&pages).Error
	return pages, err
}

func (r *ContentRepository) FindPage(slug string) (*model.Page, error) {
	var page model.Page
	err := r.DB.Where("slug = ?", slug).First(&page).Error
	return &page, err
}

// ListPosts 按发布时间倒序，tag 在内存中过滤（标签以 JSON 存储）
func (r *ContentRepository) ListPosts(category string) ([]model.BlogPost, error) {
	var posts []model.BlogPost
	q := r.DB.Omit("body").Order("published_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Find(&posts).Error
	return posts, err
}

func (r *ContentRepository) FindPost(slug string) (*model.BlogPost, error) {
	var post model.BlogPost
	err := r.DB.Where("slug = ?", slug).First(&post).Error
	return &post, err
}

func (r *ContentRepository) ListTools(category string) ([]model.Tool, error) {
	var tools []model.Tool
	q := r.DB.Order("sort_order ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Find(&tools).Error
	return tools, err
}

func (r *ContentRepository) FindTool(slug string) (*model.Tool, error) {
	var tool model.Tool
	err := r.DB.Where("slug = ?", slug).First(&tool).Error
	return &tool, err
}
