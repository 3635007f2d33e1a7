package service

import (
	"context"
	"errors"
	"helloworld_backend/internal/content"
	"helloworld_backend/internal/model"
	"helloworld_backend/internal/repository"
	"helloworld_backend/internal/util"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	contentCachePrefix = "content:"
	contentCacheTTL    = 10 * time.Minute
)

// ContentService 页面、博客和工具目录
type ContentService struct {
	ContentRepo *repository.ContentRepository
	DB          *gorm.DB
	cache       *jsonCache
}

func NewContentService(contentRepo *repository.ContentRepository, db *gorm.DB, rdb *redis.Client) *ContentService {
	return &ContentService{
		ContentRepo: contentRepo,
		DB:          db,
		cache:       newJSONCache(rdb, "content"),
	}
}

func (s *ContentService) ListPages(ctx context.Context) ([]model.Page, error) {
	var pages []model.Page
	key := contentCachePrefix + "pages"
	if s.cache.get(ctx, key, &pages) {
		return pages, nil
	}
	pages, err := s.ContentRepo.ListPages()
	if err != nil {
		return nil, err
	}
	s.cache.set(ctx, key, pages, contentCacheTTL)
	return pages, nil
}

func (s *ContentService) GetPage(ctx context.Context, slug string) (*model.Page, error) {
	var page model.Page
	key := contentCachePrefix + "page:" + slug
	if s.cache.get(ctx, key, &page) {
		return &page, nil
	}
	p, err := s.ContentRepo.FindPage(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrPageNotFound
	}
	if err != nil {
		return nil, err
	}
	s.cache.set(ctx, key, p, contentCacheTTL)
	return p, nil
}

type PostQuery struct {
	Tag      string
	Category string
	Page     int
	Limit    int
}

type PostList struct {
	Posts []model.BlogPost
	Total int64
}

func (s *ContentService) allPosts(ctx context.Context, category string) ([]model.BlogPost, error) {
	var posts []model.BlogPost
	key := contentCachePrefix + "posts:" + category
	if s.cache.get(ctx, key, &posts) {
		return posts, nil
	}
	posts, err := s.ContentRepo.ListPosts(category)
	if err != nil {
		return nil, err
	}
	s.cache.set(ctx, key, posts, contentCacheTTL)
	return posts, nil
}

// ListPosts 按发布时间倒序分页，可按标签 / 分类过滤
func (s *ContentService) ListPosts(ctx context.Context, q PostQuery) (*PostList, error) {
	posts, err := s.allPosts(ctx, q.Category)
	if err != nil {
		return nil, err
	}

	if q.Tag != "" {
		filtered := posts[:0:0]
		for i := range posts {
			if posts[i].HasTag(q.Tag) {
				filtered = append(filtered, posts[i])
			}
		}
		posts = filtered
	}

	if q.Limit < 1 {
		q.Limit = util.DefaultPageSize
	}
	if q.Page < 1 {
		q.Page = 1
	}

	total := int64(len(posts))
	// 先按页数比较再相乘，超大的 page 不会溢出
	start := len(posts)
	if pages := (len(posts) + q.Limit - 1) / q.Limit; q.Page-1 < pages {
		start = (q.Page - 1) * q.Limit
	}
	end := start + q.Limit
	if end > len(posts) {
		end = len(posts)
	}

	return &PostList{Posts: posts[start:end], Total: total}, nil
}

func (s *ContentService) GetPost(ctx context.Context, slug string) (*model.BlogPost, error) {
	var post model.BlogPost
	key := contentCachePrefix + "post:" + slug
	if s.cache.get(ctx, key, &post) {
		return &post, nil
	}
	p, err := s.ContentRepo.FindPost(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	s.cache.set(ctx, key, p, contentCacheTTL)
	return p, nil
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Tags 标签使用次数，次数相同按字母序
func (s *ContentService) Tags(ctx context.Context) ([]TagCount, error) {
	posts, err := s.allPosts(ctx, "")
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, p := range posts {
		for _, t := range p.Tags {
			counts[strings.ToLower(strings.TrimSpace(t))]++
		}
	}
	tags := make([]TagCount, 0, len(counts))
	for t, n := range counts {
		tags = append(tags, TagCount{Tag: t, Count: n})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})
	return tags, nil
}

func (s *ContentService) ListTools(ctx context.Context, category string) ([]model.Tool, error) {
	var tools []model.Tool
	key := contentCachePrefix + "tools:" + category
	if s.cache.get(ctx, key, &tools) {
		return tools, nil
	}
	tools, err := s.ContentRepo.ListTools(category)
	if err != nil {
		return nil, err
	}
	s.cache.set(ctx, key, tools, contentCacheTTL)
	return tools, nil
}

func (s *ContentService) GetTool(ctx context.Context, slug string) (*model.Tool, error) {
	t, err := s.ContentRepo.FindTool(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrToolNotFound
	}
	return t, err
}

// Reseed 重新写入内置内容并清空内容缓存
func (s *ContentService) Reseed(ctx context.Context) (*content.SeedReport, error) {
	report, err := content.Seed(s.DB)
	if err != nil {
		return nil, err
	}
	if err := s.cache.deletePrefix(ctx, contentCachePrefix); err != nil {
		return nil, err
	}
	return report, nil
}

// Warmup 预热常用内容缓存
func (s *ContentService) Warmup(ctx context.Context) error {
	if _, err := s.ListPages(ctx); err != nil {
		return err
	}
	if _, err := s.allPosts(ctx, ""); err != nil {
		return err
	}
	_, err := s.ListTools(ctx, "")
	return err
}
