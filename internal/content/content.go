// Package content 内置的官网内容（页面、博客、工具目录、练习题、打字文本），
// 启动时按 slug / hash 幂等写入数据库。
package content

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"helloworld_backend/internal/model"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed data/*.yaml
var dataFS embed.FS

type Bundle struct {
	Pages     []model.Page
	Posts     []model.BlogPost
	Tools     []model.Tool
	Questions []model.PracticeQuestion
	Passages  []model.TypingPassage
}

type SeedReport struct {
	Pages     int `json:"pages"`
	Posts     int `json:"posts"`
	Tools     int `json:"tools"`
	Questions int `json:"questions"`
	Passages  int `json:"passages"`
}

func readYAML(name string, out interface{}) error {
	data, err := dataFS.ReadFile("data/" + name)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// Load 解析内置 YAML 并补全派生字段
func Load() (*Bundle, error) {
	b := &Bundle{}
	files := []struct {
		name string
		out  interface{}
	}{
		{"pages.yaml", &b.Pages},
		{"blog.yaml", &b.Posts},
		{"tools.yaml", &b.Tools},
		{"practice.yaml", &b.Questions},
		{"typing.yaml", &b.Passages},
	}
	for _, f := range files {
		if err := readYAML(f.name, f.out); err != nil {
			return nil, err
		}
	}

	for i := range b.Questions {
		q := &b.Questions[i]
		if !q.Difficulty.Valid() {
			return nil, fmt.Errorf("question %s: invalid difficulty %q", q.Slug, q.Difficulty)
		}
	}

	for i := range b.Passages {
		FillPassage(&b.Passages[i])
	}

	return b, nil
}

// FillPassage 计算字数、字符数和内容 hash
func FillPassage(p *model.TypingPassage) {
	p.Text = strings.TrimSpace(p.Text)
	p.TotalChars = utf8.RuneCountInString(p.Text)
	p.TotalWords = len(strings.Fields(p.Text))
	sum := sha256.Sum256([]byte(p.Text))
	p.Hash = hex.EncodeToString(sum[:])
}

func upsert(db *gorm.DB, key string, rows interface{}, n int) error {
	if n == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: key}},
		UpdateAll: true,
	}).Create(rows).Error
}

// Seed 将内置内容写入数据库，重复执行结果一致
func Seed(db *gorm.DB) (*SeedReport, error) {
	b, err := Load()
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, "slug", &b.Pages, len(b.Pages)); err != nil {
			return fmt.Errorf("seed pages: %w", err)
		}
		if err := upsert(tx, "slug", &b.Posts, len(b.Posts)); err != nil {
			return fmt.Errorf("seed blog posts: %w", err)
		}
		if err := upsert(tx, "slug", &b.Tools, len(b.Tools)); err != nil {
			return fmt.Errorf("seed tools: %w", err)
		}
		if err := upsert(tx, "slug", &b.Questions, len(b.Questions)); err != nil {
			return fmt.Errorf("seed practice questions: %w", err)
		}
		if err := upsert(tx, "hash", &b.Passages, len(b.Passages)); err != nil {
			return fmt.Errorf("seed typing passages: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SeedReport{
		Pages:     len(b.Pages),
		Posts:     len(b.Posts),
		Tools:     len(b.Tools),
		Questions: len(b.Questions),
		Passages:  len(b.Passages),
	}, nil
}
