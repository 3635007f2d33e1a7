package service

import (
	"errors"
	"fmt"
	"helloworld_backend/internal/model"
	"helloworld_backend/internal/repository"
	"helloworld_backend/internal/util"
	"strings"
	"time"

	"gorm.io/gorm"
)

type PracticeService struct {
	PracticeRepo *repository.PracticeRepository
}

func NewPracticeService(practiceRepo *repository.PracticeRepository) *PracticeService {
	return &PracticeService{PracticeRepo: practiceRepo}
}

type SolvedStatus string

const (
	StatusAny      SolvedStatus = ""
	StatusSolved   SolvedStatus = "solved"
	StatusUnsolved SolvedStatus = "unsolved"
)

type QuestionQuery struct {
	Topic      string
	Difficulty model.Difficulty
	Search     string
	Status     SolvedStatus
	LearnerKey string
}

type QuestionItem struct {
	model.PracticeQuestion
	Solved   bool       `json:"solved"`
	SolvedAt *time.Time `json:"solvedAt,omitempty"`
}

// ListQuestions 按主题 / 难度 / 关键字过滤；按完成状态过滤时需要学习者标识
func (s *PracticeService) ListQuestions(q QuestionQuery) ([]QuestionItem, error) {
	if q.Difficulty != "" && !q.Difficulty.Valid() {
		return nil, fmt.Errorf("%w: difficulty must be one of easy, medium, hard", util.ErrInvalidInput)
	}
	if q.Status != StatusAny && q.Status != StatusSolved && q.Status != StatusUnsolved {
		return nil, fmt.Errorf("%w: status must be solved or unsolved", util.ErrInvalidInput)
	}
	if q.Status != StatusAny && q.LearnerKey == "" {
		return nil, util.ErrLearnerRequired
	}

	questions, err := s.PracticeRepo.ListQuestions(repository.QuestionFilter{
		Topic:      strings.TrimSpace(q.Topic),
		Difficulty: q.Difficulty,
		Query:      strings.TrimSpace(q.Search),
	})
	if err != nil {
		return nil, err
	}

	solved := map[uint]time.Time{}
	if q.LearnerKey != "" {
		solved, err = s.PracticeRepo.SolvedQuestionIDs(q.LearnerKey)
		if err != nil {
			return nil, err
		}
	}

	items := make([]QuestionItem, 0, len(questions))
	for _, question := range questions {
		at, ok := solved[question.ID]
		if q.Status == StatusSolved && !ok {
			continue
		}
		if q.Status == StatusUnsolved && ok {
			continue
		}
		item := QuestionItem{PracticeQuestion: question, Solved: ok}
		if ok {
			t := at
			item.SolvedAt = &t
		}
		items = append(items, item)
	}
	return items, nil
}

// GetQuestion reveal 为 false 时不返回参考答案
func (s *PracticeService) GetQuestion(slug, learnerKey string, reveal bool) (*QuestionItem, error) {
	question, err := s.findQuestion(slug)
	if err != nil {
		return nil, err
	}
	if !reveal {
		question.Solution = ""
	}

	item := &QuestionItem{PracticeQuestion: *question}
	if learnerKey != "" {
		solved, err := s.PracticeRepo.SolvedQuestionIDs(learnerKey)
		if err != nil {
			return nil, err
		}
		if at, ok := solved[question.ID]; ok {
			item.Solved = true
			item.SolvedAt = &at
		}
	}
	return item, nil
}

func (s *PracticeService) Topics() ([]string, error) {
	return s.PracticeRepo.Topics()
}

func (s *PracticeService) findQuestion(slug string) (*model.PracticeQuestion, error) {
	question, err := s.PracticeRepo.FindQuestionBySlug(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	return question, err
}

// MarkSolved 幂等
func (s *PracticeService) MarkSolved(learnerKey, slug string) error {
	question, err := s.findQuestion(slug)
	if err != nil {
		return err
	}
	return s.PracticeRepo.MarkSolved(learnerKey, question.ID)
}

// UnmarkSolved 未完成的题目取消标记同样返回成功
func (s *PracticeService) UnmarkSolved(learnerKey, slug string) error {
	question, err := s.findQuestion(slug)
	if err != nil {
		return err
	}
	return s.PracticeRepo.UnmarkSolved(learnerKey, question.ID)
}

func (s *PracticeService) SolvedSlugs(learnerKey string) ([]string, error) {
	return s.PracticeRepo.SolvedSlugs(learnerKey)
}

type ImportResult struct {
	Imported []string `json:"imported"`
	Unknown  []string `json:"unknown"`
}

// ImportSolved 合并浏览器本地存储中的已完成题目，未知 slug 忽略并返回
func (s *PracticeService) ImportSolved(learnerKey string, slugs []string) (*ImportResult, error) {
	seen := map[string]bool{}
	unique := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		slug = strings.TrimSpace(slug)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		unique = append(unique, slug)
	}

	questions, err := s.PracticeRepo.FindQuestionsBySlugs(unique)
	if err != nil {
		return nil, err
	}

	known := make(map[string]uint, len(questions))
	for _, q := range questions {
		known[q.Slug] = q.ID
	}

	result := &ImportResult{Imported: []string{}, Unknown: []string{}}
	ids := make([]uint, 0, len(questions))
	for _, slug := range unique {
		id, ok := known[slug]
		if !ok {
			result.Unknown = append(result.Unknown, slug)
			continue
		}
		ids = append(ids, id)
		result.Imported = append(result.Imported, slug)
	}

	if err := s.PracticeRepo.MarkSolved(learnerKey, ids...); err != nil {
		return nil, err
	}
	return result, nil
}

type DifficultyStat struct {
	Difficulty model.Difficulty `json:"difficulty"`
	Solved     int64            `json:"solved"`
	Total      int64            `json:"total"`
}

type PracticeStats struct {
	Solved       int64            `json:"solved"`
	Total        int64            `json:"total"`
	ByDifficulty []DifficultyStat `json:"byDifficulty"`
}

func (s *PracticeService) Stats(learnerKey string) (*PracticeStats, error) {
	totals, err := s.PracticeRepo.CountByDifficulty()
	if err != nil {
		return nil, err
	}
	solved, err := s.PracticeRepo.CountSolvedByDifficulty(learnerKey)
	if err != nil {
		return nil, err
	}

	totalBy := map[model.Difficulty]int64{}
	for _, c := range totals {
		totalBy[c.Difficulty] = c.Count
	}
	solvedBy := map[model.Difficulty]int64{}
	for _, c := range solved {
		solvedBy[c.Difficulty] = c.Count
	}

	stats := &PracticeStats{ByDifficulty: make([]DifficultyStat, 0, len(model.Difficulties))}
	for _, d := range model.Difficulties {
		stats.ByDifficulty = append(stats.ByDifficulty, DifficultyStat{
			Difficulty: d,
			Solved:     solvedBy[d],
			Total:      totalBy[d],
		})
		stats.Solved += solvedBy[d]
		stats.Total += totalBy[d]
	}
	return stats, nil
}
