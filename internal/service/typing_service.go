package service

import (
	"context"
	"errors"
	"fmt"
	"helloworld_backend/internal/model"
	"helloworld_backend/internal/repository"
	"helloworld_backend/internal/util"
	"helloworld_backend/pkg/logger"
	"math"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	leaderboardKey      = "typing:leaderboard"
	leaderboardNamesKey = "typing:leaderboard:names"

	minTypingDuration = time.Second
	maxTypingDuration = 10 * time.Minute
)

type TypingService struct {
	TypingRepo *repository.TypingRepository
	rdb        *redis.Client
}

func NewTypingService(typingRepo *repository.TypingRepository, rdb *redis.Client) *TypingService {
	return &TypingService{TypingRepo: typingRepo, rdb: rdb}
}

func (s *TypingService) ListPassages(level model.Difficulty) ([]model.TypingPassage, error) {
	if level != "" && !level.Valid() {
		return nil, fmt.Errorf("%w: level must be one of easy, medium, hard", util.ErrInvalidInput)
	}
	return s.TypingRepo.ListPassages(level)
}

func (s *TypingService) RandomPassage(level model.Difficulty) (*model.TypingPassage, error) {
	passages, err := s.ListPassages(level)
	if err != nil {
		return nil, err
	}
	if len(passages) == 0 {
		return nil, util.ErrPassageNotFound
	}
	p := passages[rand.IntN(len(passages))]
	return &p, nil
}

type ScoreRequest struct {
	PassageID  uint   `json:"passageId" binding:"required"`
	Typed      string `json:"typed"`
	DurationMS int64  `json:"durationMs" binding:"required"`
	Nickname   string `json:"nickname"`
}

// TypingResult 由服务端根据原文重新计算，不信任前端的成绩
type TypingResult struct {
	TypedChars   int     `json:"typedChars"`
	CorrectChars int     `json:"correctChars"`
	Accuracy     float64 `json:"accuracy"`
	GrossWPM     float64 `json:"grossWpm"`
	NetWPM       float64 `json:"netWpm"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ComputeTypingResult 逐字符位置比较；5 个字符算一个词
func ComputeTypingResult(passage, typed string, duration time.Duration) TypingResult {
	want := []rune(passage)
	got := []rune(typed)
	correct := 0
	for i := range got {
		if i < len(want) && got[i] == want[i] {
			correct++
		}
	}

	res := TypingResult{TypedChars: len(got), CorrectChars: correct}
	if len(got) > 0 {
		res.Accuracy = round1(float64(correct) / float64(len(got)) * 100)
	}
	minutes := duration.Minutes()
	if minutes > 0 {
		res.GrossWPM = round1(float64(len(got)) / 5 / minutes)
		res.NetWPM = round1(float64(correct) / 5 / minutes)
	}
	return res
}

func cleanNickname(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Anonymous"
	}
	if utf8.RuneCountInString(name) > 30 {
		name = string([]rune(name)[:30])
	}
	return name
}

// SubmitScore 校验时长，计算成绩并更新排行榜（每个学习者只保留最好净速度）
func (s *TypingService) SubmitScore(ctx context.Context, learnerKey string, req ScoreRequest) (*model.TypingScore, error) {
	duration := time.Duration(req.DurationMS) * time.Millisecond
	if duration < minTypingDuration || duration > maxTypingDuration {
		return nil, util.ErrInvalidDuration
	}

	passage, err := s.TypingRepo.FindPassage(req.PassageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrPassageNotFound
	}
	if err != nil {
		return nil, err
	}

	res := ComputeTypingResult(passage.Text, req.Typed, duration)
	score := &model.TypingScore{
		LearnerKey:   learnerKey,
		Nickname:     cleanNickname(req.Nickname),
		PassageID:    passage.ID,
		GrossWPM:     res.GrossWPM,
		NetWPM:       res.NetWPM,
		Accuracy:     res.Accuracy,
		DurationMS:   req.DurationMS,
		TypedChars:   res.TypedChars,
		CorrectChars: res.CorrectChars,
	}
	if err := s.TypingRepo.CreateScore(score); err != nil {
		return nil, err
	}

	if s.rdb != nil {
		s.updateLeaderboard(ctx, learnerKey, score)
	}
	return score, nil
}

// updateLeaderboard 只有刷新了最好成绩时才更新昵称，与数据库回落的结果保持一致
func (s *TypingService) updateLeaderboard(ctx context.Context, learnerKey string, score *model.TypingScore) {
	changed, err := s.rdb.ZAddArgs(ctx, leaderboardKey, redis.ZAddArgs{
		GT:      true,
		Ch:      true,
		Members: []redis.Z{{Score: score.NetWPM, Member: learnerKey}},
	}).Result()
	if err != nil {
		logger.Log.Warn("update typing leaderboard failed", zap.Error(err))
		return
	}
	if changed == 0 {
		return
	}
	if err := s.rdb.HSet(ctx, leaderboardNamesKey, learnerKey, score.Nickname).Err(); err != nil {
		logger.Log.Warn("update typing leaderboard name failed", zap.Error(err))
	}
}

type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	Nickname string  `json:"nickname"`
	NetWPM   float64 `json:"netWpm"`
}

// Leaderboard 优先读 redis，不可用或为空时回落到数据库
func (s *TypingService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	if s.rdb != nil {
		entries, err := s.leaderboardFromRedis(ctx, limit)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}
		if err != nil {
			logger.Log.Warn("read typing leaderboard from redis failed", zap.Error(err))
		}
	}

	scores, err := s.TypingRepo.TopScores(limit)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(scores))
	for i, sc := range scores {
		entries = append(entries, LeaderboardEntry{Rank: i + 1, Nickname: sc.Nickname, NetWPM: sc.NetWPM})
	}
	return entries, nil
}

func (s *TypingService) leaderboardFromRedis(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	zs, err := s.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil || len(zs) == 0 {
		return nil, err
	}
	keys := make([]string, len(zs))
	for i, z := range zs {
		keys[i], _ = z.Member.(string)
	}
	names, err := s.rdb.HMGet(ctx, leaderboardNamesKey, keys...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(zs))
	for i, z := range zs {
		name, _ := names[i].(string)
		entries[i] = LeaderboardEntry{Rank: i + 1, Nickname: cleanNickname(name), NetWPM: z.Score}
	}
	return entries, nil
}
