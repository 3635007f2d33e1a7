package service

import (
	"context"
	"testing"
	"time"

	"helloworld_backend/internal/model"
	"helloworld_backend/internal/repository"
	"helloworld_backend/internal/testutil"
	"helloworld_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTypingResult(t *testing.T) {
	res := ComputeTypingResult("hello world", "hello wurld", time.Minute)
	assert.Equal(t, TypingResult{TypedChars: 11, CorrectChars: 10, Accuracy: 90.9, GrossWPM: 2.2, NetWPM: 2}, res)

	// 多打的字符不算正确
	res = ComputeTypingResult("abc", "abcdef", 30*time.Second)
	assert.Equal(t, 3, res.CorrectChars)
	assert.Equal(t, 50.0, res.Accuracy)
	assert.Equal(t, 2.4, res.GrossWPM)

	res = ComputeTypingResult("abc", "", time.Minute)
	assert.Zero(t, res.Accuracy)
	assert.Zero(t, res.NetWPM)
}

func TestCleanNickname(t *testing.T) {
	assert.Equal(t, "Anonymous", cleanNickname("  "))
	assert.Equal(t, 30, len([]rune(cleanNickname("ééééééééééééééééééééééééééééééééééé"))))
	assert.Equal(t, "Ada", cleanNickname(" Ada "))
}

func newTypingService(t *testing.T, rdb *redis.Client) (*TypingService, []model.TypingPassage) {
	t.Helper()
	db := testutil.NewSeededDB(t)
	svc := NewTypingService(repository.NewTypingRepository(db), rdb)
	passages, err := svc.ListPassages(model.Easy)
	require.NoError(t, err)
	require.Len(t, passages, 3)
	return svc, passages
}

func TestTypingPassages(t *testing.T) {
	svc, _ := newTypingService(t, nil)

	all, err := svc.ListPassages("")
	require.NoError(t, err)
	assert.Len(t, all, 9)

	p, err := svc.RandomPassage(model.Hard)
	require.NoError(t, err)
	assert.Equal(t, model.Hard, p.Level)

	_, err = svc.ListPassages("insane")
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestTypingSubmitScoreValidation(t *testing.T) {
	svc, passages := newTypingService(t, nil)
	ctx := context.Background()

	_, err := svc.SubmitScore(ctx, testLearner, ScoreRequest{PassageID: passages[0].ID, Typed: "x", DurationMS: 999})
	assert.ErrorIs(t, err, util.ErrInvalidDuration)

	_, err = svc.SubmitScore(ctx, testLearner, ScoreRequest{PassageID: passages[0].ID, Typed: "x", DurationMS: 10*60*1000 + 1})
	assert.ErrorIs(t, err, util.ErrInvalidDuration)

	_, err = svc.SubmitScore(ctx, testLearner, ScoreRequest{PassageID: 9999, Typed: "x", DurationMS: 5000})
	assert.ErrorIs(t, err, util.ErrPassageNotFound)
}

func submitRuns(t *testing.T, svc *TypingService, passage model.TypingPassage) {
	t.Helper()
	ctx := context.Background()
	text := passage.Text

	// ada 第二次更慢，排行榜保留最好成绩
	_, err := svc.SubmitScore(ctx, "anon:ada", ScoreRequest{PassageID: passage.ID, Typed: text, DurationMS: 60000, Nickname: "Ada"})
	require.NoError(t, err)
	_, err = svc.SubmitScore(ctx, "anon:ada", ScoreRequest{PassageID: passage.ID, Typed: text, DurationMS: 120000, Nickname: "Ada"})
	require.NoError(t, err)

	score, err := svc.SubmitScore(ctx, "anon:lin", ScoreRequest{PassageID: passage.ID, Typed: text[:len(text)/2], DurationMS: 60000})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", score.Nickname)
	assert.Equal(t, 100.0, score.Accuracy)
}

func TestTypingLeaderboardRedis(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	svc, passages := newTypingService(t, rdb)
	submitRuns(t, svc, passages[0])

	board, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "Ada", board[0].Nickname)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, ComputeTypingResult(passages[0].Text, passages[0].Text, time.Minute).NetWPM, board[0].NetWPM)
	assert.Equal(t, "Anonymous", board[1].Nickname)

	// redis 清空后回落到数据库
	mr.FlushAll()
	fromDB, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, board, fromDB)
}

func TestTypingLeaderboardWithoutRedis(t *testing.T) {
	svc, passages := newTypingService(t, nil)
	submitRuns(t, svc, passages[0])

	board, err := svc.Leaderboard(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "Ada", board[0].Nickname)
}

func TestTypingLeaderboardKeepsBestRunNickname(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	svc, passages := newTypingService(t, rdb)
	ctx := context.Background()
	p := passages[0]

	_, err := svc.SubmitScore(ctx, "anon:ace", ScoreRequest{PassageID: p.ID, Typed: p.Text, DurationMS: 60000, Nickname: "Ace"})
	require.NoError(t, err)
	// 更慢的一次和同分的一次都不应改名
	_, err = svc.SubmitScore(ctx, "anon:ace", ScoreRequest{PassageID: p.ID, Typed: p.Text, DurationMS: 120000, Nickname: "Slowpoke"})
	require.NoError(t, err)
	_, err = svc.SubmitScore(ctx, "anon:ace", ScoreRequest{PassageID: p.ID, Typed: p.Text, DurationMS: 60000, Nickname: "Tie"})
	require.NoError(t, err)

	board, err := svc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "Ace", board[0].Nickname)

	mr.FlushAll()
	fromDB, err := svc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, board, fromDB)

	// 刷新最好成绩时更新昵称
	_, err = svc.SubmitScore(ctx, "anon:ace", ScoreRequest{PassageID: p.ID, Typed: p.Text, DurationMS: 30000, Nickname: "Rocket"})
	require.NoError(t, err)
	board, err = svc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "Rocket", board[0].Nickname)
}

func TestTypingTopScoresWithTiedRuns(t *testing.T) {
	svc, passages := newTypingService(t, nil)
	ctx := context.Background()
	p := passages[0]

	for i := 0; i < 4; i++ {
		_, err := svc.SubmitScore(ctx, "anon:tied", ScoreRequest{PassageID: p.ID, Typed: p.Text, DurationMS: 30000, Nickname: "Tied"})
		require.NoError(t, err)
	}
	_, err := svc.SubmitScore(ctx, "anon:second", ScoreRequest{PassageID: p.ID, Typed: p.Text, DurationMS: 60000, Nickname: "Second"})
	require.NoError(t, err)
	_, err = svc.SubmitScore(ctx, "anon:third", ScoreRequest{PassageID: p.ID, Typed: p.Text, DurationMS: 90000, Nickname: "Third"})
	require.NoError(t, err)

	board, err := svc.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "Tied", board[0].Nickname)
	assert.Equal(t, "Second", board[1].Nickname)

	scores, err := svc.TypingRepo.TopScores(3)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, "anon:third", scores[2].LearnerKey)
}
