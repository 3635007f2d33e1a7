package service

import (
	"testing"

	"helloworld_backend/internal/model"
	"helloworld_backend/internal/repository"
	"helloworld_backend/internal/testutil"
	"helloworld_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLearner = "anon:5b7f3a52-5f35-4d5e-9c7b-0c4c1c3b8e11"

func newPracticeService(t *testing.T) *PracticeService {
	t.Helper()
	db := testutil.NewSeededDB(t)
	return NewPracticeService(repository.NewPracticeRepository(db))
}

func TestPracticeListQuestionsFilters(t *testing.T) {
	svc := newPracticeService(t)

	all, err := svc.ListQuestions(QuestionQuery{})
	require.NoError(t, err)
	require.Len(t, all, 13)
	assert.Equal(t, "hello-world", all[0].Slug)
	for _, q := range all {
		assert.Empty(t, q.Solution, "list must not leak solutions")
	}

	strs, err := svc.ListQuestions(QuestionQuery{Topic: "strings"})
	require.NoError(t, err)
	assert.Len(t, strs, 4)

	hard, err := svc.ListQuestions(QuestionQuery{Difficulty: model.Hard})
	require.NoError(t, err)
	assert.Len(t, hard, 2)

	found, err := svc.ListQuestions(QuestionQuery{Search: "FIZZ"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "fizzbuzz", found[0].Slug)

	_, err = svc.ListQuestions(QuestionQuery{Difficulty: "extreme"})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = svc.ListQuestions(QuestionQuery{Status: StatusSolved})
	assert.ErrorIs(t, err, util.ErrLearnerRequired)
}

func TestPracticeMarkAndUnmark(t *testing.T) {
	svc := newPracticeService(t)

	require.NoError(t, svc.MarkSolved(testLearner, "fizzbuzz"))
	// 重复标记不报错也不产生重复记录
	require.NoError(t, svc.MarkSolved(testLearner, "fizzbuzz"))
	require.NoError(t, svc.MarkSolved(testLearner, "binary-search"))

	slugs, err := svc.SolvedSlugs(testLearner)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fizzbuzz", "binary-search"}, slugs)

	solved, err := svc.ListQuestions(QuestionQuery{Status: StatusSolved, LearnerKey: testLearner})
	require.NoError(t, err)
	require.Len(t, solved, 2)
	assert.True(t, solved[0].Solved)
	assert.NotNil(t, solved[0].SolvedAt)

	unsolved, err := svc.ListQuestions(QuestionQuery{Status: StatusUnsolved, LearnerKey: testLearner})
	require.NoError(t, err)
	assert.Len(t, unsolved, 11)

	require.NoError(t, svc.UnmarkSolved(testLearner, "fizzbuzz"))
	require.NoError(t, svc.UnmarkSolved(testLearner, "fizzbuzz"))

	slugs, err = svc.SolvedSlugs(testLearner)
	require.NoError(t, err)
	assert.Equal(t, []string{"binary-search"}, slugs)

	// 其他学习者不受影响
	other, err := svc.SolvedSlugs("anon:other")
	require.NoError(t, err)
	assert.Empty(t, other)

	assert.ErrorIs(t, svc.MarkSolved(testLearner, "no-such-question"), util.ErrQuestionNotFound)
}

func TestPracticeGetQuestion(t *testing.T) {
	svc := newPracticeService(t)

	q, err := svc.GetQuestion("fizzbuzz", testLearner, false)
	require.NoError(t, err)
	assert.Empty(t, q.Solution)
	assert.False(t, q.Solved)

	require.NoError(t, svc.MarkSolved(testLearner, "fizzbuzz"))
	q, err = svc.GetQuestion("fizzbuzz", testLearner, true)
	require.NoError(t, err)
	assert.NotEmpty(t, q.Solution)
	assert.True(t, q.Solved)

	_, err = svc.GetQuestion("missing", "", false)
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
}

func TestPracticeImportSolved(t *testing.T) {
	svc := newPracticeService(t)
	require.NoError(t, svc.MarkSolved(testLearner, "hello-world"))

	res, err := svc.ImportSolved(testLearner, []string{"hello-world", "factorial", " factorial ", "made-up", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello-world", "factorial"}, res.Imported)
	assert.Equal(t, []string{"made-up"}, res.Unknown)

	slugs, err := svc.SolvedSlugs(testLearner)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"hello-world", "factorial"}, slugs)
}

func TestPracticeStatsAndTopics(t *testing.T) {
	svc := newPracticeService(t)
	require.NoError(t, svc.MarkSolved(testLearner, "hello-world"))
	require.NoError(t, svc.MarkSolved(testLearner, "factorial"))
	require.NoError(t, svc.MarkSolved(testLearner, "balanced-brackets"))

	stats, err := svc.Stats(testLearner)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Solved)
	assert.Equal(t, int64(13), stats.Total)
	assert.Equal(t, []DifficultyStat{
		{Difficulty: model.Easy, Solved: 1, Total: 6},
		{Difficulty: model.Medium, Solved: 1, Total: 5},
		{Difficulty: model.Hard, Solved: 1, Total: 2},
	}, stats.ByDifficulty)

	topics, err := svc.Topics()
	require.NoError(t, err)
	assert.Equal(t, []string{"arrays", "basics", "conditionals", "loops", "recursion", "searching", "sql", "stacks", "strings"}, topics)
}
