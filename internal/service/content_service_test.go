package service

import (
	"context"
	"math"
	"testing"

	"helloworld_backend/internal/model"
	"helloworld_backend/internal/repository"
	"helloworld_backend/internal/testutil"
	"helloworld_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentListPosts(t *testing.T) {
	db := testutil.NewSeededDB(t)
	svc := NewContentService(repository.NewContentRepository(db), db, nil)
	ctx := context.Background()

	list, err := svc.ListPosts(ctx, PostQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), list.Total)
	require.Len(t, list.Posts, 2)
	assert.Equal(t, "using-ai-responsibly-in-class", list.Posts[0].Slug)
	assert.Empty(t, list.Posts[0].Body)

	last, err := svc.ListPosts(ctx, PostQuery{Page: 3, Limit: 2})
	require.NoError(t, err)
	require.Len(t, last.Posts, 1)
	assert.Equal(t, "why-kids-should-learn-python-first", last.Posts[0].Slug)

	beyond, err := svc.ListPosts(ctx, PostQuery{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond.Posts)

	huge, err := svc.ListPosts(ctx, PostQuery{Page: math.MaxInt/2 + 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, huge.Posts)
	assert.Equal(t, int64(5), huge.Total)

	tagged, err := svc.ListPosts(ctx, PostQuery{Tag: "Parents", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), tagged.Total)

	guides, err := svc.ListPosts(ctx, PostQuery{Category: "guides", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), guides.Total)
}

func TestContentGetters(t *testing.T) {
	db := testutil.NewSeededDB(t)
	svc := NewContentService(repository.NewContentRepository(db), db, nil)
	ctx := context.Background()

	post, err := svc.GetPost(ctx, "sql-for-teens")
	require.NoError(t, err)
	assert.NotEmpty(t, post.Body)

	_, err = svc.GetPost(ctx, "nope")
	assert.ErrorIs(t, err, util.ErrPostNotFound)

	pages, err := svc.ListPages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 6)
	assert.Equal(t, "home", pages[0].Slug)

	_, err = svc.GetPage(ctx, "nope")
	assert.ErrorIs(t, err, util.ErrPageNotFound)

	tool, err := svc.GetTool(ctx, "sql-formatter")
	require.NoError(t, err)
	assert.Equal(t, model.ToolFormatter, tool.Category)

	_, err = svc.GetTool(ctx, "nope")
	assert.ErrorIs(t, err, util.ErrToolNotFound)

	tags, err := svc.Tags(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, tags)
	assert.Equal(t, TagCount{Tag: "parents", Count: 2}, tags[0])
}

func TestContentCacheAndReseed(t *testing.T) {
	db := testutil.NewSeededDB(t)
	mr, rdb := testutil.NewRedis(t)
	svc := NewContentService(repository.NewContentRepository(db), db, rdb)
	ctx := context.Background()

	tools, err := svc.ListTools(ctx, "")
	require.NoError(t, err)
	assert.Len(t, tools, 18)
	assert.True(t, mr.Exists("content:tools:"))

	require.NoError(t, svc.Warmup(ctx))
	assert.True(t, mr.Exists("content:pages"))
	assert.True(t, mr.Exists("content:posts:"))

	report, err := svc.Reseed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 13, report.Questions)
	assert.False(t, mr.Exists("content:tools:"))
	assert.False(t, mr.Exists("content:pages"))
}
