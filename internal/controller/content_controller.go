package controller

import (
	"helloworld_backend/internal/service"
	"helloworld_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	ContentService *service.ContentService
}

func NewContentController(contentService *service.ContentService) *ContentController {
	return &ContentController{ContentService: contentService}
}

// ListPages godoc
// @Summary 页面列表
// @Tags 内容
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Page}
// @Router /api/pages [get]
func (c *ContentController) ListPages(ctx *gin.Context) {
	pages, err := c.ContentService.ListPages(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, pages)
}

// GetPage godoc
// @Summary 页面详情
// @Tags 内容
// @Produce json
// @Param slug path string true "页面 slug"
// @Success 200 {object} util.Response{data=model.Page}
// @Failure 404 {object} util.Response
// @Router /api/pages/{slug} [get]
func (c *ContentController) GetPage(ctx *gin.Context) {
	page, err := c.ContentService.GetPage(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// ListPosts godoc
// @Summary 博客文章列表
// @Description 按发布时间倒序分页，可按标签和分类过滤
// @Tags 博客
// @Produce json
// @Param tag query string false "标签"
// @Param category query string false "分类"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/blog/posts [get]
func (c *ContentController) ListPosts(ctx *gin.Context) {
	page, limit := util.ParsePage(ctx.Query("page"), ctx.Query("limit"))
	list, err := c.ContentService.ListPosts(ctx.Request.Context(), service.PostQuery{
		Tag:      ctx.Query("tag"),
		Category: ctx.Query("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Paged(ctx, list.Posts, list.Total, page, limit)
}

// GetPost godoc
// @Summary 博客文章详情
// @Tags 博客
// @Produce json
// @Param slug path string true "文章 slug"
// @Success 200 {object} util.Response{data=model.BlogPost}
// @Failure 404 {object} util.Response
// @Router /api/blog/posts/{slug} [get]
func (c *ContentController) GetPost(ctx *gin.Context) {
	post, err := c.ContentService.GetPost(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, post)
}

// ListTags godoc
// @Summary 博客标签
// @Tags 博客
// @Produce json
// @Success 200 {object} util.Response{data=[]service.TagCount}
// @Router /api/blog/tags [get]
func (c *ContentController) ListTags(ctx *gin.Context) {
	tags, err := c.ContentService.Tags(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, tags)
}

// ListTools godoc
// @Summary 工具目录
// @Tags 工具
// @Produce json
// @Param category query string false "分类"
// @Success 200 {object} util.Response{data=[]model.Tool}
// @Router /api/tools [get]
func (c *ContentController) ListTools(ctx *gin.Context) {
	tools, err := c.ContentService.ListTools(ctx.Request.Context(), ctx.Query("category"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, tools)
}

// GetTool godoc
// @Summary 工具详情
// @Tags 工具
// @Produce json
// @Param slug path string true "工具 slug"
// @Success 200 {object} util.Response{data=model.Tool}
// @Failure 404 {object} util.Response
// @Router /api/tools/{slug} [get]
func (c *ContentController) GetTool(ctx *gin.Context) {
	tool, err := c.ContentService.GetTool(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, tool)
}

// Reseed godoc
// @Summary 重新写入内置内容
// @Description 仅管理员，写入后清空内容缓存
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=content.SeedReport}
// @Router /api/admin/content/reseed [post]
func (c *ContentController) Reseed(ctx *gin.Context) {
	report, err := c.ContentService.Reseed(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
