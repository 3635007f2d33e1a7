package controller

import (
	"helloworld_backend/internal/model"
	"helloworld_backend/internal/service"
	"helloworld_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PracticeController struct {
	PracticeService *service.PracticeService
}

func NewPracticeController(practiceService *service.PracticeService) *PracticeController {
	return &PracticeController{PracticeService: practiceService}
}

// ListQuestions godoc
// @Summary 练习题列表
// @Description status 过滤需要登录或 X-Learner-ID
// @Tags 练习
// @Produce json
// @Param topic query string false "主题"
// @Param difficulty query string false "难度 easy|medium|hard"
// @Param q query string false "关键字（标题 / 题干）"
// @Param status query string false "solved|unsolved"
// @Param X-Learner-ID header string false "浏览器生成的学习者 UUID"
// @Success 200 {object} util.Response{data=[]service.QuestionItem}
// @Failure 400 {object} util.Response
// @Router /api/practice/questions [get]
func (c *PracticeController) ListQuestions(ctx *gin.Context) {
	items, err := c.PracticeService.ListQuestions(service.QuestionQuery{
		Topic:      ctx.Query("topic"),
		Difficulty: model.Difficulty(ctx.Query("difficulty")),
		Search:     ctx.Query("q"),
		Status:     service.SolvedStatus(ctx.Query("status")),
		LearnerKey: util.OptionalLearnerKey(ctx),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// GetQuestion godoc
// @Summary 练习题详情
// @Tags 练习
// @Produce json
// @Param slug path string true "题目 slug"
// @Param reveal query bool false "是否返回参考答案"
// @Success 200 {object} util.Response{data=service.QuestionItem}
// @Failure 404 {object} util.Response
// @Router /api/practice/questions/{slug} [get]
func (c *PracticeController) GetQuestion(ctx *gin.Context) {
	item, err := c.PracticeService.GetQuestion(ctx.Param("slug"), util.OptionalLearnerKey(ctx), ctx.Query("reveal") == "true")
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, item)
}

// ListTopics godoc
// @Summary 练习题主题
// @Tags 练习
// @Produce json
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/practice/topics [get]
func (c *PracticeController) ListTopics(ctx *gin.Context) {
	topics, err := c.PracticeService.Topics()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, topics)
}

// ListSolved godoc
// @Summary 已完成题目
// @Tags 练习
// @Produce json
// @Param X-Learner-ID header string false "浏览器生成的学习者 UUID"
// @Success 200 {object} util.Response{data=[]string}
// @Failure 400 {object} util.Response
// @Router /api/practice/solved [get]
func (c *PracticeController) ListSolved(ctx *gin.Context) {
	key, ok := learnerKey(ctx)
	if !ok {
		return
	}
	slugs, err := c.PracticeService.SolvedSlugs(key)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, slugs)
}

// MarkSolved godoc
// @Summary 标记题目已完成
// @Description 重复标记视为成功
// @Tags 练习
// @Produce json
// @Param slug path string true "题目 slug"
// @Param X-Learner-ID header string false "浏览器生成的学习者 UUID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/practice/questions/{slug}/solved [put]
func (c *PracticeController) MarkSolved(ctx *gin.Context) {
	key, ok := learnerKey(ctx)
	if !ok {
		return
	}
	if err := c.PracticeService.MarkSolved(key, ctx.Param("slug")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"slug": ctx.Param("slug"), "solved": true})
}

// UnmarkSolved godoc
// @Summary 取消已完成标记
// @Tags 练习
// @Produce json
// @Param slug path string true "题目 slug"
// @Param X-Learner-ID header string false "浏览器生成的学习者 UUID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/practice/questions/{slug}/solved [delete]
func (c *PracticeController) UnmarkSolved(ctx *gin.Context) {
	key, ok := learnerKey(ctx)
	if !ok {
		return
	}
	if err := c.PracticeService.UnmarkSolved(key, ctx.Param("slug")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"slug": ctx.Param("slug"), "solved": false})
}

// swagger:model ImportSolvedRequest
type ImportSolvedRequest struct {
	Slugs []string `json:"slugs" binding:"required,max=500"`
}

// ImportSolved godoc
// @Summary 导入浏览器本地的完成记录
// @Tags 练习
// @Accept json
// @Produce json
// @Param X-Learner-ID header string false "浏览器生成的学习者 UUID"
// @Param body body ImportSolvedRequest true "题目 slug 列表"
// @Success 200 {object} util.Response{data=service.ImportResult}
// @Router /api/practice/solved/import [post]
func (c *PracticeController) ImportSolved(ctx *gin.Context) {
	key, ok := learnerKey(ctx)
	if !ok {
		return
	}
	var req ImportSolvedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	result, err := c.PracticeService.ImportSolved(key, req.Slugs)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Stats godoc
// @Summary 练习统计
// @Tags 练习
// @Produce json
// @Param X-Learner-ID header string false "浏览器生成的学习者 UUID"
// @Success 200 {object} util.Response{data=service.PracticeStats}
// @Router /api/practice/stats [get]
func (c *PracticeController) Stats(ctx *gin.Context) {
	key, ok := learnerKey(ctx)
	if !ok {
		return
	}
	stats, err := c.PracticeService.Stats(key)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
