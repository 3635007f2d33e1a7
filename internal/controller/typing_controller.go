package controller

import (
	"helloworld_backend/internal/model"
	"helloworld_backend/internal/service"
	"helloworld_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TypingController struct {
	TypingService *service.TypingService
}

func NewTypingController(typingService *service.TypingService) *TypingController {
	return &TypingController{TypingService: typingService}
}

// ListPassages godoc
// @Summary 打字练习文本
// @Tags 打字
// @Produce json
// @Param level query string false "easy|medium|hard"
// @Success 200 {object} util.Response{data=[]model.TypingPassage}
// @Router /api/typing/passages [get]
func (c *TypingController) ListPassages(ctx *gin.Context) {
	passages, err := c.TypingService.ListPassages(model.Difficulty(ctx.Query("level")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, passages)
}

// RandomPassage godoc
// @Summary 随机一段练习文本
// @Tags 打字
// @Produce json
// @Param level query string false "easy|medium|hard"
// @Success 200 {object} util.Response{data=model.TypingPassage}
// @Failure 404 {object} util.Response
// @Router /api/typing/passages/random [get]
func (c *TypingController) RandomPassage(ctx *gin.Context) {
	passage, err := c.TypingService.RandomPassage(model.Difficulty(ctx.Query("level")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, passage)
}

// SubmitScore godoc
// @Summary 提交打字成绩
// @Description 服务端重新计算正确字符数、准确率和 WPM
// @Tags 打字
// @Accept json
// @Produce json
// @Param X-Learner-ID header string false "浏览器生成的学习者 UUID"
// @Param body body service.ScoreRequest true "成绩"
// @Success 201 {object} util.Response{data=model.TypingScore}
// @Failure 400 {object} util.Response
// @Router /api/typing/scores [post]
func (c *TypingController) SubmitScore(ctx *gin.Context) {
	key, ok := learnerKey(ctx)
	if !ok {
		return
	}
	var req service.ScoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	score, err := c.TypingService.SubmitScore(ctx.Request.Context(), key, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, score)
}

// Leaderboard godoc
// @Summary 打字排行榜
// @Tags 打字
// @Produce json
// @Param limit query int false "数量" default(10)
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Router /api/typing/leaderboard [get]
func (c *TypingController) Leaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	entries, err := c.TypingService.Leaderboard(ctx.Request.Context(), limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
