package controller

import (
	"helloworld_backend/internal/service"
	"helloworld_backend/internal/util"
	"io"

	"github.com/gin-gonic/gin"
)

type AIController struct {
	AIService *service.AIService
}

func NewAIController(aiService *service.AIService) *AIController {
	return &AIController{AIService: aiService}
}

// swagger:model AskRequest
type AskRequest struct {
	Prompt  string                  `json:"prompt" binding:"required"`
	History []service.AIChatMessage `json:"history"`
}

// Ask godoc
// @Summary AI 问答
// @Tags AI
// @Accept json
// @Produce json
// @Param body body AskRequest true "问题"
// @Success 200 {object} util.Response{data=object}
// @Failure 502 {object} util.Response "AI Error: ..."
// @Router /api/ai/ask [post]
func (c *AIController) Ask(ctx *gin.Context) {
	var req AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	answer, err := c.AIService.Ask(ctx.Request.Context(), util.OptionalLearnerKey(ctx), req.Prompt, req.History)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"text": answer})
}

// AskStream 流式问答
// @Summary AI 流式问答
// @Description SSE 事件：message（文本片段）、error、end
// @Tags AI
// @Accept json
// @Produce text/event-stream
// @Param body body AskRequest true "问题"
// @Router /api/ai/ask/stream [post]
func (c *AIController) AskStream(ctx *gin.Context) {
	var req AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	stream, errChan, err := c.AIService.AskStream(ctx.Request.Context(), util.OptionalLearnerKey(ctx), req.Prompt, req.History)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")

	ctx.Stream(func(w io.Writer) bool {
		chunk, ok := <-stream
		if !ok {
			return false
		}
		ctx.SSEvent("message", chunk)
		return true
	})

	if err := <-errChan; err != nil {
		ctx.SSEvent("error", err.Error())
	}
	ctx.SSEvent("end", "done")
	ctx.Writer.Flush()
}

// Quiz godoc
// @Summary AI 生成选择题
// @Tags AI
// @Accept json
// @Produce json
// @Param body body service.QuizRequest true "主题、数量（1-10）、难度"
// @Success 200 {object} util.Response{data=[]service.QuizQuestion}
// @Failure 502 {object} util.Response "AI Error: ..."
// @Router /api/ai/quiz [post]
func (c *AIController) Quiz(ctx *gin.Context) {
	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	questions, err := c.AIService.GenerateQuiz(ctx.Request.Context(), util.OptionalLearnerKey(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// Explain godoc
// @Summary AI 解释代码
// @Tags AI
// @Accept json
// @Produce json
// @Param body body service.CodeRequest true "语言和代码"
// @Success 200 {object} util.Response{data=object}
// @Router /api/ai/explain [post]
func (c *AIController) Explain(ctx *gin.Context) {
	var req service.CodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	text, err := c.AIService.Explain(ctx.Request.Context(), util.OptionalLearnerKey(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"text": text})
}

// Review godoc
// @Summary AI 代码点评
// @Tags AI
// @Accept json
// @Produce json
// @Param body body service.CodeRequest true "语言和代码"
// @Success 200 {object} util.Response{data=service.CodeReview}
// @Router /api/ai/review [post]
func (c *AIController) Review(ctx *gin.Context) {
	var req service.CodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	review, err := c.AIService.Review(ctx.Request.Context(), util.OptionalLearnerKey(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, review)
}
