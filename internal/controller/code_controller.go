package controller

import (
	"errors"
	"helloworld_backend/internal/service"
	"helloworld_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CodeController struct {
	CodeRunner *service.CodeRunnerService
}

func NewCodeController(codeRunner *service.CodeRunnerService) *CodeController {
	return &CodeController{CodeRunner: codeRunner}
}

// Runtimes godoc
// @Summary 可运行的语言和版本
// @Tags 代码执行
// @Produce json
// @Success 200 {object} util.Response{data=[]service.Runtime}
// @Failure 502 {object} util.Response
// @Router /api/code/runtimes [get]
func (c *CodeController) Runtimes(ctx *gin.Context) {
	runtimes, err := c.CodeRunner.Runtimes(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, runtimes)
}

// Execute godoc
// @Summary 运行代码
// @Description version 为空时使用最新版本
// @Tags 代码执行
// @Accept json
// @Produce json
// @Param body body service.ExecuteRequest true "代码"
// @Success 200 {object} util.Response{data=service.ExecuteResult}
// @Failure 400 {object} util.Response
// @Failure 413 {object} util.Response
// @Failure 502 {object} util.Response "Code execution failed: ..."
// @Router /api/code/execute [post]
func (c *CodeController) Execute(ctx *gin.Context) {
	if limit := c.CodeRunner.MaxBodyBytes(); limit > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit)
	}

	var req service.ExecuteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			util.Error(ctx, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}
	result, err := c.CodeRunner.Execute(ctx.Request.Context(), util.OptionalLearnerKey(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
