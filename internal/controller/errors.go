package controller

import (
	"errors"
	"helloworld_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError 将服务层错误映射为 HTTP 状态码
func respondError(ctx *gin.Context, err error) {
	var upstream *util.UpstreamError
	switch {
	case errors.Is(err, util.ErrAIUnavailable):
		util.Error(ctx, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &upstream):
		util.BadGateway(ctx, upstream.Public)
	case errors.Is(err, util.ErrPageNotFound),
		errors.Is(err, util.ErrPostNotFound),
		errors.Is(err, util.ErrToolNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrPassageNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.NotFoundMessage(ctx, err.Error())
	case errors.Is(err, util.ErrLearnerRequired),
		errors.Is(err, util.ErrInvalidLearner),
		errors.Is(err, util.ErrUnsupportedLanguage),
		errors.Is(err, util.ErrTextTooLong),
		errors.Is(err, util.ErrEmptyInput),
		errors.Is(err, util.ErrInvalidDuration),
		errors.Is(err, util.ErrInvalidInput):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrEmailRegistered):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// learnerKey 需要学习者标识的接口调用，失败时已写入响应
func learnerKey(ctx *gin.Context) (string, bool) {
	key, err := util.LearnerKey(ctx)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return "", false
	}
	return key, true
}
