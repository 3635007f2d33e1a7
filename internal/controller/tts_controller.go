package controller

import (
	"helloworld_backend/internal/service"
	"helloworld_backend/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TTSController struct {
	TTSService *service.TTSService
}

func NewTTSController(ttsService *service.TTSService) *TTSController {
	return &TTSController{TTSService: ttsService}
}

// swagger:model TTSRequest
type TTSRequest struct {
	Text string `json:"text" binding:"required"`
	Lang string `json:"lang"`
}

// Synthesize godoc
// @Summary 文本转语音
// @Description 返回 audio/mpeg；相同文本和语言命中缓存
// @Tags 语音
// @Accept json
// @Produce audio/mpeg
// @Param body body TTSRequest true "文本和语言"
// @Success 200 {file} binary
// @Failure 400 {object} util.Response
// @Failure 502 {object} util.Response "Failed to generate audio file."
// @Router /api/tts [post]
func (c *TTSController) Synthesize(ctx *gin.Context) {
	var req TTSRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.TTSService.Synthesize(ctx.Request.Context(), req.Text, req.Lang)
	if err != nil {
		respondError(ctx, err)
		return
	}

	cache := "MISS"
	if result.Cached {
		cache = "HIT"
	}
	ctx.Header("X-Cache", cache)
	ctx.Header("X-Speech-Key", result.CacheKey)
	ctx.Header("Content-Disposition", `inline; filename="speech.mp3"`)
	ctx.Header("Content-Length", strconv.Itoa(len(result.Audio)))
	ctx.Data(http.StatusOK, util.MimeAudioMPEG, result.Audio)
}

// Languages godoc
// @Summary 支持的语音语言
// @Tags 语音
// @Produce json
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/tts/languages [get]
func (c *TTSController) Languages(ctx *gin.Context) {
	util.Success(ctx, c.TTSService.Languages())
}
