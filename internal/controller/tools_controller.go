package controller

import (
	"helloworld_backend/internal/toolkit"
	"helloworld_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ToolsController 工具页的服务端计算，不依赖数据库
type ToolsController struct{}

func NewToolsController() *ToolsController {
	return &ToolsController{}
}

// swagger:model FormatSQLRequest
type FormatSQLRequest struct {
	SQL       string `json:"sql" binding:"required"`
	Indent    int    `json:"indent" binding:"omitempty,min=1,max=8"`
	Uppercase *bool  `json:"uppercase"`
}

// FormatSQL godoc
// @Summary SQL 格式化
// @Tags 工具
// @Accept json
// @Produce json
// @Param body body FormatSQLRequest true "SQL"
// @Success 200 {object} util.Response{data=object}
// @Router /api/tools/format/sql [post]
func (c *ToolsController) FormatSQL(ctx *gin.Context) {
	var req FormatSQLRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	upper := true
	if req.Uppercase != nil {
		upper = *req.Uppercase
	}
	out, err := toolkit.FormatSQL(req.SQL, toolkit.SQLFormatOptions{Indent: req.Indent, Uppercase: upper})
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, gin.H{"sql": out})
}

// swagger:model FormatJSONRequest
type FormatJSONRequest struct {
	JSON   string `json:"json" binding:"required"`
	Indent *int   `json:"indent"`
	Minify bool   `json:"minify"`
}

// FormatJSON godoc
// @Summary JSON 格式化 / 压缩
// @Tags 工具
// @Accept json
// @Produce json
// @Param body body FormatJSONRequest true "JSON 文本"
// @Success 200 {object} util.Response{data=object}
// @Router /api/tools/format/json [post]
func (c *ToolsController) FormatJSON(ctx *gin.Context) {
	var req FormatJSONRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	indent := 2
	if req.Indent != nil {
		indent = *req.Indent
	}
	out, err := toolkit.FormatJSON(req.JSON, indent, req.Minify)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, gin.H{"json": out})
}

// swagger:model TextCaseRequest
type TextCaseRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode" binding:"required"`
}

// ConvertCase godoc
// @Summary 大小写转换
// @Description mode: upper, lower, title, sentence, camel, snake, kebab
// @Tags 工具
// @Accept json
// @Produce json
// @Param body body TextCaseRequest true "文本"
// @Success 200 {object} util.Response{data=object}
// @Router /api/tools/text/case [post]
func (c *ToolsController) ConvertCase(ctx *gin.Context) {
	var req TextCaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	out, err := toolkit.ConvertCase(req.Text, req.Mode)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, gin.H{"text": out})
}

// swagger:model TextStatsRequest
type TextStatsRequest struct {
	Text string `json:"text"`
}

// TextStats godoc
// @Summary 字数统计
// @Tags 工具
// @Accept json
// @Produce json
// @Param body body TextStatsRequest true "文本"
// @Success 200 {object} util.Response{data=toolkit.TextStats}
// @Router /api/tools/text/stats [post]
func (c *ToolsController) TextStats(ctx *gin.Context) {
	var req TextStatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, toolkit.AnalyzeText(req.Text))
}

// swagger:model ConvertBaseRequest
type ConvertBaseRequest struct {
	Value string `json:"value" binding:"required"`
	From  int    `json:"from" binding:"required"`
	To    int    `json:"to" binding:"required"`
}

// ConvertBase godoc
// @Summary 进制转换
// @Tags 工具
// @Accept json
// @Produce json
// @Param body body ConvertBaseRequest true "数值和进制（2-36）"
// @Success 200 {object} util.Response{data=toolkit.BaseConversion}
// @Router /api/tools/convert/base [post]
func (c *ToolsController) ConvertBase(ctx *gin.Context) {
	var req ConvertBaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	out, err := toolkit.ConvertBase(req.Value, req.From, req.To)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, out)
}

// swagger:model CSVTableRequest
type CSVTableRequest struct {
	CSV       string `json:"csv" binding:"required"`
	HasHeader bool   `json:"hasHeader"`
	Delimiter string `json:"delimiter"`
}

// CSVTable godoc
// @Summary CSV 转 HTML 表格
// @Tags 工具
// @Accept json
// @Produce json
// @Param body body CSVTableRequest true "CSV 文本"
// @Success 200 {object} util.Response{data=toolkit.CSVTable}
// @Router /api/tools/csv/table [post]
func (c *ToolsController) CSVTable(ctx *gin.Context) {
	var req CSVTableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	table, err := toolkit.CSVToHTML(req.CSV, req.HasHeader, req.Delimiter)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, table)
}
