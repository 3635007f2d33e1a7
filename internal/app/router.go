package app

import (
	"helloworld_backend/docs"
	"helloworld_backend/internal/middleware"
	"helloworld_backend/internal/model"
	"helloworld_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 所有 /api 接口都可选登录，登录用户的学习者标识为 user:<id>
	api := router.Group("/api")
	api.Use(middleware.TryAuthMiddleware(a.Config))

	// 1. 公共路由
	a.registerPublicRoutes(api, c)

	// 2. 调用第三方服务的路由，单独限流
	a.registerUpstreamRoutes(api, c)

	// 3. 需要登录
	authGroup := api.Group("")
	authGroup.Use(middleware.AuthMiddleware(a.Config))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
	}

	// 4. 管理员
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(a.Config), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/content/reseed", c.content.Reseed)
	}
}

func (a *App) registerPublicRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/health", c.health.HealthCheck)
	api.POST("/register", c.auth.Register)
	api.POST("/login", c.auth.Login)

	api.GET("/pages", c.content.ListPages)
	api.GET("/pages/:slug", c.content.GetPage)

	blog := api.Group("/blog")
	{
		blog.GET("/posts", c.content.ListPosts)
		blog.GET("/posts/:slug", c.content.GetPost)
		blog.GET("/tags", c.content.ListTags)
	}

	tools := api.Group("/tools")
	{
		tools.GET("", c.content.ListTools)
		tools.GET("/:slug", c.content.GetTool)
		tools.POST("/format/sql", c.tools.FormatSQL)
		tools.POST("/format/json", c.tools.FormatJSON)
		tools.POST("/text/case", c.tools.ConvertCase)
		tools.POST("/text/stats", c.tools.TextStats)
		tools.POST("/convert/base", c.tools.ConvertBase)
		tools.POST("/csv/table", c.tools.CSVTable)
	}

	practice := api.Group("/practice")
	{
		practice.GET("/questions", c.practice.ListQuestions)
		practice.GET("/questions/:slug", c.practice.GetQuestion)
		practice.PUT("/questions/:slug/solved", c.practice.MarkSolved)
		practice.DELETE("/questions/:slug/solved", c.practice.UnmarkSolved)
		practice.GET("/topics", c.practice.ListTopics)
		practice.GET("/solved", c.practice.ListSolved)
		practice.POST("/solved/import", c.practice.ImportSolved)
		practice.GET("/stats", c.practice.Stats)
	}

	typing := api.Group("/typing")
	{
		typing.GET("/passages", c.typing.ListPassages)
		typing.GET("/passages/random", c.typing.RandomPassage)
		typing.POST("/scores", c.typing.SubmitScore)
		typing.GET("/leaderboard", c.typing.Leaderboard)
	}

	api.GET("/tts/languages", c.tts.Languages)
}

func (a *App) registerUpstreamRoutes(api *gin.RouterGroup, c *controllers) {
	limited := api.Group("")
	limited.Use(a.upstreamLimiter.Middleware())

	ai := limited.Group("/ai")
	{
		ai.POST("/ask", c.ai.Ask)
		ai.POST("/ask/stream", c.ai.AskStream)
		ai.POST("/quiz", c.ai.Quiz)
		ai.POST("/explain", c.ai.Explain)
		ai.POST("/review", c.ai.Review)
	}

	code := limited.Group("/code")
	{
		code.GET("/runtimes", c.code.Runtimes)
		code.POST("/execute", c.code.Execute)
	}

	limited.POST("/tts", c.tts.Synthesize)
}
