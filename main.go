// @title Hello World Classes API
// @version 1.0
// @description Hello World Classes 官网与练习平台的后端服务：内容、练习题、AI 助教、代码运行、语音合成和小工具。

// @contact.name Hello World Classes
// @contact.email support@helloworldclasses.com

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"helloworld_backend/internal/app"
	"helloworld_backend/internal/config"
	"helloworld_backend/pkg/logger"
	"log"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移和内容写入，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	seed := flag.Bool("seed", false, "启动时重新写入内置内容（页面、博客、工具、练习题、打字文本）")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly
	cfg.ForceSeed = *seed

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	application.Run()
}
