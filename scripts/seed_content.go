// 手动重新写入内置内容
//
// 服务启动时（debug 模式或 -migrate / -seed）会自动写入，
// 此脚本用于 release 环境更新内容后手动执行，并清空 Redis 中的内容缓存。
//
// 用法: go run scripts/seed_content.go

package main

import (
	"context"
	"helloworld_backend/internal/config"
	"helloworld_backend/internal/repository"
	"helloworld_backend/internal/service"
	"helloworld_backend/pkg/database"
	"helloworld_backend/pkg/logger"
	"log"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	if err := db.AutoMigrate(database.Models()...); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Printf("Redis 不可用，跳过缓存清理: %v", err)
		rdb = nil
	}

	contentService := service.NewContentService(repository.NewContentRepository(db), db, rdb)

	log.Println("写入内置内容...")
	report, err := contentService.Reseed(context.Background())
	if err != nil {
		log.Fatalf("写入失败: %v", err)
	}
	log.Printf("完成！页面 %d，博客 %d，工具 %d，练习题 %d，打字文本 %d",
		report.Pages, report.Posts, report.Tools, report.Questions, report.Passages)
}
