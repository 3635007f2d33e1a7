package database

import (
	"fmt"
	"helloworld_backend/internal/config"
	"helloworld_backend/internal/content"
	"helloworld_backend/internal/model"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models 需要自动迁移的表
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Page{},
		&model.BlogPost{},
		&model.Tool{},
		&model.PracticeQuestion{},
		&model.SolvedQuestion{},
		&model.TypingPassage{},
		&model.TypingScore{},
		&model.SpeechClip{},
		&model.CodeRun{},
		&model.AIGeneration{},
	}
}

func InitDB(cfg *config.DatabaseConfig, mode string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	logLevel := logger.Warn
	if mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")
	return db, nil
}

// Migrate 自动迁移并写入内置内容
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	log.Println("Database migration completed")

	report, err := content.Seed(db)
	if err != nil {
		return err
	}
	log.Printf("Seeded content: %d pages, %d posts, %d tools, %d questions, %d passages",
		report.Pages, report.Posts, report.Tools, report.Questions, report.Passages)
	return nil
}
