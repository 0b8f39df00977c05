// 手动导入课程分类
//
// 应用启动时会自动补齐缺失的分类，此脚本用于在不启动服务的情况下导入，
// 例如首次部署或修改 configs/categories.yaml 之后。
//
// 用法: go run scripts/seed_categories.go [-config configs] [-file configs/categories.yaml]

package main

import (
	"context"
	"flag"
	"log"

	"coursehub_backend/internal/config"
	"coursehub_backend/pkg/database"
	"coursehub_backend/pkg/logger"
)

func main() {
	configDir := flag.String("config", "configs", "directory containing config.yaml")
	seedFile := flag.String("file", "configs/categories.yaml", "category seed file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	created, err := database.SeedCategories(context.Background(), db, *seedFile)
	if err != nil {
		log.Fatalf("导入分类失败: %v", err)
	}
	log.Printf("完成！新增 %d 个分类", created)
}
