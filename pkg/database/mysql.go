package database

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"know-law-go/internal/model"
	"know-law-go/pkg/log"
)

var DB *gorm.DB

// InitMySQL 初始化 MySQL 数据库连接并迁移表结构。
func InitMySQL(dsn string) {
	var err error
	// TranslateError 把驱动层的唯一键冲突翻译为 gorm.ErrDuplicatedKey
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect database", err)
	}

	// 配置连接池
	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 四张业务表；messages 的外键级联在模型标签中声明
	if err := DB.AutoMigrate(
		&model.User{},
		&model.Conversation{},
		&model.Message{},
		&model.Booking{},
	); err != nil {
		log.Fatal("failed to migrate database schema", err)
	}

	log.Info("MySQL database connected successfully")
}
