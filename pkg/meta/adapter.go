package meta

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 封装 GORM 实例，作为目录层的入口
type DB struct {
	conn *gorm.DB
}

// NewDB 打开 (或创建) sqlite 目录库并迁移表结构。
// path 用 "file::memory:" 可以得到纯内存库，测试方便。
func NewDB(path string) (*DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		// 目录只是旁路索引，SQL 日志太吵，关掉
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	if err := db.AutoMigrate(&ObjectModel{}); err != nil {
		return nil, fmt.Errorf("catalog migration failed: %w", err)
	}

	return &DB{conn: db}, nil
}

// NewWithConn 复用已有的 GORM 连接 (依赖注入/测试用)
func NewWithConn(conn *gorm.DB) *DB {
	return &DB{conn: conn}
}

func (d *DB) GetConn() *gorm.DB {
	return d.conn
}
