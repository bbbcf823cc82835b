package variant

import (
	"errors"
	"time"
)

var (
	// ErrDuplicateVariant 表示同名(区分大小写)的咖啡品种已存在
	ErrDuplicateVariant = errors.New("variant already exists")
	// ErrInvalidName 表示品种名称为空
	ErrInvalidName = errors.New("variant name is required")
)

// Record 定义了数据库中咖啡品种的数据结构
// 品种创建后不会被修改或删除
type Record struct {
	ID uint `gorm:"primarykey"`

	// Name 是品种的唯一名称，区分大小写，例如 "Espresso"
	Name string `gorm:"uniqueIndex;not null"`

	CreatedAt time.Time
}

// TableName 指定品种表名
func (Record) TableName() string {
	return "coffee_variants"
}
