package meta

import "time"

// ObjectModel 是 parcel 对象在关系型数据库里的投影 (目录/索引)。
// 真实数据永远在 parcel 文件里；这张表只是给 ls / 统计查询加速，
// 核心层从不读它，由 CLI 层在 store/rm 之后同步。
type ObjectModel struct {
	// UID 是主键 (标准 UUID 文本格式)
	UID string `gorm:"primaryKey;type:char(36)"`

	// Type 是类型标签的可读名称 ("uint" / "string" / ...)
	Type string `gorm:"index;type:varchar(16)"`

	// Size 是 out-of-line 负载长度；内嵌类型记 0
	Size int64

	UpdatedAt time.Time
}

// TableName 强制指定表名
func (ObjectModel) TableName() string {
	return "objects"
}
