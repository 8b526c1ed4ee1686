package schema

import "time"

// SchemaMeta 记录数据库 schema 版本，让升级由版本号门闸控制，而不是每次盲跑 AutoMigrate。
// 表内仅维护单行（ID=1）。
type SchemaMeta struct {
	ID            int       `gorm:"primaryKey"`
	SchemaVersion int       `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (SchemaMeta) TableName() string {
	return "schema_meta"
}
