package model

import "time"

// BaseModel 通用时间戳字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// RecordStatus 软删除实体的显式状态
type RecordStatus string

const (
	StatusActive  RecordStatus = "active"
	StatusTrashed RecordStatus = "trashed"
)
