package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActionCreate = "create"
	ActionDelete = "delete"
)

// HistoryLog is an append-only audit entry for a project mutation.
type HistoryLog struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Action    string            `gorm:"type:varchar(50);not null" json:"action"`
	Details   string            `gorm:"type:varchar(300)" json:"details"`
	Meta      datatypes.JSONMap `swaggertype:"object" json:"meta,omitempty"`
	Timestamp time.Time         `gorm:"autoCreateTime;index" json:"timestamp"`
}

func (HistoryLog) TableName() string { return "history_logs" }
