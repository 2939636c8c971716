package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ApiCallHistory struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       string         `gorm:"type:varchar(128);not null;index:idx_api_call_history_user_created,priority:1"`
	ApiUrl       string         `gorm:"type:text;not null"`
	Method       string         `gorm:"type:varchar(10);not null"`
	Endpoint     string         `gorm:"type:text;not null"`
	Status       int            `gorm:"not null"`
	DurationMs   int64          `gorm:"not null"`
	Response     datatypes.JSON `gorm:"type:jsonb"`
	ErrorMessage string         `gorm:"type:text"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index:idx_api_call_history_user_created,priority:2"`
}

func (ApiCallHistory) TableName() string {
	return "api_call_history"
}
