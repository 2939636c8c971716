package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ApiSession is the durable "user is exploring an API" record. One row per user.
type ApiSession struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    string         `gorm:"type:varchar(128);not null;uniqueIndex"`
	ApiUrl    string         `gorm:"type:text;not null"`
	StartedAt time.Time      `gorm:"not null"`
	Meta      datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (ApiSession) TableName() string {
	return "api_sessions"
}
