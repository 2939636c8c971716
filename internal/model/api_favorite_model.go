package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ApiFavorite struct {
	Id          uuid.UUID                            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      string                               `gorm:"type:varchar(128);not null;index"`
	Url         string                               `gorm:"type:text;not null"`
	Name        string                               `gorm:"type:varchar(200);not null"`
	Description string                               `gorm:"type:text"`
	Headers     datatypes.JSONType[map[string]string] `gorm:"type:jsonb"`
	LastUsed    time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (ApiFavorite) TableName() string {
	return "api_favorites"
}
