package entity

import (
	"time"

	"github.com/google/uuid"
)

type APIFavorite struct {
	Id          uuid.UUID
	UserId      string
	Url         string
	Name        string
	Description string
	Headers     map[string]string
	LastUsed    time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
