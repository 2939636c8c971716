package entity

import (
	"time"

	"github.com/google/uuid"
)

type APISession struct {
	Id                uuid.UUID
	UserId            string
	ApiUrl            string
	StartedAt         time.Time
	ExploredEndpoints []string
	UpdatedAt         *time.Time
}
