package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type APICallHistory struct {
	Id           uuid.UUID
	UserId       string
	ApiUrl       string
	Method       string
	Endpoint     string
	Status       int
	DurationMs   int64
	Response     json.RawMessage
	ErrorMessage string
	CreatedAt    time.Time
}
