package store

import (
	"encoding/json"
	"time"
)

// Endpoint is a discovered method+path pair on an explored API.
type Endpoint struct {
	Method         string          `json:"method"`
	Path           string          `json:"path"`
	Description    string          `json:"description"`
	Status         int             `json:"status,omitempty"`
	ResponseTime   int64           `json:"responseTime,omitempty"`
	SampleResponse json.RawMessage `json:"sampleResponse,omitempty"`
}

// APIInfo is what the prober learned about an API. Read-only for the core.
type APIInfo struct {
	BaseURL     string     `json:"baseUrl"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Source      string     `json:"source"`
	Endpoints   []Endpoint `json:"endpoints"`
	ExploredAt  time.Time  `json:"exploredAt"`
}

const (
	InfoSourceOpenAPI = "openapi"
	InfoSourceProbe   = "probe"
)

type CallOptions struct {
	Method     string
	UserID     string
	FavoriteID string
}

// CallResult is the outcome of one endpoint call. A non-2xx status is reported
// through Error, not as a Go error.
type CallResult struct {
	Status    int               `json:"status"`
	Duration  int64             `json:"duration"`
	Headers   map[string]string `json:"headers"`
	Data      json.RawMessage   `json:"data,omitempty"`
	RawData   json.RawMessage   `json:"rawData,omitempty"`
	Truncated bool              `json:"truncated"`
	Error     string            `json:"error,omitempty"`
}

type Favorite struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	URL         string            `json:"url"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Headers     map[string]string `json:"headers,omitempty"`
	LastUsed    time.Time         `json:"lastUsed"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type FavoriteInput struct {
	URL         string
	Name        string
	Description string
	Headers     map[string]string
}

type HistoryEntry struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	APIURL    string          `json:"apiUrl"`
	Method    string          `json:"method"`
	Endpoint  string          `json:"endpoint"`
	Timestamp time.Time       `json:"timestamp"`
	Duration  int64           `json:"duration"`
	Status    int             `json:"status"`
	Response  json.RawMessage `json:"response,omitempty"`
	Error     string          `json:"error,omitempty"`
}
