package dto

type HealthResponse struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	CorpusChunks int64  `json:"corpus_chunks"`
	Timestamp    string `json:"timestamp"`
}
