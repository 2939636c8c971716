package dto

import "rag-api-explorer-be/pkg/store"

const DefaultUserId = "default"

type SendMessageRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
	UserId  string `json:"user_id" validate:"max=128"`
}

type GetContextResponse struct {
	UserId  string                 `json:"user_id"`
	Mode    string                 `json:"mode"`
	Context *store.ContextSnapshot `json:"context"`
}

type ClearContextResponse struct {
	UserId  string `json:"user_id"`
	Cleared bool   `json:"cleared"`
}
