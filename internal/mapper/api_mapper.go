package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"rag-api-explorer-be/internal/entity"
	"rag-api-explorer-be/internal/model"
	"rag-api-explorer-be/pkg/apperror"
	"rag-api-explorer-be/pkg/store"

	"gorm.io/datatypes"
)

type ApiMapper struct{}

func NewApiMapper() *ApiMapper {
	return &ApiMapper{}
}

type sessionMeta struct {
	ExploredEndpoints []string `json:"exploredEndpoints"`
}

// SessionToEntity fails on a meta column that is not valid session JSON.
func (m *ApiMapper) SessionToEntity(s *model.ApiSession) (*entity.APISession, error) {
	if s == nil {
		return nil, nil
	}

	var meta sessionMeta
	if len(s.Meta) > 0 {
		if err := json.Unmarshal(s.Meta, &meta); err != nil {
			return nil, apperror.Wrap(apperror.ErrSessionStore, fmt.Errorf("invalid session meta for user %s: %w", s.UserId, err))
		}
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.APISession{
		Id:                s.Id,
		UserId:            s.UserId,
		ApiUrl:            s.ApiUrl,
		StartedAt:         s.StartedAt,
		ExploredEndpoints: meta.ExploredEndpoints,
		UpdatedAt:         updatedAt,
	}, nil
}

func (m *ApiMapper) SessionToModel(s *entity.APISession) *model.ApiSession {
	if s == nil {
		return nil
	}

	endpoints := s.ExploredEndpoints
	if endpoints == nil {
		endpoints = []string{}
	}
	raw, _ := json.Marshal(sessionMeta{ExploredEndpoints: endpoints})

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ApiSession{
		Id:        s.Id,
		UserId:    s.UserId,
		ApiUrl:    s.ApiUrl,
		StartedAt: s.StartedAt,
		Meta:      datatypes.JSON(raw),
		UpdatedAt: updatedAt,
	}
}

func (m *ApiMapper) SessionToStore(s *entity.APISession) *store.Session {
	if s == nil {
		return nil
	}
	return &store.Session{
		UserID:    s.UserId,
		APIURL:    s.ApiUrl,
		EnteredAt: s.StartedAt,
		Meta: store.SessionMeta{
			ExploredEndpoints: append([]string(nil), s.ExploredEndpoints...),
		},
	}
}

func (m *ApiMapper) FavoriteToEntity(f *model.ApiFavorite) *entity.APIFavorite {
	if f == nil {
		return nil
	}

	var updatedAt *time.Time
	if !f.UpdatedAt.IsZero() {
		t := f.UpdatedAt
		updatedAt = &t
	}

	return &entity.APIFavorite{
		Id:          f.Id,
		UserId:      f.UserId,
		Url:         f.Url,
		Name:        f.Name,
		Description: f.Description,
		Headers:     f.Headers.Data(),
		LastUsed:    f.LastUsed,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *ApiMapper) FavoriteToModel(f *entity.APIFavorite) *model.ApiFavorite {
	if f == nil {
		return nil
	}

	headers := f.Headers
	if headers == nil {
		headers = map[string]string{}
	}

	var updatedAt time.Time
	if f.UpdatedAt != nil {
		updatedAt = *f.UpdatedAt
	}

	return &model.ApiFavorite{
		Id:          f.Id,
		UserId:      f.UserId,
		Url:         f.Url,
		Name:        f.Name,
		Description: f.Description,
		Headers:     datatypes.NewJSONType(headers),
		LastUsed:    f.LastUsed,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *ApiMapper) FavoriteToStore(f *entity.APIFavorite) store.Favorite {
	return store.Favorite{
		ID:          f.Id.String(),
		UserID:      f.UserId,
		URL:         f.Url,
		Name:        f.Name,
		Description: f.Description,
		Headers:     f.Headers,
		LastUsed:    f.LastUsed,
		CreatedAt:   f.CreatedAt,
	}
}

func (m *ApiMapper) HistoryToEntity(h *model.ApiCallHistory) *entity.APICallHistory {
	if h == nil {
		return nil
	}
	return &entity.APICallHistory{
		Id:           h.Id,
		UserId:       h.UserId,
		ApiUrl:       h.ApiUrl,
		Method:       h.Method,
		Endpoint:     h.Endpoint,
		Status:       h.Status,
		DurationMs:   h.DurationMs,
		Response:     json.RawMessage(h.Response),
		ErrorMessage: h.ErrorMessage,
		CreatedAt:    h.CreatedAt,
	}
}

func (m *ApiMapper) HistoryToModel(h *entity.APICallHistory) *model.ApiCallHistory {
	if h == nil {
		return nil
	}

	var response datatypes.JSON
	if len(h.Response) > 0 && json.Valid(h.Response) {
		response = datatypes.JSON(h.Response)
	}

	return &model.ApiCallHistory{
		Id:           h.Id,
		UserId:       h.UserId,
		ApiUrl:       h.ApiUrl,
		Method:       h.Method,
		Endpoint:     h.Endpoint,
		Status:       h.Status,
		DurationMs:   h.DurationMs,
		Response:     response,
		ErrorMessage: h.ErrorMessage,
		CreatedAt:    h.CreatedAt,
	}
}

func (m *ApiMapper) HistoryToStore(h *entity.APICallHistory) store.HistoryEntry {
	return store.HistoryEntry{
		ID:        h.Id.String(),
		UserID:    h.UserId,
		APIURL:    h.ApiUrl,
		Method:    h.Method,
		Endpoint:  h.Endpoint,
		Timestamp: h.CreatedAt,
		Duration:  h.DurationMs,
		Status:    h.Status,
		Response:  h.Response,
		Error:     h.ErrorMessage,
	}
}
