package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"rag-api-explorer-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEndpoints(n int) []store.Endpoint {
	out := make([]store.Endpoint, n)
	for i := range out {
		out[i] = store.Endpoint{
			Method:      "GET",
			Path:        fmt.Sprintf("/resource%d", i+1),
			Description: "Liste",
			Status:      200,
		}
	}
	return out
}

func TestExplorationLimitsInlineEndpoints(t *testing.T) {
	info := &store.APIInfo{Endpoints: makeEndpoints(12)}

	reply := Exploration("https://api.example.com/", info)

	assert.Contains(t, reply.Response, "trouvé 12 endpoints")
	assert.Contains(t, reply.Response, "10. **GET /resource10**")
	assert.NotContains(t, reply.Response, "/resource11")
	assert.Contains(t, reply.Response, "... et 2 autres endpoints")

	data := reply.Data.(map[string]any)
	assert.Len(t, data["endpoints"], 12)
	assert.Len(t, info.Endpoints, 12)
}

func TestExplorationWithoutEndpoints(t *testing.T) {
	reply := Exploration("https://api.example.com/", &store.APIInfo{})
	assert.Contains(t, reply.Response, "je n'ai pas trouvé d'endpoints")
}

func TestExplorationTruncatesSamples(t *testing.T) {
	long := `{"body":"` + strings.Repeat("x", 500) + `"}`
	info := &store.APIInfo{Endpoints: []store.Endpoint{{
		Method: "GET", Path: "/posts", Status: 200, ResponseTime: 42,
		SampleResponse: json.RawMessage(long),
	}}}

	reply := Exploration("https://api.example.com/", info)

	assert.Contains(t, reply.Response, "📊 Statut: 200 (42ms)")
	assert.Contains(t, reply.Response, strings.Repeat("x", 150))
	assert.NotContains(t, reply.Response, strings.Repeat("x", 300))
	assert.Contains(t, reply.Response, "...`")
}

func TestEndpointNotFoundListsEverything(t *testing.T) {
	endpoints := []store.Endpoint{{Method: "GET", Path: "/users"}, {Method: "GET", Path: "/posts"}}

	reply := EndpointNotFound("/missing", endpoints)

	assert.Contains(t, reply.Response, "Je n'ai pas trouvé l'endpoint /missing")
	assert.Contains(t, reply.Response, "1. GET /users")
	assert.Contains(t, reply.Response, "2. GET /posts")
}

func TestCallResult(t *testing.T) {
	ep := store.Endpoint{Method: "GET", Path: "/users"}

	t.Run("success", func(t *testing.T) {
		res := &store.CallResult{
			Status:    200,
			Duration:  35,
			Headers:   map[string]string{"content-type": "application/json"},
			Data:      json.RawMessage(`[{"id":1}]`),
			RawData:   json.RawMessage(`[{"id":1},{"id":2}]`),
			Truncated: true,
		}
		reply := CallResult(ep, res)

		assert.Contains(t, reply.Response, "📡 **Résultat de GET /users**")
		assert.Contains(t, reply.Response, "35ms")
		assert.Contains(t, reply.Response, "application/json")
		assert.Contains(t, reply.Response, "\"id\": 1")
		assert.Contains(t, reply.Response, "tronquées")
		assert.Equal(t, res.RawData, reply.Data)
	})

	t.Run("failed status", func(t *testing.T) {
		res := &store.CallResult{Status: 401, Error: "Unauthorized"}
		reply := CallResult(ep, res)

		assert.Contains(t, reply.Response, "a échoué")
		assert.Contains(t, reply.Response, "Statut: 401")
		assert.Contains(t, reply.Response, "Unauthorized")
	})
}

func TestHistoryPreview(t *testing.T) {
	entries := make([]store.HistoryEntry, 12)
	for i := range entries {
		entries[i] = store.HistoryEntry{
			Method: "GET", Endpoint: "/posts", Status: 200, Duration: 10,
			Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			Response:  json.RawMessage(`"` + strings.Repeat("y", 300) + `"`),
		}
	}
	entries[0].Status = 500
	entries[0].Error = "Internal Server Error"

	reply := History(entries)

	assert.Len(t, reply.History, HistoryListLimit)
	assert.Len(t, entries, 12)
	assert.Contains(t, reply.Response, "(10 derniers)")
	assert.Contains(t, reply.Response, "❌ Erreur: Internal Server Error")
	assert.NotContains(t, reply.Response, strings.Repeat("y", 101))
}

func TestEmptyLists(t *testing.T) {
	assert.Contains(t, History(nil).Response, "est vide")
	assert.Contains(t, Favorites(nil).Response, "pas encore d'APIs favorites")
}

func TestFavorites(t *testing.T) {
	favs := []store.Favorite{{ID: "f1", Name: "API 1", URL: "https://api.github.com/", Description: "Explorée"}}
	reply := Favorites(favs)

	assert.Contains(t, reply.Response, "**Vos APIs favorites** (1)")
	assert.Contains(t, reply.Response, "https://api.github.com/")
	assert.Contains(t, reply.Response, "jamais")
	require.Len(t, reply.Favorites, 1)
}

func TestFailure(t *testing.T) {
	got := Failure("Impossible d'explorer l'API", errors.New("domaine non autorisé"))
	assert.Equal(t, "❌ Impossible d'explorer l'API: domaine non autorisé", got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "éé...", Truncate("éééé", 2))
}
