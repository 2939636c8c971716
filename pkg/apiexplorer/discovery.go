package apiexplorer

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"

	"rag-api-explorer-be/pkg/store"
)

var openAPIPaths = []string{
	"openapi.json",
	"swagger.json",
	"v3/api-docs",
	"api-docs",
}

var probePaths = []string{
	"users",
	"posts",
	"comments",
	"todos",
	"albums",
	"photos",
	"products",
	"items",
	"categories",
	"orders",
	"repositories",
	"events",
}

var openAPIMethods = []string{"get", "post", "put", "patch", "delete"}

type openAPIDocument struct {
	Info struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"info"`
	Paths map[string]map[string]json.RawMessage `json:"paths"`
}

type openAPIOperation struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

// discoverOpenAPI returns nil when no document is published at a well-known path.
func (e *Explorer) discoverOpenAPI(ctx context.Context, baseURL string) *store.APIInfo {
	for _, p := range openAPIPaths {
		resp, err := e.do(ctx, http.MethodGet, baseURL+p, nil)
		if err != nil || resp.status >= 400 {
			continue
		}

		var doc openAPIDocument
		if err := json.Unmarshal(resp.body, &doc); err != nil || len(doc.Paths) == 0 {
			continue
		}

		e.logger.Debug("EXPLORER", "OpenAPI document found", map[string]interface{}{
			"url":   baseURL + p,
			"paths": len(doc.Paths),
		})
		return &store.APIInfo{
			BaseURL:     baseURL,
			Title:       doc.Info.Title,
			Description: doc.Info.Description,
			Source:      store.InfoSourceOpenAPI,
			Endpoints:   endpointsFromOpenAPI(doc),
		}
	}
	return nil
}

func endpointsFromOpenAPI(doc openAPIDocument) []store.Endpoint {
	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var endpoints []store.Endpoint
	for _, p := range paths {
		ops := doc.Paths[p]
		for _, m := range openAPIMethods {
			raw, ok := ops[m]
			if !ok {
				continue
			}
			var op openAPIOperation
			_ = json.Unmarshal(raw, &op)
			desc := op.Summary
			if desc == "" {
				desc = op.Description
			}
			endpoints = append(endpoints, store.Endpoint{
				Method:      strings.ToUpper(m),
				Path:        p,
				Description: desc,
			})
		}
	}
	return endpoints
}

// probe issues a GET on each common resource path and keeps the reachable ones,
// preserving the probe order.
func (e *Explorer) probe(ctx context.Context, baseURL string) []store.Endpoint {
	paths := probePaths
	if e.cfg.MaxProbePaths > 0 && len(paths) > e.cfg.MaxProbePaths {
		paths = paths[:e.cfg.MaxProbePaths]
	}

	results := make([]*store.Endpoint, len(paths))
	sem := make(chan struct{}, probeConcurrency)
	var wg sync.WaitGroup

	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resp, err := e.do(ctx, http.MethodGet, baseURL+p, nil)
			if err != nil || resp.status >= 400 {
				return
			}
			results[i] = &store.Endpoint{
				Method:         http.MethodGet,
				Path:           "/" + p,
				Description:    "Ressource " + p,
				Status:         resp.status,
				ResponseTime:   resp.duration,
				SampleResponse: sample(resp.body),
			}
		}(i, p)
	}
	wg.Wait()

	var endpoints []store.Endpoint
	for _, ep := range results {
		if ep != nil {
			endpoints = append(endpoints, *ep)
		}
	}
	return endpoints
}

// sample keeps the first element of an array payload, or the payload itself.
func sample(body []byte) json.RawMessage {
	var arr []json.RawMessage
	if err := json.Unmarshal(body, &arr); err == nil {
		if len(arr) == 0 {
			return json.RawMessage("[]")
		}
		return arr[0]
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return nil
}
