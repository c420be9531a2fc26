package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/herbvita/shop_backend/internal/models"
)

// Search runs a fuzzy multi-field product query against the index.
func Search(ctx context.Context, es *elasticsearch.Client, index, query, category string, from, size int) (int64, []models.Product, error) {
	must := []map[string]any{
		{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description", "benefits", "ingredients"},
				"fuzziness": "AUTO",
			},
		},
	}
	if category != "" {
		must = append(must, map[string]any{
			"term": map[string]any{"category": category},
		})
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"must": must},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}
