// internal/store/elastic.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"matchmaking-workers/internal/models"
)

const defaultPageSize = 500

// providerDocument is one provider listing in one category as indexed by the
// marketplace catalog service.
type providerDocument struct {
	ProviderID    string                 `json:"providerId"`
	Category      string                 `json:"category"`
	Region        string                 `json:"region"`
	CategoryCount int                    `json:"categoryCount"`
	RegisteredAt  time.Time              `json:"registeredAt"`
	Responses     models.SurveyResponses `json:"responses,omitempty"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source providerDocument `json:"_source"`
			Sort   []interface{}    `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

// ElasticCandidateSearch pulls the candidate pool for a category from the
// provider search index. The whole pool is read, pageSize hits per request.
type ElasticCandidateSearch struct {
	client   *elasticsearch.Client
	index    string
	pageSize int
}

func NewElasticCandidateSearch(client *elasticsearch.Client, index string, pageSize int) *ElasticCandidateSearch {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &ElasticCandidateSearch{client: client, index: index, pageSize: pageSize}
}

// BuildCandidateQuery returns the search body for a category with an
// optional region filter.
func BuildCandidateQuery(category, regionFilter string) map[string]interface{} {
	filterClauses := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"category": category},
		},
	}
	if regionFilter != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"region": regionFilter},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": filterClauses,
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"registeredAt": map[string]interface{}{"order": "asc"}},
			map[string]interface{}{"providerId": map[string]interface{}{"order": "asc"}},
		},
	}
}

// GetCandidateProviders returns every provider listed in category, oldest
// registration first. Pages are chained with search_after on the
// (registeredAt, providerId) sort so no part of a large pool is dropped.
func (s *ElasticCandidateSearch) GetCandidateProviders(ctx context.Context, category, regionFilter string) ([]models.Candidate, error) {
	ctx, span := tracer.Start(ctx, "elasticsearch.GetCandidateProviders", trace.WithAttributes(
		attribute.String("category", category),
		attribute.String("region", regionFilter),
	))
	defer span.End()

	var (
		out         []models.Candidate
		searchAfter []interface{}
		pages       int
	)
	for {
		page, last, err := s.searchPage(ctx, category, regionFilter, searchAfter)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		pages++
		for _, hit := range page.Hits.Hits {
			doc := hit.Source
			out = append(out, models.Candidate{
				ProviderID:    doc.ProviderID,
				CategoryCount: doc.CategoryCount,
				RegisteredAt:  doc.RegisteredAt,
				Region:        doc.Region,
				Responses:     doc.Responses,
			})
		}
		if len(page.Hits.Hits) < s.pageSize || len(last) == 0 {
			break
		}
		searchAfter = last
	}

	if out == nil {
		out = []models.Candidate{}
	}
	span.SetAttributes(attribute.Int("candidates", len(out)), attribute.Int("pages", pages))
	return out, nil
}

func (s *ElasticCandidateSearch) searchPage(ctx context.Context, category, regionFilter string, searchAfter []interface{}) (*searchResponse, []interface{}, error) {
	query := BuildCandidateQuery(category, regionFilter)
	if len(searchAfter) > 0 {
		query["search_after"] = searchAfter
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, nil, fmt.Errorf("encode candidate query: %w", err)
	}

	size := s.pageSize
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, nil, fmt.Errorf("candidate search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, nil, fmt.Errorf("candidate search returned %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, nil, fmt.Errorf("decode candidate search: %w", err)
	}

	var last []interface{}
	if n := len(parsed.Hits.Hits); n > 0 {
		last = parsed.Hits.Hits[n-1].Sort
	}
	return &parsed, last, nil
}
