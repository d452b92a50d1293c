// Package search provides the global search box: one query fanned out over
// products, customers, sales, repairs and transfers, merged into a single
// ranked result list.
package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"hussiny/pkg/logger"
)

// Kind of a search result.
type Kind string

const (
	KindProduct  Kind = "product"
	KindCustomer Kind = "customer"
	KindSale     Kind = "sale"
	KindRepair   Kind = "repair"
	KindTransfer Kind = "transfer"
)

// Result is one ranked hit.
type Result struct {
	Kind        Kind      `json:"kind"`
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Score       int       `json:"score"`
}

// Source is one searchable entity collection. Each returns candidate rows
// matching the query substring, capped at limit.
type Source interface {
	Kind() Kind
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// Scorer ranks a candidate against the query. Pluggable so ranking can be
// tuned without touching the sources.
type Scorer interface {
	Score(query string, r Result) int
}

// minQueryLen is the shortest query that triggers a search.
const minQueryLen = 2

// defaultLimit caps the merged result list.
const defaultLimit = 25

// Service fans a query out over all sources and merges the hits.
type Service struct {
	sources []Source
	scorer  Scorer
	now     func() time.Time
}

// NewService creates a search service. A nil scorer uses DefaultScorer,
// a nil clock defaults to time.Now.
func NewService(sources []Source, scorer Scorer, now func() time.Time) *Service {
	if scorer == nil {
		scorer = DefaultScorer{}
	}
	if now == nil {
		now = time.Now
	}
	return &Service{sources: sources, scorer: scorer, now: now}
}

// Search runs the query over every source. Queries shorter than two
// characters return an empty list without touching storage. The per-source
// cap is the total limit divided across the sources so one noisy entity
// cannot crowd out the rest.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minQueryLen {
		return []Result{}, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	perSource := limit / len(s.sources)
	if perSource < 1 {
		perSource = 1
	}

	merged := make([]Result, 0, limit)
	for _, src := range s.sources {
		hits, err := src.Search(ctx, query, perSource)
		if err != nil {
			// One broken source must not blank the whole search box.
			logger.Warn(ctx, "search source failed", "kind", src.Kind(), "error", err)
			continue
		}
		for _, h := range hits {
			h.Kind = src.Kind()
			h.Score = s.scorer.Score(query, h)
			merged = append(merged, h)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		if !merged[i].Timestamp.Equal(merged[j].Timestamp) {
			return merged[i].Timestamp.After(merged[j].Timestamp)
		}
		return merged[i].Title < merged[j].Title
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// DefaultScorer ranks by match position in the title, with smaller boosts
// for subtitle and description hits and for recent records.
type DefaultScorer struct {
	// Now is injectable for tests; zero value uses time.Now.
	Now func() time.Time
}

// Score implements Scorer.
func (d DefaultScorer) Score(query string, r Result) int {
	q := strings.ToLower(query)
	title := strings.ToLower(r.Title)

	score := 0
	switch {
	case title == q:
		score = 100
	case strings.HasPrefix(title, q):
		score = 80
	case strings.Contains(title, q):
		score = 60
	}

	if strings.Contains(strings.ToLower(r.Subtitle), q) {
		score += 30
	}
	if strings.Contains(strings.ToLower(r.Description), q) {
		score += 10
	}

	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	if now().Sub(r.Timestamp) <= 30*24*time.Hour {
		score += 5
	}
	return score
}
