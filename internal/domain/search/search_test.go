package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	kind    Kind
	results []Result
	err     error

	gotLimit int
}

func (f *fakeSource) Kind() Kind { return f.kind }

func (f *fakeSource) Search(_ context.Context, _ string, limit int) ([]Result, error) {
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > limit {
		return f.results[:limit], nil
	}
	return f.results, nil
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestSearch_ShortQueryReturnsNothing(t *testing.T) {
	src := &fakeSource{kind: KindProduct, results: []Result{{Title: "iphone"}}}
	svc := NewService([]Source{src}, nil, fixedNow)

	for _, q := range []string{"", " ", "a", " a "} {
		results, err := svc.Search(context.Background(), q, 10)
		require.NoError(t, err)
		assert.Empty(t, results, "query %q", q)
	}
	assert.Zero(t, src.gotLimit, "source must not be queried for short input")
}

func TestSearch_RanksExactAbovePrefixAboveContains(t *testing.T) {
	recent := fixedNow().Add(-time.Hour)
	src := &fakeSource{kind: KindProduct, results: []Result{
		{Title: "case for iphone", Timestamp: recent},
		{Title: "iphone", Timestamp: recent},
		{Title: "iphone 15 pro", Timestamp: recent},
	}}
	svc := NewService([]Source{src}, DefaultScorer{Now: fixedNow}, fixedNow)

	results, err := svc.Search(context.Background(), "iphone", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "iphone", results[0].Title)
	assert.Equal(t, "iphone 15 pro", results[1].Title)
	assert.Equal(t, "case for iphone", results[2].Title)
}

func TestSearch_FailedSourceIsSkipped(t *testing.T) {
	good := &fakeSource{kind: KindCustomer, results: []Result{
		{Title: "ahmed", Timestamp: fixedNow()},
	}}
	bad := &fakeSource{kind: KindSale, err: errors.New("table locked")}
	svc := NewService([]Source{bad, good}, DefaultScorer{Now: fixedNow}, fixedNow)

	results, err := svc.Search(context.Background(), "ahmed", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, KindCustomer, results[0].Kind)
}

func TestSearch_LimitIsDividedAcrossSources(t *testing.T) {
	sources := make([]Source, 5)
	fakes := make([]*fakeSource, 5)
	for i := range sources {
		fakes[i] = &fakeSource{kind: KindProduct}
		sources[i] = fakes[i]
	}
	svc := NewService(sources, nil, fixedNow)

	_, err := svc.Search(context.Background(), "query", 25)
	require.NoError(t, err)
	for _, f := range fakes {
		assert.Equal(t, 5, f.gotLimit)
	}
}

func TestSearch_TiesBreakOnRecencyThenTitle(t *testing.T) {
	older := fixedNow().Add(-48 * time.Hour)
	newer := fixedNow().Add(-time.Hour)
	src := &fakeSource{kind: KindRepair, results: []Result{
		{Title: "screen b", Timestamp: older},
		{Title: "screen a", Timestamp: older},
		{Title: "screen c", Timestamp: newer},
	}}
	svc := NewService([]Source{src}, DefaultScorer{Now: fixedNow}, fixedNow)

	results, err := svc.Search(context.Background(), "screen", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "screen c", results[0].Title)
	assert.Equal(t, "screen a", results[1].Title)
	assert.Equal(t, "screen b", results[2].Title)
}

func TestDefaultScorer(t *testing.T) {
	scorer := DefaultScorer{Now: fixedNow}
	old := fixedNow().Add(-60 * 24 * time.Hour)
	recent := fixedNow().Add(-24 * time.Hour)

	tests := []struct {
		name string
		r    Result
		want int
	}{
		{"exact title, old", Result{Title: "iphone", Timestamp: old}, 100},
		{"exact title, recent", Result{Title: "iphone", Timestamp: recent}, 105},
		{"prefix", Result{Title: "iphone 15", Timestamp: old}, 80},
		{"contains", Result{Title: "used iphone", Timestamp: old}, 60},
		{"subtitle only", Result{Title: "A54", Subtitle: "iphone trade-in", Timestamp: old}, 30},
		{"description bonus", Result{Title: "iphone", Description: "iphone box", Timestamp: old}, 110},
		{"no match", Result{Title: "galaxy", Timestamp: old}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.Score("iphone", tt.r))
		})
	}
}
