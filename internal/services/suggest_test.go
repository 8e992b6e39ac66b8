package services

import (
	"biodiversity-map-service/internal/domain"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSuggestions struct {
	mu      sync.Mutex
	queries []string
	block   map[string]chan struct{}
	err     error
}

func (f *fakeSuggestions) Suggest(ctx context.Context, query string, st domain.SearchType) ([]domain.Suggestion, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	block := f.block[query]
	err := f.err
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return []domain.Suggestion{{Kind: domain.SuggestionSpecies, ScientificName: query + " result"}}, nil
}

func (f *fakeSuggestions) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (s *Suggester) issued() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

type suggestResult struct {
	items []domain.Suggestion
	err   error
}

func TestSuggesterShortQuery(t *testing.T) {
	f := &fakeSuggestions{}
	s := NewSuggester(f, 0)

	items, err := s.Suggest(context.Background(), " p ", domain.SearchAll)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	assert.Empty(t, f.seen())
}

func TestSuggesterDebounceKeepsNewestQuery(t *testing.T) {
	f := &fakeSuggestions{}
	s := NewSuggester(f, 100*time.Millisecond)

	first := make(chan suggestResult, 1)
	go func() {
		items, err := s.Suggest(context.Background(), "pa", domain.SearchSpecies)
		first <- suggestResult{items, err}
	}()
	require.Eventually(t, func() bool { return s.issued() == 1 }, time.Second, time.Millisecond)

	items, err := s.Suggest(context.Background(), "pas", domain.SearchSpecies)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "pas result", items[0].ScientificName)

	res := <-first
	assert.ErrorIs(t, res.err, ErrSuperseded)
	assert.Equal(t, []string{"pas"}, f.seen())
}

func TestSuggesterCancelsInFlightRequest(t *testing.T) {
	f := &fakeSuggestions{block: map[string]chan struct{}{"pa": make(chan struct{})}}
	s := NewSuggester(f, 0)

	first := make(chan suggestResult, 1)
	go func() {
		items, err := s.Suggest(context.Background(), "pa", domain.SearchAll)
		first <- suggestResult{items, err}
	}()
	require.Eventually(t, func() bool { return len(f.seen()) == 1 }, time.Second, time.Millisecond)

	items, err := s.Suggest(context.Background(), "par", domain.SearchAll)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	select {
	case res := <-first:
		assert.ErrorIs(t, res.err, ErrSuperseded)
		assert.Nil(t, res.items)
	case <-time.After(time.Second):
		t.Fatal("superseded request was not canceled")
	}
}

func TestSuggesterDegradesOnFailure(t *testing.T) {
	f := &fakeSuggestions{err: errors.New("backend down")}
	s := NewSuggester(f, 0)

	items, err := s.Suggest(context.Background(), "passer", domain.SearchAll)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSuggesterCallerCancelDuringDebounce(t *testing.T) {
	f := &fakeSuggestions{}
	s := NewSuggester(f, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := s.Suggest(ctx, "passer", domain.SearchAll)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.seen())
}
