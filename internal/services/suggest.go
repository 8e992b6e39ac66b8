package services

import (
	"biodiversity-map-service/internal/domain"
	"biodiversity-map-service/internal/platform/logger"
	"biodiversity-map-service/internal/platform/metrics"
	"biodiversity-map-service/internal/ports"
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// ErrSuperseded is returned to a suggestion request replaced by a newer one
// before its answer could be delivered.
var ErrSuperseded = errors.New("suggestion request superseded")

const (
	DefaultSuggestDebounce = 300 * time.Millisecond
	MinSuggestQueryLen     = 2
	suggestTimeout         = 5 * time.Second
)

// Suggester debounces typeahead requests. Only the newest query is sent
// upstream once input has been quiet for the debounce interval; older
// callers get ErrSuperseded. Upstream failures degrade to no suggestions.
type Suggester struct {
	provider ports.SuggestionProvider
	debounce time.Duration

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func NewSuggester(provider ports.SuggestionProvider, debounce time.Duration) *Suggester {
	if debounce < 0 {
		debounce = DefaultSuggestDebounce
	}
	return &Suggester{provider: provider, debounce: debounce}
}

// Suggest returns suggestions for query. Queries shorter than two
// characters answer empty without an upstream call.
func (s *Suggester) Suggest(ctx context.Context, query string, searchType domain.SearchType) ([]domain.Suggestion, error) {
	query = strings.TrimSpace(query)

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	if utf8.RuneCountInString(query) < MinSuggestQueryLen {
		metrics.SuggestionsTotal.WithLabelValues("short").Inc()
		return []domain.Suggestion{}, nil
	}

	if s.debounce > 0 {
		t := time.NewTimer(s.debounce)
		defer t.Stop()
		select {
		case <-t.C:
		case <-reqCtx.Done():
			return nil, s.abandoned(ctx)
		}
	}

	fetchCtx, stop := context.WithTimeout(reqCtx, suggestTimeout)
	defer stop()

	items, err := s.provider.Suggest(fetchCtx, query, searchType)

	if !s.current(seq) {
		metrics.SuggestionsTotal.WithLabelValues("superseded").Inc()
		return nil, ErrSuperseded
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		metrics.SuggestionsTotal.WithLabelValues("failed").Inc()
		logger.L().Warn("suggestions unavailable", "query", query, "type", string(searchType), "err", err)
		return []domain.Suggestion{}, nil
	}

	metrics.SuggestionsTotal.WithLabelValues("ok").Inc()
	if items == nil {
		items = []domain.Suggestion{}
	}
	return items, nil
}

func (s *Suggester) current(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq == seq
}

// abandoned tells a caller that gave up apart from one that was replaced.
func (s *Suggester) abandoned(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	metrics.SuggestionsTotal.WithLabelValues("superseded").Inc()
	return ErrSuperseded
}
