package geocoding

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
)

// fakeSearcher records queries and can be made to block mid-lookup.
type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	block   chan struct{} // when non-nil, Search waits on it
	started chan string   // when non-nil, receives the query as Search begins
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ geo.Coordinate) []Candidate {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	started := f.started
	block := f.block
	f.mu.Unlock()
	if started != nil {
		started <- query
	}
	if block != nil {
		<-block
	}
	return []Candidate{{Label: "result for " + query}}
}

func (f *fakeSearcher) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

// emitRecorder collects emitted (query, results) pairs.
type emitRecorder struct {
	mu    sync.Mutex
	calls []emittedCall
}

type emittedCall struct {
	query   string
	results []Candidate
}

func (r *emitRecorder) emit(query string, results []Candidate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, emittedCall{query: query, results: results})
}

func (r *emitRecorder) last() (emittedCall, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return emittedCall{}, false
	}
	return r.calls[len(r.calls)-1], true
}

func (r *emitRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestDebouncerShortQueryClearsImmediately(t *testing.T) {
	searcher := &fakeSearcher{}
	rec := &emitRecorder{}
	d := NewDebouncer(searcher, 5*time.Millisecond, rec.emit)
	defer d.Close()

	d.Query("ab", bostonBias)

	call, ok := rec.last()
	require.True(t, ok, "short queries must emit synchronously")
	assert.Equal(t, "ab", call.query)
	assert.Empty(t, call.results)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, searcher.seen(), "short queries must not reach the searcher")
}

func TestDebouncerCoalescesRapidTyping(t *testing.T) {
	searcher := &fakeSearcher{}
	rec := &emitRecorder{}
	d := NewDebouncer(searcher, 10*time.Millisecond, rec.emit)
	defer d.Close()

	d.Query("air", bostonBias)
	d.Query("airp", bostonBias)
	d.Query("airport", bostonBias)

	assert.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"airport"}, searcher.seen(), "only the final query should be looked up")

	call, _ := rec.last()
	assert.Equal(t, "airport", call.query)
	require.Len(t, call.results, 1)
	assert.Equal(t, "result for airport", call.results[0].Label)
}

func TestDebouncerDiscardsOvertakenLookup(t *testing.T) {
	searcher := &fakeSearcher{
		block:   make(chan struct{}),
		started: make(chan string, 2),
	}
	rec := &emitRecorder{}
	d := NewDebouncer(searcher, time.Millisecond, rec.emit)
	defer d.Close()

	d.Query("first query", bostonBias)
	require.Equal(t, "first query", <-searcher.started)

	// A new query arrives while the first lookup is still in flight.
	d.Query("second query", bostonBias)
	searcher.block <- struct{}{} // release the first lookup
	require.Equal(t, "second query", <-searcher.started)
	searcher.block <- struct{}{}

	assert.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, time.Millisecond)
	call, _ := rec.last()
	assert.Equal(t, "second query", call.query, "the overtaken lookup's results must be dropped")
}

func TestDebouncerCloseCancelsPending(t *testing.T) {
	searcher := &fakeSearcher{}
	rec := &emitRecorder{}
	d := NewDebouncer(searcher, 10*time.Millisecond, rec.emit)

	d.Query("airport", bostonBias)
	d.Close()

	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, searcher.seen())
	assert.Zero(t, rec.count())
}
