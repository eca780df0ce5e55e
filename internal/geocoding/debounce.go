package geocoding

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
)

// minQueryLength is the threshold below which no lookup is attempted and the
// suggestion list is cleared immediately.
const minQueryLength = 3

// EmitFunc receives the results for the query they belong to. It is always
// called for the most recent query only.
type EmitFunc func(query string, results []Candidate)

// Debouncer serializes free-text search input into at most one lookup per
// quiet period. Each keystroke supersedes the previous pending one; results
// of a superseded lookup are discarded even if the request already left.
type Debouncer struct {
	searcher Searcher
	delay    time.Duration
	emit     EmitFunc

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	closed bool
}

func NewDebouncer(searcher Searcher, delay time.Duration, emit EmitFunc) *Debouncer {
	return &Debouncer{searcher: searcher, delay: delay, emit: emit}
}

// Query registers a new input value. Queries shorter than minQueryLength
// clear results synchronously without touching the searcher.
func (d *Debouncer) Query(query string, bias geo.Coordinate) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.seq++
	token := d.seq
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if utf8.RuneCountInString(query) < minQueryLength {
		d.mu.Unlock()
		d.emit(query, nil)
		return
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(token, query, bias)
	})
	d.mu.Unlock()
}

// fire runs after the quiet period. The token is checked before the lookup
// and again before emitting, so a lookup that was overtaken mid-flight
// cannot publish stale results.
func (d *Debouncer) fire(token uint64, query string, bias geo.Coordinate) {
	d.mu.Lock()
	stale := d.closed || token != d.seq
	d.mu.Unlock()
	if stale {
		return
	}

	results := d.searcher.Search(context.Background(), query, bias)

	d.mu.Lock()
	stale = d.closed || token != d.seq
	d.mu.Unlock()
	if stale {
		return
	}
	d.emit(query, results)
}

// Close cancels any pending lookup and invalidates in-flight ones.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
