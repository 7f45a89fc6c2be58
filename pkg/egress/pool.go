package egress

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Selection is the egress path chosen for one attempt.
type Selection struct {
	// Index is the position of the descriptor in the pool (-1 in direct mode).
	Index int

	// Descriptor is the chosen egress path (empty in direct mode).
	Descriptor Descriptor

	// Direct is true when the pool is empty and requests go out directly.
	Direct bool
}

// Label returns a credential-free label for logs and metrics.
func (s Selection) Label() string {
	if s.Direct {
		return "direct"
	}
	return s.Descriptor.Redact()
}

// Pool holds an ordered set of egress descriptors, a round-robin cursor and
// per-index failure counters.
//
// Every successful attempt advances the cursor so the next request uses a
// different path; every failed attempt rotates it and records a failure
// against the abandoned index. Descriptors are never removed: failure counts
// are diagnostic only.
//
// All state is guarded by one mutex held only for the in-memory update, never
// across a network call.
type Pool struct {
	descriptors []Descriptor

	mu       sync.Mutex
	cursor   int
	failures map[int]int

	logger zerolog.Logger
}

// NewPool creates a pool over the given descriptors. Use ParseDescriptors to
// build the list from configuration; an empty list yields direct mode.
func NewPool(descriptors []Descriptor, logger zerolog.Logger) *Pool {
	unique := make([]Descriptor, 0, len(descriptors))
	seen := make(map[Descriptor]bool, len(descriptors))
	for _, d := range descriptors {
		if d == "" || seen[d] {
			continue
		}
		if len(unique) == MaxDescriptors {
			break
		}
		seen[d] = true
		unique = append(unique, d)
	}

	p := &Pool{
		descriptors: unique,
		failures:    make(map[int]int),
		logger:      logger,
	}

	EgressDescriptors.Set(float64(len(p.descriptors)))
	EgressCursor.Set(0)

	if p.Active() {
		logger.Info().Int("descriptors", len(p.descriptors)).Msg("Egress pool loaded")
		for i, d := range p.descriptors {
			logger.Info().Int("index", i+1).Str("egress", d.Redact()).Msg("Egress path")
		}
	} else {
		logger.Info().Msg("No egress paths configured, using direct connection")
	}

	return p
}

// Count returns the number of descriptors in the pool.
func (p *Pool) Count() int {
	return len(p.descriptors)
}

// Active reports whether the pool has at least one descriptor.
func (p *Pool) Active() bool {
	return len(p.descriptors) > 0
}

// Descriptors returns a copy of the configured descriptors.
func (p *Pool) Descriptors() []Descriptor {
	return append([]Descriptor(nil), p.descriptors...)
}

// Current returns the egress path at the cursor, or the direct sentinel when
// the pool is empty.
func (p *Pool) Current() Selection {
	if !p.Active() {
		return Selection{Index: -1, Direct: true}
	}

	p.mu.Lock()
	idx := p.cursor
	p.mu.Unlock()

	return Selection{Index: idx, Descriptor: p.descriptors[idx]}
}

// Cursor returns the current cursor position (0 in direct mode).
func (p *Pool) Cursor() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Failures returns the number of failures recorded against index i.
func (p *Pool) Failures(i int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures[i]
}

// Advance moves the cursor forward after a successful attempt.
// No-op in direct mode.
func (p *Pool) Advance() {
	if !p.Active() {
		return
	}

	p.mu.Lock()
	p.cursor = (p.cursor + 1) % len(p.descriptors)
	cursor := p.cursor
	p.mu.Unlock()

	EgressCursor.Set(float64(cursor))
}

// Rotate records a failure against the current index and moves the cursor
// forward. No-op in direct mode.
func (p *Pool) Rotate() {
	if !p.Active() {
		return
	}

	p.mu.Lock()
	old := p.cursor
	p.failures[old]++
	p.cursor = (p.cursor + 1) % len(p.descriptors)
	next := p.cursor
	p.mu.Unlock()

	EgressFailures.WithLabelValues(p.descriptors[old].Redact()).Inc()
	EgressRotations.Inc()
	EgressCursor.Set(float64(next))

	p.logger.Warn().
		Int("from", old+1).
		Int("to", next+1).
		Str("egress", p.descriptors[next].Redact()).
		Msg("Egress rotation")
}

// Status is a point-in-time copy of the pool state.
type Status struct {
	Size    int           `json:"size"`
	Cursor  int           `json:"cursor"`
	Entries []StatusEntry `json:"entries"`
}

// StatusEntry describes one egress path in a Status.
type StatusEntry struct {
	Index    int    `json:"index"`
	Egress   string `json:"egress"`
	Scheme   string `json:"scheme"`
	Failures int    `json:"failures"`
	Active   bool   `json:"active"`
}

// Snapshot returns a copy of the pool state with credentials redacted.
func (p *Pool) Snapshot() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := Status{
		Size:    len(p.descriptors),
		Cursor:  p.cursor,
		Entries: make([]StatusEntry, 0, len(p.descriptors)),
	}
	for i, d := range p.descriptors {
		st.Entries = append(st.Entries, StatusEntry{
			Index:    i,
			Egress:   d.Redact(),
			Scheme:   d.Scheme(),
			Failures: p.failures[i],
			Active:   i == p.cursor,
		})
	}
	return st
}

// StatusReport renders the pool state for an operator, one line per path:
//
//	> [1] socks5://10.0.0.1:1080 | 2 failures
//	  [2] http://10.0.0.2:3128 | 0 failures
func (p *Pool) StatusReport() string {
	if !p.Active() {
		return "No egress paths configured: all requests go direct.\nSet PROXY_URL to route through proxies."
	}

	st := p.Snapshot()
	lines := make([]string, 0, len(st.Entries))
	for _, e := range st.Entries {
		marker := " "
		if e.Active {
			marker = ">"
		}
		lines = append(lines, fmt.Sprintf("%s [%d] %s | %d failures", marker, e.Index+1, e.Egress, e.Failures))
	}
	return strings.Join(lines, "\n")
}
