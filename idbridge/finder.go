package idbridge

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
)

// DefaultFetchLimit is the number of candidates examined per lookup
const DefaultFetchLimit = 100

// CandidateSource yields canonical identifiers in a stable order.
type CandidateSource interface {
	// Candidates returns at most limit canonical ids.
	Candidates(ctx context.Context, limit int) ([]string, error)
}

// Finder resolves numeric ids back to canonical ids by scanning a source.
type Finder struct {
	source     CandidateSource
	maxDigits  int
	fetchLimit int
}

// Option configures a Finder
type Option func(*Finder)

// WithMaxDigits sets the digit bound; it must match the one used to
// produce the numeric ids being resolved.
func WithMaxDigits(maxDigits int) Option {
	return func(f *Finder) {
		f.maxDigits = NormalizeDigits(maxDigits)
	}
}

// WithFetchLimit sets the scan window size.
func WithFetchLimit(limit int) Option {
	return func(f *Finder) {
		if limit > 0 {
			f.fetchLimit = limit
		}
	}
}

// NewFinder creates a Finder over source.
func NewFinder(source CandidateSource, opts ...Option) *Finder {
	f := &Finder{
		source:     source,
		maxDigits:  DefaultMaxDigits,
		fetchLimit: DefaultFetchLimit,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// MaxDigits returns the digit bound used by the finder
func (f *Finder) MaxDigits() int {
	return f.maxDigits
}

// FetchLimit returns the scan window size
func (f *Finder) FetchLimit() int {
	return f.fetchLimit
}

// FindString parses numericID and resolves it. Input that is not a
// non-negative integer reports not found without an error.
func (f *Finder) FindString(ctx context.Context, numericID string) (string, bool, error) {
	numericID = strings.TrimSpace(numericID)
	if !IsNumeric(numericID) {
		return "", false, nil
	}
	n, err := strconv.ParseInt(numericID, 10, 64)
	if err != nil {
		return "", false, nil
	}
	return f.Find(ctx, n)
}

// Find returns the first candidate whose numeric id equals numericID.
// The boolean is false when nothing in the scan window matches; an error is
// returned only when the source itself fails.
func (f *Finder) Find(ctx context.Context, numericID int64) (string, bool, error) {
	if f == nil || f.source == nil || numericID < 0 {
		return "", false, nil
	}

	candidates, err := f.source.Candidates(ctx, f.fetchLimit)
	if err != nil {
		return "", false, fmt.Errorf("failed to fetch candidate ids: %w", err)
	}

	for _, candidate := range candidates {
		if n, ok := Numeric(candidate, f.maxDigits); ok && n == numericID {
			return candidate, true, nil
		}
	}

	log.Printf("idbridge: no match for numeric id %d in %d candidates", numericID, len(candidates))
	return "", false, nil
}

// Resolve returns the canonical id for raw when it is numeric and can be
// resolved; otherwise raw is returned unchanged. Lookup failures are logged
// and never surface to the caller.
func (f *Finder) Resolve(ctx context.Context, raw string) string {
	if !IsNumeric(raw) {
		return raw
	}

	canonical, found, err := f.FindString(ctx, raw)
	if err != nil {
		log.Printf("idbridge: lookup of %s failed, using it unconverted: %v", raw, err)
		return raw
	}
	if !found {
		return raw
	}
	return canonical
}

// SliceSource is an in-memory CandidateSource that yields ids in slice order.
type SliceSource []string

// Candidates returns the first limit ids.
func (s SliceSource) Candidates(_ context.Context, limit int) ([]string, error) {
	if limit <= 0 || limit > len(s) {
		limit = len(s)
	}
	out := make([]string, limit)
	copy(out, s[:limit])
	return out, nil
}
