package articles

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"propertysite/store"
)

var (
	// ErrNotFound covers both a missing row and an unpublished row on the
	// public side. Callers redirect instead of showing an error.
	ErrNotFound     = errors.New("article not found")
	ErrTransport    = errors.New("article store unavailable")
	ErrUnauthorized = errors.New("admin session required")
	ErrSlugTaken    = errors.New("slug already in use")
)

// ValidationError lists every required field that failed, keyed by the
// article's JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "invalid article: " + strings.Join(parts, "; ")
}

func wrapStoreErr(err error) error {
	if errors.Is(err, store.ErrNoRows) {
		return ErrNotFound
	}
	if errors.Is(err, store.ErrConflict) {
		return fmt.Errorf("%w: %w", ErrSlugTaken, err)
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}
