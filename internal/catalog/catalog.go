// Package catalog is the course catalog collaborator boundary. rollbook only
// needs a course's canonical identifier; the catalog itself lives elsewhere.
package catalog

import (
	"context"

	id "rollbook/pkg/domain"
	"rollbook/pkg/platform/sentinel"
)

// Entry is the slice of a course catalog entry rollbook cares about.
type Entry struct {
	ID    id.CourseID
	Title string
}

// Resolver resolves raw course references to catalog entries.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (Entry, error)
}

// Passthrough treats the reference as the canonical course id. Used when the
// caller already resolved the course upstream.
type Passthrough struct{}

func (Passthrough) Resolve(_ context.Context, ref string) (Entry, error) {
	return Entry{ID: id.CourseID(ref)}, nil
}

// Static resolves from a fixed in-memory catalog. Test and seed helper.
type Static struct {
	entries map[string]Entry
}

func NewStatic(entries map[string]Entry) *Static {
	return &Static{entries: entries}
}

func (s *Static) Resolve(_ context.Context, ref string) (Entry, error) {
	if entry, ok := s.entries[ref]; ok {
		return entry, nil
	}
	return Entry{}, sentinel.ErrNotFound
}
