package data

import (
	"context"
	"slices"
	"sync"

	"github.com/kjsce/kj-connect/internal/domain/catalog"
	apperrors "github.com/kjsce/kj-connect/internal/errors"
	"github.com/kjsce/kj-connect/internal/ports"
)

var _ ports.CatalogRepository = (*MemoryCatalogRepo)(nil)

// MemoryCatalogRepo serves a fixed set of events and exam files from memory.
type MemoryCatalogRepo struct {
	mu     sync.RWMutex
	events []catalog.Event
	files  []catalog.ExamFile
}

// NewMemoryCatalogRepo copies the given listings into a new repository.
func NewMemoryCatalogRepo(events []catalog.Event, files []catalog.ExamFile) *MemoryCatalogRepo {
	return &MemoryCatalogRepo{
		events: cloneEvents(events),
		files:  slices.Clone(files),
	}
}

// NewSeededCatalogRepo returns a repository holding the built-in demo listings.
func NewSeededCatalogRepo() *MemoryCatalogRepo {
	return NewMemoryCatalogRepo(catalog.SeedEvents(), catalog.SeedExamFiles())
}

// ListEvents returns a copy of every event.
func (r *MemoryCatalogRepo) ListEvents(_ context.Context) ([]catalog.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneEvents(r.events), nil
}

// GetEvent returns the event with the given id.
func (r *MemoryCatalogRepo) GetEvent(_ context.Context, id string) (catalog.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.events {
		if e.ID == id {
			e.Attachments = slices.Clone(e.Attachments)
			return e, nil
		}
	}
	return catalog.Event{}, apperrors.NotFoundf("event %q not found", id)
}

// ListExamFiles returns a copy of every exam file.
func (r *MemoryCatalogRepo) ListExamFiles(_ context.Context) ([]catalog.ExamFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.files), nil
}

func cloneEvents(in []catalog.Event) []catalog.Event {
	out := make([]catalog.Event, len(in))
	for i, e := range in {
		e.Attachments = slices.Clone(e.Attachments)
		out[i] = e
	}
	return out
}
