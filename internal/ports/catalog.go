package ports

import (
	"context"

	"github.com/kjsce/kj-connect/internal/domain/catalog"
)

// CatalogRepository reads the event and exam-file listings.
// GetEvent returns an error satisfying apperrors.IsNotFound when the id is unknown.
type CatalogRepository interface {
	ListEvents(ctx context.Context) ([]catalog.Event, error)
	GetEvent(ctx context.Context, id string) (catalog.Event, error)
	ListExamFiles(ctx context.Context) ([]catalog.ExamFile, error)
}
