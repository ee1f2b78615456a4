package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kjsce/kj-connect/internal/domain/catalog"
	apperrors "github.com/kjsce/kj-connect/internal/errors"
	"github.com/kjsce/kj-connect/internal/ports"
)

var _ ports.CatalogRepository = (*CatalogRepo)(nil)

const (
	eventColumns = `id, title, description, type, date, location, committee, registration_link, attachments, created_at, created_by`

	eventListQuery = `SELECT ` + eventColumns + ` FROM events ORDER BY created_at, id`
	eventGetQuery  = `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	examFileListQuery = `
		SELECT id, title, type, department, semester, file_url, uploaded_at, uploaded_by
		FROM exam_files
		ORDER BY uploaded_at, id`
)

// CatalogRepo reads listings from the events and exam_files tables.
type CatalogRepo struct {
	DB *sql.DB
}

// NewCatalogRepo creates a CatalogRepo over db.
func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (catalog.Event, error) {
	var (
		e           catalog.Event
		attachments []byte
	)
	if err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Type, &e.Date, &e.Location,
		&e.Committee, &e.RegistrationLink, &attachments, &e.CreatedAt, &e.CreatedBy,
	); err != nil {
		return catalog.Event{}, err
	}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &e.Attachments); err != nil {
			return catalog.Event{}, fmt.Errorf("decode attachments for event %s: %w", e.ID, err)
		}
	}
	return e, nil
}

// ListEvents returns every event ordered by creation time.
func (r *CatalogRepo) ListEvents(ctx context.Context) ([]catalog.Event, error) {
	rows, err := r.DB.QueryContext(ctx, eventListQuery)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list events: %w", err))
	}
	defer rows.Close()

	var out []catalog.Event
	for rows.Next() {
		e, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan event: %w", scanErr)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("iterate events: %w", err))
	}
	return out, nil
}

// GetEvent returns one event or a not-found error.
func (r *CatalogRepo) GetEvent(ctx context.Context, id string) (catalog.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, eventGetQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Event{}, apperrors.NotFoundf("event %q not found", id)
	}
	if err != nil {
		return catalog.Event{}, apperrors.MapDBError(fmt.Errorf("get event %s: %w", id, err))
	}
	return e, nil
}

// ListExamFiles returns every exam file ordered by upload time.
func (r *CatalogRepo) ListExamFiles(ctx context.Context) ([]catalog.ExamFile, error) {
	rows, err := r.DB.QueryContext(ctx, examFileListQuery)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list exam files: %w", err))
	}
	defer rows.Close()

	var out []catalog.ExamFile
	for rows.Next() {
		var f catalog.ExamFile
		if scanErr := rows.Scan(
			&f.ID, &f.Title, &f.Type, &f.Department, &f.Semester, &f.FileURL, &f.UploadedAt, &f.UploadedBy,
		); scanErr != nil {
			return nil, fmt.Errorf("scan exam file: %w", scanErr)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("iterate exam files: %w", err))
	}
	return out, nil
}
