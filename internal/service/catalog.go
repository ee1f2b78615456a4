package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kjsce/kj-connect/internal/async"
	"github.com/kjsce/kj-connect/internal/domain/catalog"
	apperrors "github.com/kjsce/kj-connect/internal/errors"
	"github.com/kjsce/kj-connect/internal/observability/metrics"
	"github.com/kjsce/kj-connect/internal/observability/statsd"
	"github.com/kjsce/kj-connect/internal/ports"
	"github.com/kjsce/kj-connect/internal/validation"
)

// DefaultSubmitDelay is how long a simulated submission takes.
const DefaultSubmitDelay = time.Second

// RecentExamFileCount is how many exam files the home page shows.
const RecentExamFileCount = 2

// Validation summaries for incomplete submissions.
const (
	MsgEventIncomplete    = "Please fill all required fields"
	MsgExamFileIncomplete = "Please fill all required fields and upload a file"
)

// CatalogServiceOptions groups dependencies for CatalogService.
type CatalogServiceOptions struct {
	Repo        ports.CatalogRepository
	Validator   *validation.Validator
	SubmitDelay time.Duration
	Logger      *slog.Logger
	Metrics     statsd.Sink
	Now         func() time.Time
}

// CatalogService serves event and exam-file listings and accepts simulated submissions.
type CatalogService struct {
	repo      ports.CatalogRepository
	validator *validation.Validator
	delay     time.Duration
	logger    *slog.Logger
	metrics   statsd.Sink
	now       func() time.Time
}

// NewCatalogService constructs a CatalogService. A negative delay is treated as zero.
func NewCatalogService(opts CatalogServiceOptions) (*CatalogService, error) {
	if opts.Repo == nil {
		return nil, errors.New("catalog repository is required")
	}
	v := opts.Validator
	if v == nil {
		var err error
		if v, err = validation.New(); err != nil {
			return nil, fmt.Errorf("build validator: %w", err)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &CatalogService{
		repo:      opts.Repo,
		validator: v,
		delay:     max(opts.SubmitDelay, 0),
		logger:    logger.With("component", "catalog"),
		metrics:   opts.Metrics,
		now:       now,
	}, nil
}

// ListEvents returns events matching filter in repository order.
func (s *CatalogService) ListEvents(ctx context.Context, filter catalog.EventFilter) ([]catalog.Event, error) {
	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return filter.Apply(events), nil
}

// GetEvent returns one event; unknown ids yield a not-found error.
func (s *CatalogService) GetEvent(ctx context.Context, id string) (catalog.Event, error) {
	e, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return catalog.Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ListExamFiles returns exam files matching filter in repository order.
func (s *CatalogService) ListExamFiles(ctx context.Context, filter catalog.ExamFileFilter) ([]catalog.ExamFile, error) {
	files, err := s.repo.ListExamFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exam files: %w", err)
	}
	return filter.Apply(files), nil
}

// Departments returns the departments that have at least one exam file, sorted.
func (s *CatalogService) Departments(ctx context.Context) ([]string, error) {
	files, err := s.repo.ListExamFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exam files: %w", err)
	}
	return catalog.DepartmentsOf(files), nil
}

// Featured is the home page content.
type Featured struct {
	Events    []catalog.Event
	ExamFiles []catalog.ExamFile
}

// Featured loads the featured events and the recent exam files concurrently.
func (s *CatalogService) Featured(ctx context.Context) (Featured, error) {
	var out Featured
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events, err := s.repo.ListEvents(gctx)
		if err != nil {
			return fmt.Errorf("list events: %w", err)
		}
		out.Events = catalog.FeaturedEvents(events)
		return nil
	})
	g.Go(func() error {
		files, err := s.repo.ListExamFiles(gctx)
		if err != nil {
			return fmt.Errorf("list exam files: %w", err)
		}
		out.ExamFiles = catalog.RecentExamFiles(files, RecentExamFileCount)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Featured{}, err
	}
	return out, nil
}

// PostEvent validates a committee head's submission and, after the simulated delay,
// resolves to the confirmation message. Nothing is stored. Invalid submissions
// resolve immediately with a validation error.
func (s *CatalogService) PostEvent(ctx context.Context, req catalog.PostEventRequest) *async.Future[string] {
	req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		err = validation.WithMessage(err, MsgEventIncomplete)
		s.recordPost("event", time.Time{}, err)
		return async.Resolved("", err)
	}

	started := time.Now()
	return async.After(ctx, s.delay, func(ctx context.Context) (string, error) {
		event := req.Event(uuid.NewString(), s.now())
		s.logger.InfoContext(ctx, "event submission accepted",
			"submission_id", event.ID,
			"type", event.Type,
			"title", event.Title,
			"posted_by", event.CreatedBy,
			"attachments", len(event.Attachments),
		)
		s.recordPost("event", started, nil)
		return catalog.EventPostedMessage(event.Type), nil
	})
}

// PostExamFile validates an exam cell upload and, after the simulated delay,
// resolves to the confirmation message. The file body is never read or stored.
func (s *CatalogService) PostExamFile(ctx context.Context, req catalog.PostExamFileRequest) *async.Future[string] {
	req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		err = validation.WithMessage(err, MsgExamFileIncomplete)
		s.recordPost("exam_file", time.Time{}, err)
		return async.Resolved("", err)
	}

	started := time.Now()
	return async.After(ctx, s.delay, func(ctx context.Context) (string, error) {
		s.logger.InfoContext(ctx, "exam file submission accepted",
			"submission_id", uuid.NewString(),
			"type", req.Type,
			"department", req.Department,
			"semester", req.Semester,
			"file_name", req.FileName,
			"file_size", req.FileSize,
			"posted_by", req.PostedBy,
		)
		s.recordPost("exam_file", started, nil)
		return catalog.ExamFilePostedMessage(catalog.ExamFileType(req.Type)), nil
	})
}

func (s *CatalogService) recordPost(kind string, started time.Time, err error) {
	in := metrics.PostMetric{Kind: kind, Result: metrics.ResultSuccess, Err: err}
	if err != nil {
		in.Result = metrics.ResultFailure
		if !apperrors.IsValidation(err) {
			in.Result = metrics.ResultError
		}
	}
	if !started.IsZero() {
		in.Duration = time.Since(started)
	}
	metrics.EmitCatalogPost(s.metrics, in)
}
