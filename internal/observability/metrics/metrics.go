package metrics

import (
	"time"

	apperrors "github.com/kjsce/kj-connect/internal/errors"
	"github.com/kjsce/kj-connect/internal/observability/statsd"
)

// Result tag values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

// Metric names.
const (
	AuthLogin       = "auth.login"
	AuthLogout      = "auth.logout"
	GuardDecision   = "guard.decision"
	CatalogPost     = "catalog.post"
	CatalogPostTime = "catalog.post.duration"
)

// EmitLogin counts a login attempt. A non-nil err adds its error code as a tag.
func EmitLogin(sink statsd.Sink, result string, err error) {
	if sink == nil {
		return
	}
	sink.Count(AuthLogin, 1, withErrorCode(map[string]string{"result": result}, err))
}

// EmitLogout counts a logout.
func EmitLogout(sink statsd.Sink) {
	if sink == nil {
		return
	}
	sink.Count(AuthLogout, 1, nil)
}

// EmitGuardDecision counts one route guard evaluation.
func EmitGuardDecision(sink statsd.Sink, outcome, path string) {
	if sink == nil {
		return
	}
	sink.Count(GuardDecision, 1, map[string]string{"outcome": outcome, "path": path})
}

// PostMetric describes a completed catalog submission.
type PostMetric struct {
	Kind     string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitCatalogPost counts a submission and records how long it took.
func EmitCatalogPost(sink statsd.Sink, in PostMetric) {
	if sink == nil {
		return
	}
	tags := withErrorCode(map[string]string{"kind": in.Kind, "result": in.Result}, in.Err)
	sink.Count(CatalogPost, 1, tags)
	if in.Duration > 0 {
		sink.Timing(CatalogPostTime, in.Duration, CloneTags(tags))
	}
}

// CloneTags returns a shallow copy of tags, or nil when empty.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func withErrorCode(tags map[string]string, err error) map[string]string {
	if err == nil {
		return tags
	}
	code := string(apperrors.GetCode(err))
	if code == "" {
		code = "unknown"
	}
	tags["error_code"] = code
	return tags
}
