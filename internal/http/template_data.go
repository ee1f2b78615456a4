package httpx

import (
	"net/http"

	"github.com/kjsce/kj-connect/internal/validation"
)

// TemplateDataBuilder layers page-specific keys over the shared layout data
// (title, nav state for the client's role, drained toasts).
type TemplateDataBuilder struct {
	data map[string]any
}

func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	return &TemplateDataBuilder{data: basePageData(r, meta)}
}

// WithValidation exposes per-field messages from a failed submission as .Errors.
// Errors without field detail leave the page untouched; the toast covers them.
func (b *TemplateDataBuilder) WithValidation(err error) *TemplateDataBuilder {
	if fields := validation.Fields(err); len(fields) > 0 {
		b.data["Errors"] = fields
	}
	return b
}

func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

func (b *TemplateDataBuilder) Build() map[string]any {
	return b.data
}
